package repository

import (
	"github.com/mkobayashi/discussion-board-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users, optionally filtered by a free-text search
	// over name and email
	List(search string) ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete deletes a user
	Delete(id uint64) error
}

// TopicFilter holds filtering options for listing topics
type TopicFilter struct {
	// Search matches against topic name and description
	Search string

	// MemberUserID restricts results to topics the user belongs to
	MemberUserID *uint64

	Page     int
	PageSize int
}

// TopicRepository defines the interface for topic and membership data access
type TopicRepository interface {
	// CreateWithOwner creates a topic and its owner membership within a
	// single transaction
	CreateWithOwner(topic *models.Topic, owner *models.TopicMember) error

	// FindByID finds a topic by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Topic, error)

	// List retrieves topics with filtering and pagination
	List(filter TopicFilter) ([]models.Topic, int64, error)

	// Update updates a topic
	Update(topic *models.Topic) error

	// Delete removes a topic together with its members and tasks
	Delete(id uint64) error

	// AddMember adds a member to a topic
	AddMember(member *models.TopicMember) error

	// RemoveMember removes a member from a topic
	RemoveMember(topicID, userID uint64) error

	// FindMember finds a specific topic membership
	FindMember(topicID, userID uint64) (*models.TopicMember, error)

	// ListMembers lists all members of a topic
	ListMembers(topicID uint64) ([]models.TopicMember, error)

	// CountMembers counts the members of a topic
	CountMembers(topicID uint64) (int64, error)

	// CountTasks counts the tasks of a topic
	CountTasks(topicID uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByWorker lists tasks assigned to a user, across all topics
	ListByWorker(workerID uint64) ([]models.Task, error)

	// ListByTopic lists all tasks of a topic
	ListByTopic(topicID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error

	// CloneForWorkers copies a template task once per worker within a
	// single transaction and returns the created rows
	CloneForWorkers(template *models.Task, createdByID uint64, workerIDs []uint64) ([]models.Task, error)
}

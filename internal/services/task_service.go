package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkobayashi/discussion-board-api/internal/authz"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrTitleRequired           = errors.New("title is required")
	ErrNotTaskManager          = errors.New("requires topic owner or admin role")
	ErrNotTopicMember          = errors.New("requires topic membership")
	ErrWorkerNotMember         = errors.New("worker must be a topic member")
	ErrCannotUpdateTask        = errors.New("workers may only update the status of their own task")
	ErrInvalidStatus           = errors.New("invalid task status")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
	ErrNoWorkerIDs             = errors.New("at least one worker ID is required")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo  repository.TaskRepository
	topicRepo repository.TopicRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, topicRepo repository.TopicRepository) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		topicRepo: topicRepo,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	TopicID     uint64
	Title       string
	Description string
	WorkerID    *uint64
	StartTime   *time.Time
	EndTime     *time.Time
}

// Create creates a task in a topic. Owner, admin or superuser; the
// optional worker must be a current member of the topic.
func (s *TaskService) Create(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.topicRepo.FindByID(input.TopicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	membership, err := s.membership(input.TopicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageTasks(actor, membership) {
		return nil, ErrNotTaskManager
	}

	if input.WorkerID != nil {
		if err := s.ensureTopicMember(input.TopicID, *input.WorkerID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		TopicID:     input.TopicID,
		Title:       input.Title,
		Description: input.Description,
		WorkerID:    input.WorkerID,
		CreatedByID: actor.ID,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      models.TaskStatusPending,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Worker", "Topic")
}

// ListMine returns the tasks assigned to the actor across all topics.
func (s *TaskService) ListMine(actorID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByWorker(actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByTopic returns all tasks of a topic. Members only.
func (s *TaskService) ListByTopic(actor *models.User, topicID uint64) ([]models.Task, error) {
	if _, err := s.topicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}

	membership, err := s.membership(topicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTopicTasks(actor, membership) {
		return nil, ErrNotTopicMember
	}

	tasks, err := s.taskRepo.ListByTopic(topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a task with its worker and topic. Members of the task's
// topic only.
func (s *TaskService) Get(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Worker", "Topic")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	membership, err := s.membership(task.TopicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTopicTasks(actor, membership) {
		return nil, ErrNotTopicMember
	}

	return task, nil
}

// UpdateTaskInput represents a partial task update. Nil fields are left
// untouched; Clear flags null out optional fields.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	WorkerID       *uint64
	ClearWorker    bool
	StartTime      *time.Time
	ClearStartTime bool
	EndTime        *time.Time
	ClearEndTime   bool
}

// touchesNonStatusFields reports whether the update changes anything
// beyond the status value.
func (in UpdateTaskInput) touchesNonStatusFields() bool {
	return in.Title != nil || in.Description != nil ||
		in.WorkerID != nil || in.ClearWorker ||
		in.StartTime != nil || in.ClearStartTime ||
		in.EndTime != nil || in.ClearEndTime
}

// Update applies a task update. Owner/admin/superuser may change any
// field; the assigned worker may change only the status of their own
// task, and only along the allowed transitions.
func (s *TaskService) Update(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	membership, err := s.membership(task.TopicID, actor.ID)
	if err != nil {
		return nil, err
	}

	isManager := authz.CanManageTasks(actor, membership)
	if !isManager {
		if !authz.CanUpdateTaskStatus(actor, membership, task) {
			return nil, ErrCannotUpdateTask
		}
		if input.touchesNonStatusFields() {
			return nil, ErrCannotUpdateTask
		}
	}

	if input.Status != nil {
		status := *input.Status
		if !models.ValidTaskStatus(status) {
			return nil, ErrInvalidStatus
		}
		if !authz.CanTransitionStatus(task.Status, status) {
			return nil, ErrInvalidStatusTransition
		}
		task.Status = status
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearWorker {
		task.WorkerID = nil
	} else if input.WorkerID != nil {
		if err := s.ensureTopicMember(task.TopicID, *input.WorkerID); err != nil {
			return nil, err
		}
		task.WorkerID = input.WorkerID
	}
	if input.ClearStartTime {
		task.StartTime = nil
	} else if input.StartTime != nil {
		task.StartTime = input.StartTime
	}
	if input.ClearEndTime {
		task.EndTime = nil
	} else if input.EndTime != nil {
		task.EndTime = input.EndTime
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Worker", "Topic")
}

// Delete removes a task. Owner, admin or superuser.
func (s *TaskService) Delete(actor *models.User, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	membership, err := s.membership(task.TopicID, actor.ID)
	if err != nil {
		return err
	}
	if !authz.CanManageTasks(actor, membership) {
		return ErrNotTaskManager
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Assign fans a task out to multiple workers: one new pending task per
// distinct worker, copied from the template task. Every target must be
// a member of the topic, or the whole request fails and nothing is
// written.
func (s *TaskService) Assign(actor *models.User, taskID uint64, workerIDs []uint64) ([]models.Task, error) {
	if len(workerIDs) == 0 {
		return nil, ErrNoWorkerIDs
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	membership, err := s.membership(task.TopicID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageTasks(actor, membership) {
		return nil, ErrNotTaskManager
	}

	workers := uniqueUint64(workerIDs)
	for _, workerID := range workers {
		if err := s.ensureTopicMember(task.TopicID, workerID); err != nil {
			return nil, err
		}
	}

	created, err := s.taskRepo.CloneForWorkers(task, actor.ID, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	return created, nil
}

// ensureTopicMember verifies that a user belongs to a topic.
func (s *TaskService) ensureTopicMember(topicID, userID uint64) error {
	_, err := s.topicRepo.FindMember(topicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotMember
		}
		return fmt.Errorf("failed to verify topic membership: %w", err)
	}
	return nil
}

// membership fetches the user's membership row, or nil when the user is
// not a member.
func (s *TaskService) membership(topicID, userID uint64) (*models.TopicMember, error) {
	member, err := s.topicRepo.FindMember(topicID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return member, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

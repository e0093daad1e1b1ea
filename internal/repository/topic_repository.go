package repository

import (
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTopicRepository is a GORM implementation of TopicRepository
type GormTopicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &GormTopicRepository{db: db}
}

// CreateWithOwner creates the topic and its owner membership atomically,
// so a topic can never exist without its owner-role member.
func (r *GormTopicRepository) CreateWithOwner(topic *models.Topic, owner *models.TopicMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}

		owner.TopicID = topic.ID
		owner.Role = models.RoleOwner

		return tx.Create(owner).Error
	})
}

// FindByID finds a topic by ID with optional preloading
func (r *GormTopicRepository) FindByID(id uint64, preload ...string) (*models.Topic, error) {
	var topic models.Topic
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// List retrieves topics with filtering and pagination
func (r *GormTopicRepository) List(filter TopicFilter) ([]models.Topic, int64, error) {
	var topics []models.Topic

	query := r.db.Model(&models.Topic{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("topics.name LIKE ? OR topics.description LIKE ?", pattern, pattern)
	}
	if filter.MemberUserID != nil {
		memberSubQuery := r.db.Model(&models.TopicMember{}).
			Select("1").
			Where("topic_members.topic_id = topics.id").
			Where("topic_members.user_id = ?", *filter.MemberUserID)
		query = query.Where("EXISTS (?)", memberSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("topics.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Find(&topics).Error; err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

// Update updates a topic
func (r *GormTopicRepository) Update(topic *models.Topic) error {
	return r.db.Save(topic).Error
}

// Delete deletes a topic and all related data in a transaction
func (r *GormTopicRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("topic_id = ?", id).Delete(&models.TopicMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Topic{}, id).Error
	})
}

// AddMember adds a member to a topic. The unique (topic_id, user_id)
// index turns a concurrent duplicate add into gorm.ErrDuplicatedKey.
func (r *GormTopicRepository) AddMember(member *models.TopicMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a topic
func (r *GormTopicRepository) RemoveMember(topicID, userID uint64) error {
	return r.db.Where("topic_id = ? AND user_id = ?", topicID, userID).
		Delete(&models.TopicMember{}).Error
}

// FindMember finds a specific topic membership
func (r *GormTopicRepository) FindMember(topicID, userID uint64) (*models.TopicMember, error) {
	var member models.TopicMember
	if err := r.db.Where("topic_id = ? AND user_id = ?", topicID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a topic
func (r *GormTopicRepository) ListMembers(topicID uint64) ([]models.TopicMember, error) {
	var members []models.TopicMember
	if err := r.db.Preload("User").
		Where("topic_id = ?", topicID).
		Order("joined_at").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountMembers counts the members of a topic
func (r *GormTopicRepository) CountMembers(topicID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TopicMember{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	return count, err
}

// CountTasks counts the tasks of a topic
func (r *GormTopicRepository) CountTasks(topicID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("topic_id = ?", topicID).
		Count(&count).Error
	return count, err
}

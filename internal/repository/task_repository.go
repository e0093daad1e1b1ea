package repository

import (
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByWorker lists tasks assigned to a user, across all topics
func (r *GormTaskRepository) ListByWorker(workerID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Preload("Worker").
		Preload("Topic").
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByTopic lists all tasks of a topic
func (r *GormTaskRepository) ListByTopic(topicID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Preload("Worker").
		Preload("Topic").
		Where("topic_id = ?", topicID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CloneForWorkers copies the template task once per worker inside one
// transaction; either every assignee gets their own row or none do.
func (r *GormTaskRepository) CloneForWorkers(template *models.Task, createdByID uint64, workerIDs []uint64) ([]models.Task, error) {
	created := make([]models.Task, 0, len(workerIDs))

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, workerID := range workerIDs {
			workerID := workerID
			task := models.Task{
				TopicID:     template.TopicID,
				Title:       template.Title,
				Description: template.Description,
				WorkerID:    &workerID,
				CreatedByID: createdByID,
				StartTime:   template.StartTime,
				EndTime:     template.EndTime,
				Status:      models.TaskStatusPending,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

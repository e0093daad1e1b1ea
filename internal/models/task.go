package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	TopicID     uint64     `gorm:"not null;index" json:"topic_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	WorkerID    *uint64    `gorm:"index" json:"worker_id"`
	CreatedByID uint64     `gorm:"not null;index" json:"created_by_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Topic     Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Worker    *User `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	AssigneeID  *uint64        `gorm:"index" json:"assignee_id"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	Tags        []string       `gorm:"serializer:json" json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project  Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator  User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignee *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

// BeforeSave re-validates field constraints on every create and update.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	switch t.Status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
	default:
		return fmt.Errorf("%w: invalid status %q", ErrValidation, t.Status)
	}
	switch t.Priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
	default:
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, t.Priority)
	}
	return nil
}

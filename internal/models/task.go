package models

import (
	"fmt"
	"time"
)

// TaskStatus tracks task progress.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// ParseTaskStatus converts a string into a TaskStatus, rejecting unknown values.
func ParseTaskStatus(value string) (TaskStatus, error) {
	switch TaskStatus(value) {
	case TaskTodo, TaskInProgress, TaskDone:
		return TaskStatus(value), nil
	default:
		return "", fmt.Errorf("unknown task status %q", value)
	}
}

// Task is a unit of work, optionally attached to a project.
type Task struct {
	BaseModel

	TenantID  string     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProjectID *string    `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Title     string     `gorm:"not null" json:"title"`
	Status    TaskStatus `gorm:"not null;default:TODO;index" json:"status"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Project *Project `gorm:"constraint:OnDelete:SET NULL" json:"project,omitempty"`
}

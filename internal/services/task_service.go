package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

// TaskUpdate carries the mutable task fields. Nil fields are untouched;
// ClearProject detaches the task from its project.
type TaskUpdate struct {
	Title        *string
	Status       *models.TaskStatus
	ProjectID    *string
	ClearProject bool
	DueDate      *time.Time
	ClearDueDate bool
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status    *models.TaskStatus
	ProjectID *string
}

// TaskService provides tenant-scoped task CRUD.
type TaskService struct {
	db *gorm.DB
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *gorm.DB) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	return &TaskService{db: db}, nil
}

// Create adds a task to the tenant, optionally attached to one of its projects.
func (s *TaskService) Create(ctx context.Context, tenantID, title string, projectID *string, dueDate *time.Time) (*models.Task, error) {
	ctx = ensureContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewBadRequest("task title is required")
	}

	task := &models.Task{
		TenantID: tenantID,
		Title:    title,
		Status:   models.TaskTodo,
		DueDate:  dueDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if projectID != nil && *projectID != "" {
			if err := s.ensureProject(tx, tenantID, *projectID); err != nil {
				return err
			}
			task.ProjectID = projectID
		}
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("task service: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the tenant's tasks matching the filter, newest first.
func (s *TaskService) List(ctx context.Context, tenantID string, filter TaskFilter) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list: %w", err)
	}
	return tasks, nil
}

// Get loads one task scoped to the tenant.
func (s *TaskService) Get(ctx context.Context, tenantID, taskID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).
		First(&task, "id = ? AND tenant_id = ?", taskID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: get: %w", err)
	}
	return &task, nil
}

// Update applies changes to a task scoped to the tenant.
func (s *TaskService) Update(ctx context.Context, tenantID, taskID string, update TaskUpdate) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&task, "id = ? AND tenant_id = ?", taskID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("task service: load: %w", err)
		}

		changes := map[string]any{}
		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return apperrors.NewBadRequest("task title cannot be empty")
			}
			changes["title"] = title
		}
		if update.Status != nil {
			if _, err := models.ParseTaskStatus(string(*update.Status)); err != nil {
				return apperrors.NewBadRequest("unknown task status")
			}
			changes["status"] = *update.Status
		}
		if update.ClearProject {
			changes["project_id"] = nil
		} else if update.ProjectID != nil && *update.ProjectID != "" {
			if err := s.ensureProject(tx, tenantID, *update.ProjectID); err != nil {
				return err
			}
			changes["project_id"] = *update.ProjectID
		}
		if update.ClearDueDate {
			changes["due_date"] = nil
		} else if update.DueDate != nil {
			changes["due_date"] = *update.DueDate
		}

		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&task).Updates(changes).Error; err != nil {
			return fmt.Errorf("task service: update: %w", err)
		}
		return tx.First(&task, "id = ?", taskID).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task scoped to the tenant.
func (s *TaskService) Delete(ctx context.Context, tenantID, taskID string) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", taskID, tenantID).
		Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("task service: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *TaskService) ensureProject(tx *gorm.DB, tenantID, projectID string) error {
	var count int64
	err := tx.Model(&models.Project{}).
		Where("id = ? AND tenant_id = ?", projectID, tenantID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("task service: check project: %w", err)
	}
	if count == 0 {
		return apperrors.NewBadRequest("project does not exist in this organization")
	}
	return nil
}

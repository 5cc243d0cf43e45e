package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

// ProjectUpdate carries the mutable project fields. Nil fields are untouched.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// ProjectService provides tenant-scoped project CRUD.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	return &ProjectService{db: db}, nil
}

// Create adds a project to the tenant.
func (s *ProjectService) Create(ctx context.Context, tenantID, name, description string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}

	project := &models.Project{
		TenantID:    tenantID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("project service: create: %w", err)
	}
	return project, nil
}

// List returns the tenant's projects, newest first.
func (s *ProjectService) List(ctx context.Context, tenantID string) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project service: list: %w", err)
	}
	return projects, nil
}

// Get loads one project scoped to the tenant.
func (s *ProjectService) Get(ctx context.Context, tenantID, projectID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).
		First(&project, "id = ? AND tenant_id = ?", projectID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: get: %w", err)
	}
	return &project, nil
}

// Update applies changes to a project scoped to the tenant.
func (s *ProjectService) Update(ctx context.Context, tenantID, projectID string, update ProjectUpdate) (*models.Project, error) {
	ctx = ensureContext(ctx)

	project, err := s.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("project name cannot be empty")
		}
		changes["name"] = name
	}
	if update.Description != nil {
		changes["description"] = strings.TrimSpace(*update.Description)
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(project).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("project service: update: %w", err)
		}
	}
	return project, nil
}

// Delete removes a project scoped to the tenant. Attached tasks keep their
// rows with the project reference cleared.
func (s *ProjectService) Delete(ctx context.Context, tenantID, projectID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.First(&project, "id = ? AND tenant_id = ?", projectID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("project service: load: %w", err)
		}

		err = tx.Model(&models.Task{}).
			Where("project_id = ? AND tenant_id = ?", projectID, tenantID).
			Update("project_id", nil).Error
		if err != nil {
			return fmt.Errorf("project service: detach tasks: %w", err)
		}

		if err := tx.Delete(&project).Error; err != nil {
			return fmt.Errorf("project service: delete: %w", err)
		}
		return nil
	})
}

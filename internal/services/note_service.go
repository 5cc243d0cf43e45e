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

// NoteUpdate carries the mutable note fields. Nil fields are untouched.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// NoteService provides tenant-scoped note CRUD.
type NoteService struct {
	db *gorm.DB
}

// NewNoteService constructs a NoteService.
func NewNoteService(db *gorm.DB) (*NoteService, error) {
	if db == nil {
		return nil, errors.New("note service: db is required")
	}
	return &NoteService{db: db}, nil
}

// Create adds a note authored by the caller.
func (s *NoteService) Create(ctx context.Context, tenantID, authorID, title, content string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewBadRequest("note title is required")
	}

	note := &models.Note{
		TenantID: tenantID,
		AuthorID: authorID,
		Title:    title,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("note service: create: %w", err)
	}
	return note, nil
}

// List returns the tenant's notes, newest first.
func (s *NoteService) List(ctx context.Context, tenantID string) ([]models.Note, error) {
	ctx = ensureContext(ctx)

	var notes []models.Note
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("note service: list: %w", err)
	}
	return notes, nil
}

// Get loads one note scoped to the tenant.
func (s *NoteService) Get(ctx context.Context, tenantID, noteID string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	var note models.Note
	err := s.db.WithContext(ctx).
		First(&note, "id = ? AND tenant_id = ?", noteID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("note service: get: %w", err)
	}
	return &note, nil
}

// Update applies changes to a note scoped to the tenant.
func (s *NoteService) Update(ctx context.Context, tenantID, noteID string, update NoteUpdate) (*models.Note, error) {
	ctx = ensureContext(ctx)

	note, err := s.Get(ctx, tenantID, noteID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("note title cannot be empty")
		}
		changes["title"] = title
	}
	if update.Content != nil {
		changes["content"] = *update.Content
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(note).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("note service: update: %w", err)
		}
	}
	return note, nil
}

// Delete removes a note scoped to the tenant.
func (s *NoteService) Delete(ctx context.Context, tenantID, noteID string) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", noteID, tenantID).
		Delete(&models.Note{})
	if res.Error != nil {
		return fmt.Errorf("note service: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/pkg/crypto"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

const (
	apiKeyPrefixBytes = 6
	apiKeySecretBytes = 24
)

// CreatedAPIKey pairs the stored record with the raw secret, which is
// returned exactly once and never persisted.
type CreatedAPIKey struct {
	Key    *models.APIKey
	Secret string
}

// APIKeyService issues and revokes tenant API keys. Secrets are stored as
// SHA-256 digests; lookup goes through the digest as well.
type APIKeyService struct {
	db *gorm.DB
}

// NewAPIKeyService constructs an APIKeyService.
func NewAPIKeyService(db *gorm.DB) (*APIKeyService, error) {
	if db == nil {
		return nil, errors.New("api key service: db is required")
	}
	return &APIKeyService{db: db}, nil
}

// Create mints a new API key for the tenant and returns the raw secret once.
func (s *APIKeyService) Create(ctx context.Context, tenantID, creatorID, name string) (*CreatedAPIKey, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("api key name is required")
	}

	prefix, err := crypto.GenerateToken(apiKeyPrefixBytes)
	if err != nil {
		return nil, fmt.Errorf("api key service: generate prefix: %w", err)
	}
	secret, err := crypto.GenerateToken(apiKeySecretBytes)
	if err != nil {
		return nil, fmt.Errorf("api key service: generate secret: %w", err)
	}

	raw := fmt.Sprintf("sk_%s_%s", prefix, secret)
	key := &models.APIKey{
		TenantID:   tenantID,
		Name:       name,
		Prefix:     prefix,
		SecretHash: crypto.DigestToken(raw),
		CreatedBy:  creatorID,
	}
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return nil, fmt.Errorf("api key service: create: %w", err)
	}

	return &CreatedAPIKey{Key: key, Secret: raw}, nil
}

// List returns the tenant's API keys, newest first. Secrets are never included.
func (s *APIKeyService) List(ctx context.Context, tenantID string) ([]models.APIKey, error) {
	ctx = ensureContext(ctx)

	var keys []models.APIKey
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("api key service: list: %w", err)
	}
	return keys, nil
}

// Revoke deletes an API key scoped to the tenant.
func (s *APIKeyService) Revoke(ctx context.Context, tenantID, keyID string) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", keyID, tenantID).
		Delete(&models.APIKey{})
	if res.Error != nil {
		return fmt.Errorf("api key service: revoke: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Verify resolves a raw API key to its record and stamps last use. Unknown or
// revoked keys return ErrUnauthorized.
func (s *APIKeyService) Verify(ctx context.Context, rawKey string) (*models.APIKey, error) {
	ctx = ensureContext(ctx)

	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var key models.APIKey
	err := s.db.WithContext(ctx).
		First(&key, "secret_hash = ?", crypto.DigestToken(rawKey)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("api key service: verify: %w", err)
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&key).Update("last_used_at", now).Error; err == nil {
		key.LastUsedAt = &now
	}
	return &key, nil
}

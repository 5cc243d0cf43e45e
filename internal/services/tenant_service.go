package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/permissions"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

// TenantUpdate carries the mutable tenant fields. Nil fields are untouched.
type TenantUpdate struct {
	Name     *string
	Timezone *string
	Settings datatypes.JSON
}

// TenantService reads and updates tenant records.
type TenantService struct {
	db *gorm.DB
}

// NewTenantService constructs a TenantService.
func NewTenantService(db *gorm.DB) (*TenantService, error) {
	if db == nil {
		return nil, errors.New("tenant service: db is required")
	}
	return &TenantService{db: db}, nil
}

// Create provisions a tenant owned by the caller, with its OWNER membership
// and FREE subscription, in one transaction. Used for onboarding users who
// joined the platform through an invitation and later want a space of their own.
func (s *TenantService) Create(ctx context.Context, userID, name string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("organization name is required")
	}

	tenant := &models.Tenant{
		Name:     name,
		Slug:     slugify(name),
		Timezone: "UTC",
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("tenant service: create tenant: %w", err)
		}

		membership := &models.Membership{
			TenantID: tenant.ID,
			UserID:   userID,
			Role:     models.RoleOwner,
		}
		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("tenant service: create membership: %w", err)
		}

		subscription := &models.Subscription{
			TenantID: tenant.ID,
			Plan:     models.PlanFree,
			Status:   "active",
		}
		if err := tx.Create(subscription).Error; err != nil {
			return fmt.Errorf("tenant service: create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Get loads a tenant with its subscription.
func (s *TenantService) Get(ctx context.Context, tenantID string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	err := s.db.WithContext(ctx).
		Preload("Subscription").
		First(&tenant, "id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tenant service: get: %w", err)
	}
	return &tenant, nil
}

// Update applies the given changes to the caller's tenant. Admin-or-above only.
func (s *TenantService) Update(ctx context.Context, tenantID, callerID string, update TenantUpdate) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caller models.Membership
		err := tx.First(&caller, "tenant_id = ? AND user_id = ?", tenantID, callerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTenantMember
		}
		if err != nil {
			return fmt.Errorf("tenant service: load caller: %w", err)
		}

		if !permissions.CanManageTenant(caller.Role) {
			return apperrors.ErrForbidden
		}

		if err := tx.First(&tenant, "id = ?", tenantID).Error; err != nil {
			return fmt.Errorf("tenant service: load tenant: %w", err)
		}

		changes := map[string]any{}
		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return apperrors.NewBadRequest("organization name cannot be empty")
			}
			changes["name"] = name
		}
		if update.Timezone != nil {
			tz := strings.TrimSpace(*update.Timezone)
			if tz == "" {
				tz = "UTC"
			}
			changes["timezone"] = tz
		}
		if update.Settings != nil {
			changes["settings"] = update.Settings
		}

		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&tenant).Updates(changes).Error; err != nil {
			return fmt.Errorf("tenant service: update tenant: %w", err)
		}
		return tx.First(&tenant, "id = ?", tenantID).Error
	})
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.Membership{},
		&models.Invitation{},
		&models.Subscription{},
		&models.Project{},
		&models.Task{},
		&models.Note{},
		&models.APIKey{},
		&models.CacheEntry{},
	); err != nil {
		return err
	}

	return ensurePendingInvitationIndex(db)
}

// ensurePendingInvitationIndex adds a partial unique index so that at most one
// PENDING invitation can exist per (tenant, email). Partial indexes are not
// available on MySQL; there the serialized create transaction carries the
// invariant alone.
func ensurePendingInvitationIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_pending_per_email ` +
				`ON invitations (tenant_id, email) WHERE status = 'PENDING'`,
		).Error
	default:
		return nil
	}
}

const (
	seedUserEmail  = "admin@example.com"
	seedTenantSlug = "admin-org"
)

// SeedData provisions a demo owner account and tenant. All writes are
// idempotent so repeated start-ups are safe.
func SeedData(db *gorm.DB) error {
	var user models.User
	err := db.Where(models.User{Email: seedUserEmail}).
		Attrs(models.User{Name: "Admin User", IsActive: true}).
		FirstOrCreate(&user).Error
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	if user.Password == "" {
		hashed, err := crypto.HashPassword("password123")
		if err != nil {
			return fmt.Errorf("seed user password: %w", err)
		}
		if err := db.Model(&user).Update("password", hashed).Error; err != nil {
			return fmt.Errorf("seed user password: %w", err)
		}
	}

	var tenant models.Tenant
	err = db.Where(models.Tenant{Slug: seedTenantSlug}).
		Attrs(models.Tenant{Name: "Admin Organization", Timezone: "UTC"}).
		FirstOrCreate(&tenant).Error
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	err = db.Where(models.Membership{TenantID: tenant.ID, UserID: user.ID}).
		Attrs(models.Membership{Role: models.RoleOwner}).
		FirstOrCreate(&models.Membership{}).Error
	if err != nil {
		return fmt.Errorf("seed membership: %w", err)
	}

	err = db.Where(models.Subscription{TenantID: tenant.ID}).
		Attrs(models.Subscription{Plan: models.PlanFree, Status: "active"}).
		FirstOrCreate(&models.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("seed subscription: %w", err)
	}

	return nil
}

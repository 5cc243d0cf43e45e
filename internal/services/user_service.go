package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/pkg/crypto"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/logger"
	"github.com/saaskit-io/saaskit/pkg/metrics"
	appvalidator "github.com/saaskit-io/saaskit/pkg/validator"
)

const minPasswordLength = 8

// RegistrationResult is what a successful registration produces: the new
// account plus the tenant it owns.
type RegistrationResult struct {
	User       *models.User
	Tenant     *models.Tenant
	Membership *models.Membership
}

// UserService handles account registration and credential verification.
type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{
		db:  db,
		log: logger.WithModule("users"),
	}, nil
}

// Register creates an account together with its tenant, OWNER membership, and
// FREE subscription in one transaction. A failure at any step leaves no
// partial state behind.
func (s *UserService) Register(ctx context.Context, name, email, password, organization string) (*RegistrationResult, error) {
	ctx = ensureContext(ctx)

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	organization = strings.TrimSpace(organization)

	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if !appvalidator.ValidateEmail(email) {
		return nil, apperrors.NewBadRequest("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if organization == "" {
		organization = fmt.Sprintf("%s's organization", name)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	result := &RegistrationResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error
		if err != nil {
			return fmt.Errorf("user service: check email: %w", err)
		}
		if existing > 0 {
			return ErrEmailTaken
		}

		user := &models.User{
			Name:     name,
			Email:    email,
			Password: hash,
			IsActive: true,
		}
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("user service: create user: %w", err)
		}

		tenant := &models.Tenant{
			Name:     organization,
			Slug:     slugify(organization),
			Timezone: "UTC",
		}
		if err := tx.Create(tenant).Error; err != nil {
			return fmt.Errorf("user service: create tenant: %w", err)
		}

		membership := &models.Membership{
			TenantID: tenant.ID,
			UserID:   user.ID,
			Role:     models.RoleOwner,
		}
		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("user service: create membership: %w", err)
		}

		subscription := &models.Subscription{
			TenantID: tenant.ID,
			Plan:     models.PlanFree,
			Status:   "active",
		}
		if err := tx.Create(subscription).Error; err != nil {
			return fmt.Errorf("user service: create subscription: %w", err)
		}

		result.User = user
		result.Tenant = tenant
		result.Membership = membership
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", result.User.ID),
		zap.String("tenant_id", result.Tenant.ID),
	)
	return result, nil
}

// Authenticate verifies the credential pair and records the login time.
// Unknown emails and wrong passwords both surface as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = normalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		s.log.Warn("failed to record login time", zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// GetByID loads a user by primary key.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: get by id: %w", err)
	}
	return &user, nil
}

// FindByEmail loads a user by their normalized email address.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find by email: %w", err)
	}
	return &user, nil
}

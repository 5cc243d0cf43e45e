package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/permissions"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/logger"
)

// SubscriptionService tracks each tenant's plan. There is no payment
// processing behind it; plan changes take effect immediately.
type SubscriptionService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(db *gorm.DB) (*SubscriptionService, error) {
	if db == nil {
		return nil, errors.New("subscription service: db is required")
	}
	return &SubscriptionService{
		db:  db,
		log: logger.WithModule("subscriptions"),
	}, nil
}

// Get returns the tenant's subscription, creating the FREE default if the
// row is missing.
func (s *SubscriptionService) Get(ctx context.Context, tenantID string) (*models.Subscription, error) {
	ctx = ensureContext(ctx)

	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where(models.Subscription{TenantID: tenantID}).
		Attrs(models.Subscription{Plan: models.PlanFree, Status: "active"}).
		FirstOrCreate(&sub).Error
	if err != nil {
		return nil, fmt.Errorf("subscription service: get: %w", err)
	}
	return &sub, nil
}

// Upgrade moves the tenant onto a paid plan and advances the period end by
// a month. Only the OWNER may change billing.
func (s *SubscriptionService) Upgrade(ctx context.Context, tenantID, callerID string, plan models.Plan) (*models.Subscription, error) {
	ctx = ensureContext(ctx)

	parsed, err := models.ParsePlan(string(plan))
	if err != nil || parsed == models.PlanFree {
		return nil, apperrors.NewBadRequest("plan must be PRO or ENTERPRISE")
	}

	var sub models.Subscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caller models.Membership
		err := tx.First(&caller, "tenant_id = ? AND user_id = ?", tenantID, callerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTenantMember
		}
		if err != nil {
			return fmt.Errorf("subscription service: load caller: %w", err)
		}

		if !permissions.CanManageBilling(caller.Role) {
			return apperrors.ErrForbidden
		}

		err = tx.Where(models.Subscription{TenantID: tenantID}).
			Attrs(models.Subscription{Plan: models.PlanFree, Status: "active"}).
			FirstOrCreate(&sub).Error
		if err != nil {
			return fmt.Errorf("subscription service: load subscription: %w", err)
		}

		periodEnd := time.Now().AddDate(0, 1, 0)
		changes := map[string]any{
			"plan":       plan,
			"period_end": periodEnd,
		}
		if err := tx.Model(&sub).Updates(changes).Error; err != nil {
			return fmt.Errorf("subscription service: update plan: %w", err)
		}
		sub.Plan = plan
		sub.PeriodEnd = &periodEnd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription plan changed",
		zap.String("tenant_id", tenantID),
		zap.String("plan", string(sub.Plan)),
	)
	return &sub, nil
}

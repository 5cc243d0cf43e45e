package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/permissions"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/logger"
	"github.com/saaskit-io/saaskit/pkg/metrics"
)

// MembershipService manages tenant memberships: resolution of the caller's
// tenant, member listing, and removal under the last-owner rule.
type MembershipService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMembershipService constructs a MembershipService.
func NewMembershipService(db *gorm.DB) (*MembershipService, error) {
	if db == nil {
		return nil, errors.New("membership service: db is required")
	}
	return &MembershipService{
		db:  db,
		log: logger.WithModule("memberships"),
	}, nil
}

// FindForUser resolves the caller's membership, tenant included. Users created
// through registration always hold exactly one membership; users who joined
// additional tenants via invitations resolve to their earliest one.
func (s *MembershipService) FindForUser(ctx context.Context, userID string) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	var membership models.Membership
	err := s.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotTenantMember
	}
	if err != nil {
		return nil, fmt.Errorf("membership service: find for user: %w", err)
	}
	return &membership, nil
}

// Find returns the membership for a (tenant, user) pair.
func (s *MembershipService) Find(ctx context.Context, tenantID, userID string) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	var membership models.Membership
	err := s.db.WithContext(ctx).
		First(&membership, "tenant_id = ? AND user_id = ?", tenantID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotTenantMember
	}
	if err != nil {
		return nil, fmt.Errorf("membership service: find: %w", err)
	}
	return &membership, nil
}

// ListMembers returns the tenant's members with their user records, owners
// first, then by join date.
func (s *MembershipService) ListMembers(ctx context.Context, tenantID string) ([]models.Membership, error) {
	ctx = ensureContext(ctx)

	var members []models.Membership
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("membership service: list members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes the membership identified by membershipID from the
// caller's tenant. The caller needs removal rights over the target's role, and
// a tenant may never lose its final OWNER. Both checks and the delete run in
// one transaction so concurrent removals cannot drop the owner count to zero.
func (s *MembershipService) RemoveMember(ctx context.Context, tenantID, callerID, membershipID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caller models.Membership
		err := tx.First(&caller, "tenant_id = ? AND user_id = ?", tenantID, callerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTenantMember
		}
		if err != nil {
			return fmt.Errorf("membership service: load caller: %w", err)
		}

		var target models.Membership
		err = tx.First(&target, "id = ? AND tenant_id = ?", membershipID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("membership service: load target: %w", err)
		}

		if !permissions.CanRemoveMember(caller.Role, target.Role) {
			return apperrors.ErrForbidden
		}

		if target.Role == models.RoleOwner {
			var owners int64
			err = tx.Model(&models.Membership{}).
				Where("tenant_id = ? AND role = ?", tenantID, models.RoleOwner).
				Count(&owners).Error
			if err != nil {
				return fmt.Errorf("membership service: count owners: %w", err)
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		if err := tx.Delete(&target).Error; err != nil {
			return fmt.Errorf("membership service: delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLastOwner) {
			metrics.MemberRemovals.WithLabelValues("blocked_last_owner").Inc()
		}
		return err
	}

	metrics.MemberRemovals.WithLabelValues("removed").Inc()
	s.log.Info("member removed",
		zap.String("tenant_id", tenantID),
		zap.String("membership_id", membershipID),
		zap.String("removed_by", callerID),
	)
	return nil
}

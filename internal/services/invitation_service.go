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
	"github.com/saaskit-io/saaskit/internal/permissions"
	"github.com/saaskit-io/saaskit/pkg/crypto"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/logger"
	"github.com/saaskit-io/saaskit/pkg/mail"
	"github.com/saaskit-io/saaskit/pkg/metrics"
	appvalidator "github.com/saaskit-io/saaskit/pkg/validator"
)

const (
	defaultInvitationExpiry     = 7 * 24 * time.Hour
	defaultInvitationTokenBytes = 32
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL configures the base URL used to build invitation links.
func WithInvitationBaseURL(url string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInvitationExpiry overrides the invitation lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInvitationTokenSize adjusts the random token length in bytes.
func WithInvitationTokenSize(size int) InvitationOption {
	return func(s *InvitationService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInvitationClock injects a custom clock, primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InvitationService manages the team invitation lifecycle: issue, accept,
// reject, cancel, and expiry of pending invitations.
type InvitationService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewInvitationService constructs an InvitationService with the provided dependencies.
func NewInvitationService(db *gorm.DB, mailer mail.Mailer, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}

	service := &InvitationService{
		db:          db,
		mailer:      mailer,
		expiry:      defaultInvitationExpiry,
		tokenLength: defaultInvitationTokenBytes,
		now:         time.Now,
		log:         logger.WithModule("invitations"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create issues a PENDING invitation for email at the given role. The inviter
// must hold an admin-or-above membership in the tenant, the invitee must not
// already be a member, and only one PENDING invitation may exist per
// (tenant, email) at a time. The whole check-then-write sequence runs inside
// one transaction; concurrent duplicates additionally trip the partial unique
// index and surface as the same conflict error.
func (s *InvitationService) Create(ctx context.Context, tenantID, inviterID, email string, role models.Role) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	email = normalizeEmail(email)
	if !appvalidator.ValidateEmail(email) {
		return nil, apperrors.NewBadRequest("a valid email address is required")
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("unknown role")
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate token: %w", err)
	}

	now := s.now()
	invitation := &models.Invitation{
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.expiry),
		InvitedBy: inviterID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inviter models.Membership
		err := tx.First(&inviter, "tenant_id = ? AND user_id = ?", tenantID, inviterID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTenantMember
		}
		if err != nil {
			return fmt.Errorf("invitation service: load inviter membership: %w", err)
		}

		if !permissions.CanInvite(inviter.Role, role) {
			return apperrors.ErrForbidden
		}

		var memberCount int64
		err = tx.Model(&models.Membership{}).
			Joins("JOIN users ON users.id = memberships.user_id").
			Where("memberships.tenant_id = ? AND LOWER(users.email) = ?", tenantID, email).
			Count(&memberCount).Error
		if err != nil {
			return fmt.Errorf("invitation service: check existing membership: %w", err)
		}
		if memberCount > 0 {
			return ErrAlreadyMember
		}

		var pendingCount int64
		err = tx.Model(&models.Invitation{}).
			Where("tenant_id = ? AND email = ? AND status = ?", tenantID, email, models.InvitationPending).
			Count(&pendingCount).Error
		if err != nil {
			return fmt.Errorf("invitation service: check pending invitation: %w", err)
		}
		if pendingCount > 0 {
			return ErrInvitationPending
		}

		if err := tx.Create(invitation).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrInvitationPending
			}
			return fmt.Errorf("invitation service: create invitation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationTransitions.WithLabelValues("created").Inc()
	s.log.Info("invitation created",
		zap.String("tenant_id", tenantID),
		zap.String("email", email),
		zap.String("role", role.String()),
	)

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "You've been invited to join a team",
			Body:    s.invitationBody(email, s.invitationLink(token)),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			// The invitation row exists; delivery failure is logged, not fatal.
			s.log.Warn("invitation email delivery failed", zap.Error(mailErr))
		}
	}

	return invitation, nil
}

// Accept resolves a PENDING invitation for the calling user, creating the
// membership at the invited role. An invitation past its expiry is flipped to
// EXPIRED and the call fails; if the caller already belongs to the tenant the
// accept is idempotent and no duplicate membership is created.
func (s *InvitationService) Accept(ctx context.Context, token, userID string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("invitation token is required")
	}

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("invitation service: find invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		if invitation.Status == models.InvitationExpired {
			return nil, ErrInvitationExpired
		}
		return nil, ErrInvitationNotPending
	}

	now := s.now()
	if now.After(invitation.ExpiresAt) {
		// The flip to EXPIRED must survive the failed accept, so it runs
		// outside the acceptance transaction.
		if err := s.markExpired(ctx, invitation.ID); err != nil {
			return nil, err
		}
		metrics.InvitationTransitions.WithLabelValues("expired").Inc()
		return nil, ErrInvitationExpired
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUnauthorized
			}
			return fmt.Errorf("invitation service: load user: %w", err)
		}

		if normalizeEmail(user.Email) != normalizeEmail(invitation.Email) {
			return ErrInvitationEmailMismatch
		}

		var existing int64
		err := tx.Model(&models.Membership{}).
			Where("tenant_id = ? AND user_id = ?", invitation.TenantID, userID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("invitation service: check membership: %w", err)
		}

		if existing == 0 {
			membership := &models.Membership{
				TenantID: invitation.TenantID,
				UserID:   userID,
				Role:     invitation.Role,
			}
			if err := tx.Create(membership).Error; err != nil {
				if isUniqueConstraintError(err) {
					// Lost a race against a concurrent accept; the membership
					// exists, which is all this branch has to guarantee.
					return nil
				}
				return fmt.Errorf("invitation service: create membership: %w", err)
			}
		}

		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Update("status", models.InvitationAccepted)
		if res.Error != nil {
			return fmt.Errorf("invitation service: mark accepted: %w", res.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invitation.Status = models.InvitationAccepted
	metrics.InvitationTransitions.WithLabelValues("accepted").Inc()
	s.log.Info("invitation accepted",
		zap.String("tenant_id", invitation.TenantID),
		zap.String("user_id", userID),
	)

	return &invitation, nil
}

// Reject flips a PENDING invitation to REJECTED. The token acts as a bearer
// credential: any authenticated caller presenting it may decline on the
// invitee's behalf. No further transitions are possible afterwards.
func (s *InvitationService) Reject(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("invitation token is required")
	}

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("invitation service: find invitation: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
		Update("status", models.InvitationRejected)
	if res.Error != nil {
		return nil, fmt.Errorf("invitation service: mark rejected: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvitationNotPending
	}

	invitation.Status = models.InvitationRejected
	metrics.InvitationTransitions.WithLabelValues("rejected").Inc()

	return &invitation, nil
}

// Cancel deletes an invitation in the caller's tenant regardless of status.
// The caller must hold an admin-or-above membership in the invitation's
// tenant; callers outside the tenant see the invitation as absent.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, callerID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.First(&invitation, "id = ?", invitationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("invitation service: find invitation: %w", err)
		}

		var caller models.Membership
		err := tx.First(&caller, "tenant_id = ? AND user_id = ?", invitation.TenantID, callerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		if err != nil {
			return fmt.Errorf("invitation service: load caller membership: %w", err)
		}

		if !permissions.CanManageTenant(caller.Role) {
			return apperrors.ErrForbidden
		}

		if err := tx.Delete(&invitation).Error; err != nil {
			return fmt.Errorf("invitation service: delete invitation: %w", err)
		}

		metrics.InvitationTransitions.WithLabelValues("cancelled").Inc()
		return nil
	})
}

// List returns the tenant's invitations, newest first.
func (s *InvitationService) List(ctx context.Context, tenantID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	var invitations []models.Invitation
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: list invitations: %w", err)
	}
	return invitations, nil
}

// ExpireStale flips every overdue PENDING invitation to EXPIRED and returns
// the number of rows affected. The maintenance scheduler calls this hourly.
func (s *InvitationService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, now).
		Update("status", models.InvitationExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("invitation service: expire stale: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		metrics.InvitationTransitions.WithLabelValues("expired").Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (s *InvitationService) markExpired(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Update("status", models.InvitationExpired).Error
	if err != nil {
		return fmt.Errorf("invitation service: mark expired: %w", err)
	}
	return nil
}

func (s *InvitationService) invitationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/invite/%s", s.baseURL, token)
}

func (s *InvitationService) invitationBody(email, link string) string {
	return fmt.Sprintf("Hello,\n\nYou have been invited to join a team. Use the following link to respond:\n%s\n\nIf you did not expect this email, you can ignore it.\n", link)
}

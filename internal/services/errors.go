package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

// Errors shared across the team-management services. Each carries the HTTP
// status it renders with; handlers pass them straight to response.Error.
var (
	// ErrNotTenantMember indicates the caller holds no membership in the tenant
	// in question. Cross-tenant access deliberately reads as "not found".
	ErrNotTenantMember = apperrors.New("NOT_TENANT_MEMBER", "No organization found for user", http.StatusNotFound)

	// ErrInvitationNotFound indicates no invitation matches the provided token or id.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInvitationNotPending signals the invitation has already been resolved.
	ErrInvitationNotPending = apperrors.New("INVITATION_NOT_PENDING", "Invitation has already been resolved", http.StatusConflict)
	// ErrInvitationExpired signals the invitation lapsed before it was accepted.
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "Invitation has expired", http.StatusGone)
	// ErrInvitationEmailMismatch signals the caller's email does not match the invitee.
	ErrInvitationEmailMismatch = apperrors.New("INVITATION_EMAIL_MISMATCH", "This invitation was issued to a different email address", http.StatusForbidden)
	// ErrInvitationPending signals an active invitation already exists for the email.
	ErrInvitationPending = apperrors.New("INVITATION_PENDING", "An active invitation already exists for this email", http.StatusConflict)

	// ErrAlreadyMember signals the invitee already belongs to the tenant.
	ErrAlreadyMember = apperrors.New("ALREADY_MEMBER", "User is already a member of this organization", http.StatusConflict)
	// ErrMemberNotFound indicates the requested membership does not exist in the caller's tenant.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "Member not found", http.StatusNotFound)
	// ErrLastOwner protects the invariant that every tenant keeps at least one owner.
	ErrLastOwner = apperrors.New("LAST_OWNER_PROTECTED", "Organizations must retain at least one owner", http.StatusConflict)

	// ErrEmailTaken signals a registration attempt with an existing address.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "An account already exists for this email address", http.StatusConflict)
)

// isUniqueConstraintError detects database uniqueness violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}

package models

import "time"

// InvitationStatus tracks the invitation lifecycle. PENDING is the only
// non-terminal state; ACCEPTED, REJECTED and EXPIRED admit no further
// transitions.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// Invitation is a pending offer of tenant membership at a given role, bound
// to an email address and an opaque token. The token is the invitation's
// public handle and is never reused.
type Invitation struct {
	BaseModel

	TenantID  string           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email     string           `gorm:"not null;index" json:"email"`
	Role      Role             `gorm:"not null" json:"role"`
	Token     string           `gorm:"uniqueIndex;not null" json:"token"`
	Status    InvitationStatus `gorm:"not null;default:PENDING;index" json:"status"`
	ExpiresAt time.Time        `gorm:"not null;index" json:"expires_at"`
	InvitedBy string           `gorm:"type:uuid" json:"invited_by"`

	Tenant *Tenant `gorm:"constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
}

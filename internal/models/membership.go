package models

// Membership joins a user to a tenant with a role. A user holds at most one
// role per tenant, and every tenant must keep at least one OWNER at all times.
type Membership struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user" json:"tenant_id"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_user" json:"user_id"`
	Role     Role   `gorm:"not null" json:"role"`

	Tenant *Tenant `gorm:"constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

package models

import "gorm.io/datatypes"

// Tenant is an organization, the unit of data isolation. Every domain record
// hangs off a tenant and every request is scoped to one through the caller's
// membership.
type Tenant struct {
	BaseModel

	Name     string         `gorm:"not null" json:"name"`
	Slug     string         `gorm:"uniqueIndex;not null" json:"slug"`
	Timezone string         `gorm:"default:UTC" json:"timezone"`
	Settings datatypes.JSON `json:"settings,omitempty"`

	Members      []Membership  `gorm:"foreignKey:TenantID" json:"members,omitempty"`
	Invitations  []Invitation  `gorm:"foreignKey:TenantID" json:"invitations,omitempty"`
	Subscription *Subscription `gorm:"foreignKey:TenantID" json:"subscription,omitempty"`

	Projects []Project `gorm:"foreignKey:TenantID" json:"-"`
	Tasks    []Task    `gorm:"foreignKey:TenantID" json:"-"`
	Notes    []Note    `gorm:"foreignKey:TenantID" json:"-"`
	APIKeys  []APIKey  `gorm:"foreignKey:TenantID" json:"-"`
}

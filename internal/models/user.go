package models

import "time"

// User describes an account holder. Tenancy is expressed through Membership
// rows rather than a direct tenant reference: a user may belong to several
// tenants, each with its own role.
type User struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Avatar   string `json:"avatar,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Memberships []Membership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

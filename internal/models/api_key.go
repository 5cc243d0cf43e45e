package models

import "time"

// APIKey grants programmatic access to a tenant. Only the SHA-256 digest of
// the secret is stored; the raw key is shown exactly once at creation time.
type APIKey struct {
	BaseModel

	TenantID   string     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name       string     `gorm:"not null" json:"name"`
	Prefix     string     `gorm:"not null;index" json:"prefix"`
	SecretHash string     `gorm:"uniqueIndex;not null" json:"-"`
	CreatedBy  string     `gorm:"type:uuid" json:"created_by"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

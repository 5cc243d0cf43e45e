package models

// Project groups related work inside a tenant.
type Project struct {
	BaseModel

	TenantID    string `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	Tasks []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

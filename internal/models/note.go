package models

// Note is a free-form text record inside a tenant.
type Note struct {
	BaseModel

	TenantID string `gorm:"type:uuid;not null;index" json:"tenant_id"`
	AuthorID string `gorm:"type:uuid;index" json:"author_id"`
	Title    string `gorm:"not null" json:"title"`
	Content  string `json:"content,omitempty"`
}

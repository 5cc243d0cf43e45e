package models

import (
	"fmt"
	"time"
)

// Plan identifies the subscription tier a tenant is on.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// ParsePlan converts a string into a Plan, rejecting unknown values.
func ParsePlan(value string) (Plan, error) {
	switch Plan(value) {
	case PlanFree, PlanPro, PlanEnterprise:
		return Plan(value), nil
	default:
		return "", fmt.Errorf("unknown plan %q", value)
	}
}

// Subscription records the plan a tenant is tracked on. Billing integration
// is out of scope; this is plan bookkeeping only.
type Subscription struct {
	BaseModel

	TenantID  string     `gorm:"type:uuid;not null;uniqueIndex" json:"tenant_id"`
	Plan      Plan       `gorm:"not null;default:FREE" json:"plan"`
	Status    string     `gorm:"not null;default:active" json:"status"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
}

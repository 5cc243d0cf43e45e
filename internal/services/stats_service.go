package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/models"
)

// DashboardStats aggregates the counters shown on the dashboard.
type DashboardStats struct {
	Members            int64 `json:"members"`
	PendingInvitations int64 `json:"pending_invitations"`
	Projects           int64 `json:"projects"`
	Tasks              int64 `json:"tasks"`
	OpenTasks          int64 `json:"open_tasks"`
	Notes              int64 `json:"notes"`
	APIKeys            int64 `json:"api_keys"`
}

// StatsService computes per-tenant dashboard counters.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *gorm.DB) (*StatsService, error) {
	if db == nil {
		return nil, errors.New("stats service: db is required")
	}
	return &StatsService{db: db}, nil
}

// Dashboard returns the tenant's counters in one pass.
func (s *StatsService) Dashboard(ctx context.Context, tenantID string) (*DashboardStats, error) {
	ctx = ensureContext(ctx)

	stats := &DashboardStats{}
	counts := []struct {
		dest  *int64
		model any
		query string
		args  []any
	}{
		{&stats.Members, &models.Membership{}, "tenant_id = ?", []any{tenantID}},
		{&stats.PendingInvitations, &models.Invitation{}, "tenant_id = ? AND status = ?", []any{tenantID, models.InvitationPending}},
		{&stats.Projects, &models.Project{}, "tenant_id = ?", []any{tenantID}},
		{&stats.Tasks, &models.Task{}, "tenant_id = ?", []any{tenantID}},
		{&stats.OpenTasks, &models.Task{}, "tenant_id = ? AND status <> ?", []any{tenantID, models.TaskDone}},
		{&stats.Notes, &models.Note{}, "tenant_id = ?", []any{tenantID}},
		{&stats.APIKeys, &models.APIKey{}, "tenant_id = ?", []any{tenantID}},
	}

	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(c.model).Where(c.query, c.args...).Count(c.dest).Error
		if err != nil {
			return nil, fmt.Errorf("stats service: count: %w", err)
		}
	}
	return stats, nil
}

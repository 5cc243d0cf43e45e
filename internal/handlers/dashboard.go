package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// DashboardHandler exposes per-tenant counters.
type DashboardHandler struct {
	stats       *services.StatsService
	memberships *services.MembershipService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(stats *services.StatsService, memberships *services.MembershipService) *DashboardHandler {
	return &DashboardHandler{stats: stats, memberships: memberships}
}

// Stats returns the caller's dashboard counters.
func (h *DashboardHandler) Stats(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.stats.Dashboard(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

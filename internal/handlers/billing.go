package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// BillingHandler exposes subscription tracking.
type BillingHandler struct {
	subscriptions *services.SubscriptionService
	memberships   *services.MembershipService
}

// NewBillingHandler constructs a BillingHandler.
func NewBillingHandler(subscriptions *services.SubscriptionService, memberships *services.MembershipService) *BillingHandler {
	return &BillingHandler{subscriptions: subscriptions, memberships: memberships}
}

type upgradePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=PRO ENTERPRISE"`
}

// Get returns the tenant's subscription.
func (h *BillingHandler) Get(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	sub, err := h.subscriptions.Get(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

// Upgrade moves the tenant onto a paid plan. Owner only.
func (h *BillingHandler) Upgrade(c *gin.Context) {
	req, err := bindAndValidate[upgradePlanRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	sub, err := h.subscriptions.Upgrade(c.Request.Context(), membership.TenantID, membership.UserID, models.Plan(req.Plan))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sub)
}

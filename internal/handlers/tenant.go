package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// TenantHandler exposes the caller's organization.
type TenantHandler struct {
	tenants     *services.TenantService
	memberships *services.MembershipService
}

// NewTenantHandler constructs a TenantHandler.
func NewTenantHandler(tenants *services.TenantService, memberships *services.MembershipService) *TenantHandler {
	return &TenantHandler{tenants: tenants, memberships: memberships}
}

type createTenantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type updateTenantRequest struct {
	Name     *string         `json:"name" validate:"omitempty,min=1,max=120"`
	Timezone *string         `json:"timezone" validate:"omitempty,max=64"`
	Settings json.RawMessage `json:"settings"`
}

// Get returns the caller's tenant with its subscription.
func (h *TenantHandler) Get(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tenant": tenant,
		"role":   membership.Role,
	})
}

// Create provisions a new tenant owned by the caller.
func (h *TenantHandler) Create(c *gin.Context) {
	req, err := bindAndValidate[createTenantRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	tenant, err := h.tenants.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, tenant)
}

// Update applies changes to the caller's tenant.
func (h *TenantHandler) Update(c *gin.Context) {
	req, err := bindAndValidate[updateTenantRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	update := services.TenantUpdate{
		Name:     req.Name,
		Timezone: req.Timezone,
	}
	if len(req.Settings) > 0 {
		if !json.Valid(req.Settings) {
			response.Error(c, apperrors.NewBadRequest("settings must be valid JSON"))
			return
		}
		update.Settings = datatypes.JSON(req.Settings)
	}

	tenant, err := h.tenants.Update(c.Request.Context(), membership.TenantID, membership.UserID, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/permissions"
	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// APIKeyHandler exposes tenant API key management. Creation and revocation
// require admin-or-above; the raw secret appears only in the create response.
type APIKeyHandler struct {
	keys        *services.APIKeyService
	memberships *services.MembershipService
}

// NewAPIKeyHandler constructs an APIKeyHandler.
func NewAPIKeyHandler(keys *services.APIKeyService, memberships *services.MembershipService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys, memberships: memberships}
}

type createAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// Create mints a new API key.
func (h *APIKeyHandler) Create(c *gin.Context) {
	req, err := bindAndValidate[createAPIKeyRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !permissions.CanManageTenant(membership.Role) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	created, err := h.keys.Create(c.Request.Context(), membership.TenantID, membership.UserID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"key":    created.Key,
		"secret": created.Secret,
	})
}

// List returns the tenant's API keys without secrets.
func (h *APIKeyHandler) List(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	keys, err := h.keys.List(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, keys)
}

// Revoke deletes an API key.
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !permissions.CanManageTenant(membership.Role) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	if err := h.keys.Revoke(c.Request.Context(), membership.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

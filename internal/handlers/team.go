package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// TeamHandler exposes the invitation lifecycle and member management.
type TeamHandler struct {
	invitations *services.InvitationService
	memberships *services.MembershipService
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(invitations *services.InvitationService, memberships *services.MembershipService) *TeamHandler {
	return &TeamHandler{invitations: invitations, memberships: memberships}
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=OWNER ADMIN MEMBER VIEWER"`
}

type invitationTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type cancelInvitationRequest struct {
	InvitationID string `json:"invitation_id" validate:"required,uuid"`
}

type removeMemberRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
}

// Members returns the caller's team roster.
func (h *TeamHandler) Members(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.memberships.ListMembers(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}

// Invitations returns the tenant's invitations, newest first.
func (h *TeamHandler) Invitations(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	invitations, err := h.invitations.List(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitations)
}

// Invite issues a PENDING invitation for the given email and role.
func (h *TeamHandler) Invite(c *gin.Context) {
	req, err := bindAndValidate[inviteRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("unknown role"))
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	invitation, err := h.invitations.Create(c.Request.Context(), membership.TenantID, membership.UserID, req.Email, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invitation)
}

// Accept resolves a pending invitation for the calling user.
func (h *TeamHandler) Accept(c *gin.Context) {
	req, err := bindAndValidate[invitationTokenRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	invitation, err := h.invitations.Accept(c.Request.Context(), req.Token, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

// Reject declines a pending invitation by token.
func (h *TeamHandler) Reject(c *gin.Context) {
	req, err := bindAndValidate[invitationTokenRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	invitation, err := h.invitations.Reject(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

// Cancel withdraws an invitation in the caller's tenant.
func (h *TeamHandler) Cancel(c *gin.Context) {
	req, err := bindAndValidate[cancelInvitationRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.invitations.Cancel(c.Request.Context(), req.InvitationID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// RemoveMember deletes a membership from the caller's tenant.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	req, err := bindAndValidate[removeMemberRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	err = h.memberships.RemoveMember(c.Request.Context(), membership.TenantID, membership.UserID, req.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

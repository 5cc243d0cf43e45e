package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/saaskit-io/saaskit/internal/auth"
	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// AuthHandler exposes registration, login, token refresh, and the current
// user profile.
type AuthHandler struct {
	users       *services.UserService
	memberships *services.MembershipService
	jwt         *iauth.JWTService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService, memberships *services.MembershipService, jwt *iauth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, memberships: memberships, jwt: jwt}
}

type registerRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	Organization string `json:"organization" validate:"max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authPayload struct {
	User   *models.User     `json:"user"`
	Tenant *models.Tenant   `json:"tenant,omitempty"`
	Tokens *iauth.TokenPair `json:"tokens"`
}

// Register creates an account with its own tenant and signs the caller in.
func (h *AuthHandler) Register(c *gin.Context) {
	req, err := bindAndValidate[registerRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Organization)
	if err != nil {
		response.Error(c, err)
		return
	}

	tokens, err := h.jwt.GeneratePair(result.User.ID, result.User.Email)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to issue tokens"))
		return
	}

	response.Success(c, http.StatusCreated, authPayload{
		User:   result.User,
		Tenant: result.Tenant,
		Tokens: tokens,
	})
}

// Login verifies credentials and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	req, err := bindAndValidate[loginRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	tokens, err := h.jwt.GeneratePair(user.ID, user.Email)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to issue tokens"))
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: user, Tokens: tokens})
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	req, err := bindAndValidate[refreshRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	claims, err := h.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	// Re-check the account so deactivated users cannot refresh forever.
	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	tokens, err := h.jwt.GeneratePair(user.ID, user.Email)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "failed to issue tokens"))
		return
	}

	response.Success(c, http.StatusOK, authPayload{User: user, Tokens: tokens})
}

// Me returns the current user with their membership and tenant.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := h.memberships.FindForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   user,
		"role":   membership.Role,
		"tenant": membership.Tenant,
	})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/middleware"
	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

// currentUserID extracts the authenticated user id placed by the auth middleware.
func currentUserID(c *gin.Context) (string, error) {
	value, ok := c.Get(middleware.CtxUserIDKey)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// currentMembership resolves the caller's membership, tenant included. Every
// tenant-scoped handler goes through this so cross-tenant requests are cut
// off before they reach a service.
func currentMembership(c *gin.Context, memberships *services.MembershipService) (*models.Membership, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	return memberships.FindForUser(c.Request.Context(), userID)
}

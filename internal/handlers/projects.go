package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// ProjectHandler exposes tenant-scoped project CRUD.
type ProjectHandler struct {
	projects    *services.ProjectService
	memberships *services.MembershipService
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(projects *services.ProjectService, memberships *services.MembershipService) *ProjectHandler {
	return &ProjectHandler{projects: projects, memberships: memberships}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// Create adds a project.
func (h *ProjectHandler) Create(c *gin.Context) {
	req, err := bindAndValidate[createProjectRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), membership.TenantID, req.Name, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// List returns the tenant's projects.
func (h *ProjectHandler) List(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	projects, err := h.projects.List(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, projects)
}

// Get returns one project.
func (h *ProjectHandler) Get(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), membership.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Update modifies one project.
func (h *ProjectHandler) Update(c *gin.Context) {
	req, err := bindAndValidate[updateProjectRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), membership.TenantID, c.Param("id"), services.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// Delete removes one project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.projects.Delete(c.Request.Context(), membership.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

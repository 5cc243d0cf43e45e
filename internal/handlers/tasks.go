package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// TaskHandler exposes tenant-scoped task CRUD.
type TaskHandler struct {
	tasks       *services.TaskService
	memberships *services.MembershipService
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(tasks *services.TaskService, memberships *services.MembershipService) *TaskHandler {
	return &TaskHandler{tasks: tasks, memberships: memberships}
}

type createTaskRequest struct {
	Title     string     `json:"title" validate:"required,min=1,max=300"`
	ProjectID *string    `json:"project_id" validate:"omitempty,uuid"`
	DueDate   *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=300"`
	Status       *string    `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	ProjectID    *string    `json:"project_id" validate:"omitempty,uuid"`
	ClearProject bool       `json:"clear_project"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// Create adds a task.
func (h *TaskHandler) Create(c *gin.Context) {
	req, err := bindAndValidate[createTaskRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), membership.TenantID, req.Title, req.ProjectID, req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, task)
}

// List returns the tenant's tasks, optionally filtered by status or project.
func (h *TaskHandler) List(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := services.TaskFilter{}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseTaskStatus(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("unknown task status"))
			return
		}
		filter.Status = &status
	}
	if projectID := c.Query("project_id"); projectID != "" {
		filter.ProjectID = &projectID
	}

	tasks, err := h.tasks.List(c.Request.Context(), membership.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tasks)
}

// Get returns one task.
func (h *TaskHandler) Get(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), membership.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// Update modifies one task.
func (h *TaskHandler) Update(c *gin.Context) {
	req, err := bindAndValidate[updateTaskRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	update := services.TaskUpdate{
		Title:        req.Title,
		ProjectID:    req.ProjectID,
		ClearProject: req.ClearProject,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		update.Status = &status
	}

	task, err := h.tasks.Update(c.Request.Context(), membership.TenantID, c.Param("id"), update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// Delete removes one task.
func (h *TaskHandler) Delete(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), membership.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaskit-io/saaskit/internal/services"
	"github.com/saaskit-io/saaskit/pkg/response"
)

// NoteHandler exposes tenant-scoped note CRUD.
type NoteHandler struct {
	notes       *services.NoteService
	memberships *services.MembershipService
}

// NewNoteHandler constructs a NoteHandler.
func NewNoteHandler(notes *services.NoteService, memberships *services.MembershipService) *NoteHandler {
	return &NoteHandler{notes: notes, memberships: memberships}
}

type createNoteRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=300"`
	Content string `json:"content" validate:"max=50000"`
}

type updateNoteRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=300"`
	Content *string `json:"content" validate:"omitempty,max=50000"`
}

// Create adds a note authored by the caller.
func (h *NoteHandler) Create(c *gin.Context) {
	req, err := bindAndValidate[createNoteRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.notes.Create(c.Request.Context(), membership.TenantID, membership.UserID, req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, note)
}

// List returns the tenant's notes.
func (h *NoteHandler) List(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	notes, err := h.notes.List(c.Request.Context(), membership.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, notes)
}

// Get returns one note.
func (h *NoteHandler) Get(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.notes.Get(c.Request.Context(), membership.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, note)
}

// Update modifies one note.
func (h *NoteHandler) Update(c *gin.Context) {
	req, err := bindAndValidate[updateNoteRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	note, err := h.notes.Update(c.Request.Context(), membership.TenantID, c.Param("id"), services.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, note)
}

// Delete removes one note.
func (h *NoteHandler) Delete(c *gin.Context) {
	membership, err := currentMembership(c, h.memberships)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.notes.Delete(c.Request.Context(), membership.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

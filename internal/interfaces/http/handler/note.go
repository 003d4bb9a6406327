package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appproject "github.com/clientportal/backend/internal/application/project"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

// NoteHandler serves project note endpoints
type NoteHandler struct {
	BaseHandler
	notes *appproject.NoteService
}

// NewNoteHandler creates a note handler
func NewNoteHandler(notes *appproject.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		BaseHandler: NewBaseHandler(logger.Named("note_handler")),
		notes:       notes,
	}
}

// RegisterRoutes registers note routes on the API group
func (h *NoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:ref/notes", h.List)
	rg.POST("/projects/:ref/notes", h.Add)

	notes := rg.Group("/notes")
	{
		notes.PATCH("/:id", h.Edit)
		notes.DELETE("/:id", h.Delete)
	}
}

// List returns the notes of a project
func (h *NoteHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	notes, total, err := h.notes.List(c.Request.Context(), c.Param("ref"), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, notes, total, filter.Page, filter.PageSize)
}

type noteRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

// Add creates a note on a project
func (h *NoteHandler) Add(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid note payload: "+err.Error())
		return
	}

	note, err := h.notes.Add(c.Request.Context(), c.Param("ref"), req.Content, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, note)
}

// Edit replaces a note's content
func (h *NoteHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid note payload: "+err.Error())
		return
	}

	note, err := h.notes.Edit(c.Request.Context(), uint(id), req.Content, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// Delete removes a note
func (h *NoteHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	if err := h.notes.Delete(c.Request.Context(), uint(id), h.actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

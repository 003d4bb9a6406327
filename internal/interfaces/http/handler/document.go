package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appproject "github.com/clientportal/backend/internal/application/project"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

// DocumentHandler serves project document endpoints. File bytes never pass
// through this service; clients upload and download via presigned URLs.
type DocumentHandler struct {
	BaseHandler
	documents *appproject.DocumentService
}

// NewDocumentHandler creates a document handler
func NewDocumentHandler(documents *appproject.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: NewBaseHandler(logger.Named("document_handler")),
		documents:   documents,
	}
}

// RegisterRoutes registers document routes on the API group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:ref/documents", h.List)
	rg.POST("/projects/:ref/documents", h.RequestUpload)

	docs := rg.Group("/documents")
	{
		docs.GET("/:id/download", h.Download)
		docs.DELETE("/:id", h.Delete)
	}
}

// List returns the documents of a project
func (h *DocumentHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	docs, total, err := h.documents.List(c.Request.Context(), c.Param("ref"), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

type uploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,min=1"`
}

// RequestUpload reserves a document slot and returns a presigned upload URL
func (h *DocumentHandler) RequestUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid upload request: "+err.Error())
		return
	}

	ticket, err := h.documents.RequestUpload(c.Request.Context(),
		c.Param("ref"), req.FileName, req.ContentType, req.SizeBytes, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ticket)
}

// Download returns a presigned download URL for a document
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	ticket, err := h.documents.DownloadURL(c.Request.Context(), uint(id), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// Delete removes a document and its stored object
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.documents.Delete(c.Request.Context(), uint(id), h.actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

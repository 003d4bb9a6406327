package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appproject "github.com/clientportal/backend/internal/application/project"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

// InvoiceHandler serves project invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *appproject.InvoiceService
}

// NewInvoiceHandler creates an invoice handler
func NewInvoiceHandler(invoices *appproject.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: NewBaseHandler(logger.Named("invoice_handler")),
		invoices:    invoices,
	}
}

// RegisterRoutes registers invoice routes on the API group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:ref/invoices", h.List)
}

// List returns the invoices of a project, refreshed from the billing
// provider when reachable.
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	invoices, total, err := h.invoices.List(c.Request.Context(), c.Param("ref"), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

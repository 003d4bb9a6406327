package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appproject "github.com/clientportal/backend/internal/application/project"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
	"github.com/clientportal/backend/internal/interfaces/http/middleware"
)

// ProjectHandler serves the project endpoints. A project is addressed by a
// reference that may be either the local numeric ID or the billing provider's
// project ID; resolution happens in the application layer.
type ProjectHandler struct {
	BaseHandler
	projects *appproject.Service
}

// NewProjectHandler creates a project handler
func NewProjectHandler(projects *appproject.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: NewBaseHandler(logger.Named("project_handler")),
		projects:    projects,
	}
}

// RegisterRoutes registers project routes on the API group
func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	{
		projects.GET("", middleware.RequireAdmin(), h.List)
		projects.POST("", middleware.RequireAdmin(), h.Create)
		projects.GET("/stages", h.Stages)
		projects.POST("/sync", middleware.RequireAdmin(), h.Sync)
		projects.GET("/:ref", h.Get)
		projects.PATCH("/:ref", h.Update)
		projects.POST("/:ref/refresh", h.Refresh)
	}

	rg.GET("/my/projects", h.ListMine)
	rg.GET("/users/:id/projects", middleware.RequireAdmin(), h.ListForClient)
}

// List returns all projects. Admin only.
func (h *ProjectHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	projects, total, err := h.projects.List(c.Request.Context(), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, projects, total, filter.Page, filter.PageSize)
}

// ListMine returns the authenticated user's visible projects
func (h *ProjectHandler) ListMine(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()
	actor := h.actor(c)

	projects, total, err := h.projects.ListForClient(c.Request.Context(), actor.UserID, filter, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, projects, total, filter.Page, filter.PageSize)
}

// ListForClient returns one client's visible projects. Admin only.
func (h *ProjectHandler) ListForClient(c *gin.Context) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	projects, total, err := h.projects.ListForClient(c.Request.Context(), uint(clientID), filter, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, projects, total, filter.Page, filter.PageSize)
}

// Get returns one project by local ID or provider ID
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("ref"), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Create creates a project, optionally also at the billing provider
func (h *ProjectHandler) Create(c *gin.Context) {
	var req appproject.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid project payload: "+err.Error())
		return
	}

	project, err := h.projects.Create(c.Request.Context(), req, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// Update applies a partial update to a project
func (h *ProjectHandler) Update(c *gin.Context) {
	var req appproject.UpdateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid update payload: "+err.Error())
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("ref"), req, h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Refresh re-pulls the provider record for one project
func (h *ProjectHandler) Refresh(c *gin.Context) {
	project, err := h.projects.Refresh(c.Request.Context(), c.Param("ref"), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Sync pulls the provider's full project list into the local mirror. Admin only.
func (h *ProjectHandler) Sync(c *gin.Context) {
	synced, err := h.projects.SyncFromRemote(c.Request.Context(), h.actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"synced": synced})
}

// Stages returns the progress stage ladder
func (h *ProjectHandler) Stages(c *gin.Context) {
	h.Success(c, h.projects.Stages())
}

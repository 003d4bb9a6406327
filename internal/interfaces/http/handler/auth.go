package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/clientportal/backend/internal/application/identity"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
	"github.com/clientportal/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves login, profile, and user management endpoints
type AuthHandler struct {
	BaseHandler
	auth *appidentity.AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *appidentity.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger.Named("auth_handler")),
		auth:        auth,
	}
}

// RegisterRoutes registers auth routes on the API group
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", h.Me)
		auth.POST("/change-password", h.ChangePassword)
	}

	users := rg.Group("/users", middleware.RequireAdmin())
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.DELETE("/:id", h.DeactivateUser)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and issues a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid login request: "+err.Error())
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ChangePassword rotates the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListUsers returns all portal users. Admin only.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}
	filter := req.ToFilter()

	users, total, err := h.auth.ListUsers(c.Request.Context(), filter, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// CreateUser creates a portal user. Admin only.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req appidentity.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid user payload: "+err.Error())
		return
	}

	user, err := h.auth.CreateUser(c.Request.Context(), req, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// DeactivateUser disables a portal user account. Admin only.
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.auth.DeactivateUser(c.Request.Context(), uint(id), middleware.IsAdmin(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

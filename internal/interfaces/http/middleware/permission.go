package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

// RequireAdmin aborts the request unless the authenticated user is an admin.
// Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}

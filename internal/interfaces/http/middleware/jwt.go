package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/auth"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
	ContextKeyRole   = "auth_role"
)

// JWTConfig configures the JWT authentication middleware
type JWTConfig struct {
	Service          *auth.JWTService
	SkipPaths        []string
	SkipPathPrefixes []string
}

// JWTAuth returns a middleware that validates Bearer tokens and stores the
// authenticated identity in the request context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		token, err := extractBearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, err.Error()))
			return
		}

		claims, err := cfg.Service.Validate(token)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(code, "Invalid or expired token"))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)

		// Propagate the actor into the request context so the billing
		// client can resolve the caller's session token.
		c.Request = c.Request.WithContext(
			shared.WithActorID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("Authorization header must be 'Bearer <token>'")
	}
	return parts[1], nil
}

// CurrentUserID returns the authenticated user ID, or 0 if unauthenticated
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// CurrentRole returns the authenticated user's role, or "" if unauthenticated
func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// IsAdmin reports whether the authenticated user has the admin role
func IsAdmin(c *gin.Context) bool {
	return CurrentRole(c) == "admin"
}

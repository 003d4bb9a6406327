package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/auth"
	"github.com/clientportal/backend/internal/infrastructure/config"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: expiration,
		Issuer:     "portal-test",
	})
}

func newTestRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(JWTConfig{
		Service:   svc,
		SkipPaths: []string{"/open"},
	}))
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": CurrentUserID(c),
			"role":    CurrentRole(c),
			"admin":   IsAdmin(c),
		})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	r := newTestRouter(svc)

	t.Run("skip path passes without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token populates the request identity", func(t *testing.T) {
		token, _, err := svc.Generate(42, "admin@acme.test", "admin")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(42), body["user_id"])
		assert.Equal(t, "admin", body["role"])
		assert.Equal(t, true, body["admin"])
	})

	t.Run("valid token propagates the actor into the request context", func(t *testing.T) {
		var actorID uint
		var found bool
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(JWTAuth(JWTConfig{Service: svc}))
		r.GET("/ctx", func(c *gin.Context) {
			actorID, found = shared.ActorIDFromContext(c.Request.Context())
			c.Status(http.StatusOK)
		})

		token, _, err := svc.Generate(42, "admin@acme.test", "admin")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, found)
		assert.Equal(t, uint(42), actorID)
	})

	t.Run("expired token reports TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := newTestJWTService(-time.Minute)
		token, _, err := expiredSvc.Generate(42, "admin@acme.test", "admin")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(ContextKeyRole, "customer")
	}, RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

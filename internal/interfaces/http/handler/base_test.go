package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/interfaces/http/dto"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(zap.NewNop())

	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		h.HandleError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleError(t *testing.T) {
	t.Run("not found maps to 404", func(t *testing.T) {
		w, resp := serveError(t, shared.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("provider outage maps to 502", func(t *testing.T) {
		w, resp := serveError(t, shared.ErrRemoteUnavailable)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "REMOTE_UNAVAILABLE", resp.Error.Code)
	})

	t.Run("wrapped domain errors unwrap", func(t *testing.T) {
		wrapped := fmt.Errorf("fetching project: %w", shared.ErrForbidden)
		w, resp := serveError(t, wrapped)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	})

	t.Run("unknown errors map to 500 without leaking details", func(t *testing.T) {
		w, resp := serveError(t, errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:")
	})
}

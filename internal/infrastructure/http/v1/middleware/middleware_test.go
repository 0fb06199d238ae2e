package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	appctx "stockwise/internal/core/context"
	"stockwise/internal/infrastructure/http/v1/middleware"
	"stockwise/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Trace())
	r.Use(middleware.Logger(logger.Nop()))
	r.Use(middleware.ErrorHandler())
	return r
}

func TestTrace(t *testing.T) {
	r := newEngine()
	var seen *appctx.TraceContext
	r.GET("/ping", func(c *gin.Context) {
		seen = appctx.GetTrace(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("reuses incoming ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.HeaderTraceID, "trace-1")
		req.Header.Set(middleware.HeaderRequestID, "req-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.NotNil(t, seen)
		assert.Equal(t, "trace-1", seen.TraceID)
		assert.Equal(t, "req-1", seen.RequestID)
		assert.Equal(t, "trace-1", w.Header().Get(middleware.HeaderTraceID))
		assert.Equal(t, "req-1", w.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("generates missing ids", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.NotNil(t, seen)
		assert.NotEmpty(t, seen.TraceID)
		assert.NotEmpty(t, seen.RequestID)
		assert.Equal(t, seen.RequestID, w.Header().Get(middleware.HeaderRequestID))
	})
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	boom := func(*gin.Context) { panic("boom") }
	r.GET("/items", boom)
	r.POST("/items", boom)

	tests := []struct {
		name   string
		method string
		code   string
	}{
		{name: "read panics are internal errors", method: http.MethodGet, code: apperror.CodeInternal},
		{name: "write panics are partial failures", method: http.MethodPost, code: apperror.CodePartialFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/items", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			details, ok := body["details"].(map[string]any)
			require.True(t, ok)
			assert.NotEmpty(t, details["request_id"])
		})
	}
}

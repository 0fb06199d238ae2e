package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/pkg/logger"
)

// Logger binds log to the request context and writes one access line per request.
// Requests that ended in a 5xx, including PARTIAL_FAILURE, are logged at error level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"operation", operationName(c),
			"query", c.Request.URL.RawQuery,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if key := c.GetString(ctxIdempotencyKey); key != "" {
			fields = append(fields, "idempotency_key", key)
		}
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			code := apperror.CodeInternal
			if appErr, ok := apperror.AsAppError(err); ok {
				code = appErr.Code
			}
			fields = append(fields, "code", code, "error", err.Error())
		}

		l := log.WithContext(c.Request.Context())
		if status >= http.StatusInternalServerError {
			l.Errorw("http request", fields...)
			return
		}
		l.Infow("http request", fields...)
	}
}

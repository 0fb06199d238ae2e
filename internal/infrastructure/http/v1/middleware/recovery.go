// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/pkg/logger"
)

// Recovery turns a handler panic into an error response.
//
// A panic on a write may happen after the guard committed, so writes answer
// PARTIAL_FAILURE and the idempotency key is settled with that response. Reads
// answer INTERNAL_ERROR.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			cause := fmt.Errorf("panic: %v", rec)

			var appErr *apperror.AppError
			if isWrite(c.Request.Method) {
				appErr = apperror.NewPartialFailure(operationName(c), cause)
			} else {
				appErr = apperror.NewInternal(cause)
			}
			appErr = appErr.WithDetail("request_id", c.GetString("request_id"))

			logger.Error(c.Request.Context(), "handler panic",
				"code", appErr.Code,
				"operation", operationName(c),
				"cause", cause,
				"stack", string(debug.Stack()),
			)
			_ = c.Error(appErr)

			// ErrorHandler sits below us and was unwound by the panic.
			if c.Writer.Written() {
				c.Abort()
				return
			}
			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			FailIdempotency(c, appErr.HTTPStatus, body)
			c.AbortWithStatusJSON(appErr.HTTPStatus, body)
		}()
		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// operationName is the matched route, e.g. "POST /api/v1/transfers".
func operationName(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return c.Request.Method + " " + path
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/infrastructure/http/v1/dto"
	"stockwise/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID parses the :id path parameter.
func (h *BaseHandler) ParseID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("value", raw))
		return id.Nil(), false
	}
	return v, true
}

// ParseLocationQuery reads ?locationType=&locationId=.
func (h *BaseHandler) ParseLocationQuery(c *gin.Context) (location.Ref, bool) {
	kind, rawID := c.Query("locationType"), c.Query("locationId")
	if kind == "" || rawID == "" {
		h.Error(c, apperror.NewValidation("locationType and locationId are required"))
		return nil, false
	}
	ref, err := location.Parse(kind, rawID)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return ref, true
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	h.OK(c, dto.SuccessResponse{Success: true, Message: message})
}

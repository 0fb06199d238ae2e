package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPartialFailure("create_sale", cause)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, HasCode(wrapped, CodePartialFailure))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(wrapped))
	assert.Contains(t, err.Error(), "caused by: connection reset")
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p1", "shop:s1", 50, 20).
		WithDetail("suggestions", []string{"warehouse:w1"})

	assert.True(t, IsInsufficientStock(err))
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, int64(50), err.Details["requested"])
	assert.Equal(t, int64(20), err.Details["available"])
	assert.Equal(t, []string{"warehouse:w1"}, err.Details["suggestions"])
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"location type", NewInvalidLocationType("bad"), http.StatusBadRequest},
		{"same location", NewSameLocation("shop:1"), http.StatusBadRequest},
		{"not found", NewNotFound("product", "1"), http.StatusNotFound},
		{"invalid state", NewInvalidState("damage", "1", "approved", "reject"), http.StatusUnprocessableEntity},
		{"duplicate", NewDuplicate("product", "code", "A"), http.StatusConflict},
		{"idempotency conflict", NewIdempotencyConflict("k"), http.StatusConflict},
		{"idempotency mismatch", NewIdempotencyMismatch("k"), http.StatusUnprocessableEntity},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestAsAppError(t *testing.T) {
	_, ok := AsAppError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsAppError(nil))

	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", NewNotFound("shop", "x")))
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(appErr))
}

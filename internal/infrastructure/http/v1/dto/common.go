// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/location"
)

// IDResponse is returned by create endpoints that only report the new id.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse mirrors the body written by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// BaseResponse contains common response fields.
type BaseResponse struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromBase creates BaseResponse from entity.BaseEntity.
func FromBase(b entity.BaseEntity) BaseResponse {
	return BaseResponse{
		ID:        b.ID.String(),
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// DocumentResponse contains document fields.
type DocumentResponse struct {
	BaseResponse
	Number  string    `json:"number,omitempty"`
	Date    time.Time `json:"date"`
	Comment string    `json:"comment,omitempty"`
}

// FromDocument creates DocumentResponse from entity.Document.
func FromDocument(d entity.Document) DocumentResponse {
	return DocumentResponse{
		BaseResponse: FromBase(d.BaseEntity),
		Number:       d.Number,
		Date:         d.Date,
		Comment:      d.Comment,
	}
}

// --- Locations ---

// LocationRequest identifies a warehouse or shop in a request body.
type LocationRequest struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id" binding:"required"`
}

// ToRef validates the tag and id.
func (r LocationRequest) ToRef() (location.Ref, error) {
	return location.Parse(r.Type, r.ID)
}

// LocationResponse identifies a location in a response body.
type LocationResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// FromRef converts a location; nil stays nil.
func FromRef(ref location.Ref) *LocationResponse {
	if ref == nil {
		return nil
	}
	return &LocationResponse{Type: string(ref.Kind()), ID: ref.ID().String()}
}

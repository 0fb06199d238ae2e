package warehouse

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error

	// GetByID returns apperror NotFound for unknown ids.
	GetByID(ctx context.Context, id id.ID) (*Warehouse, error)

	// List returns every warehouse ordered by code.
	List(ctx context.Context) ([]*Warehouse, error)
}

package product

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	// GetByID returns apperror NotFound for unknown ids.
	GetByID(ctx context.Context, id id.ID) (*Product, error)

	// GetForUpdate retrieves the product with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// UpdateCounters persists the counters of p if the stored version still equals
	// p.Version, then advances p.Version. A stale version is ConcurrentModification.
	UpdateCounters(ctx context.Context, p *Product) error

	List(ctx context.Context) ([]*Product, error)
}

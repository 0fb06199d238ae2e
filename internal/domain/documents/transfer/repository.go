package transfer

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository persists transfers and their items.
type Repository interface {
	// Create inserts the transfer header and items.
	Create(ctx context.Context, t *Transfer) error
	GetByID(ctx context.Context, id id.ID) (*Transfer, error)
	GetForUpdate(ctx context.Context, id id.ID) (*Transfer, error)
	UpdateStatus(ctx context.Context, t *Transfer) error

	// ListByProduct returns every transfer with at least one item of productID,
	// with all of its items loaded.
	ListByProduct(ctx context.Context, productID id.ID) ([]*Transfer, error)
}

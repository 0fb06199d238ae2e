package sale

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository persists sales and their items.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id id.ID) (*Sale, error)

	// ListByProduct returns every sale with at least one item of productID.
	ListByProduct(ctx context.Context, productID id.ID) ([]*Sale, error)
}

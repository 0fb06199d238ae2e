package purchase

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository persists purchases.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id id.ID) (*Purchase, error)
	GetForUpdate(ctx context.Context, id id.ID) (*Purchase, error)

	// SetActive persists the IsActive flag.
	SetActive(ctx context.Context, p *Purchase) error

	// ListByProduct returns purchases of a product; activeOnly drops soft-deleted rows.
	ListByProduct(ctx context.Context, productID id.ID, activeOnly bool) ([]*Purchase, error)
}

package damage

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository persists damage records.
type Repository interface {
	Create(ctx context.Context, d *Damage) error
	GetByID(ctx context.Context, id id.ID) (*Damage, error)
	GetForUpdate(ctx context.Context, id id.ID) (*Damage, error)
	UpdateStatus(ctx context.Context, d *Damage) error

	// ListByProduct returns damages of a product, optionally restricted to one status.
	ListByProduct(ctx context.Context, productID id.ID, status *Status) ([]*Damage, error)
}

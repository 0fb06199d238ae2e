package shop

import (
	"context"

	"stockwise/internal/core/id"
)

// Repository defines the interface for Shop persistence.
type Repository interface {
	Create(ctx context.Context, s *Shop) error
	GetByID(ctx context.Context, id id.ID) (*Shop, error)
	List(ctx context.Context) ([]*Shop, error)
}

// Package locations resolves location references against the warehouse and shop catalogs.
package locations

import (
	"context"
	"fmt"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
)

// Resolved is an existing location with its display name.
type Resolved struct {
	Ref  location.Ref
	Name string
}

// Registry is a pure lookup over warehouses and shops.
type Registry struct {
	warehouses warehouse.Repository
	shops      shop.Repository
}

// NewRegistry creates a location registry.
func NewRegistry(warehouses warehouse.Repository, shops shop.Repository) *Registry {
	return &Registry{warehouses: warehouses, shops: shops}
}

// Resolve checks that ref exists and returns its name.
func (r *Registry) Resolve(ctx context.Context, ref location.Ref) (Resolved, error) {
	switch v := ref.(type) {
	case location.AtWarehouse:
		w, err := r.warehouses.GetByID(ctx, v.ID())
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Ref: ref, Name: w.Name}, nil
	case location.AtShop:
		s, err := r.shops.GetByID(ctx, v.ID())
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Ref: ref, Name: s.Name}, nil
	case nil:
		return Resolved{}, apperror.NewValidation("location is required").
			WithDetail("field", "location")
	}
	return Resolved{}, apperror.NewInvalidLocationType(fmt.Sprintf("unsupported location %T", ref))
}

// All lists every warehouse followed by every shop.
func (r *Registry) All(ctx context.Context) ([]Resolved, error) {
	warehouses, err := r.warehouses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	shops, err := r.shops.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}

	out := make([]Resolved, 0, len(warehouses)+len(shops))
	for _, w := range warehouses {
		out = append(out, Resolved{Ref: w.Ref(), Name: w.Name})
	}
	for _, s := range shops {
		out = append(out, Resolved{Ref: s.Ref(), Name: s.Name})
	}
	return out, nil
}

// CreateWarehouse registers a warehouse.
func (r *Registry) CreateWarehouse(ctx context.Context, w *warehouse.Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	return r.warehouses.Create(ctx, w)
}

// CreateShop registers a shop.
func (r *Registry) CreateShop(ctx context.Context, s *shop.Shop) error {
	if err := s.Validate(ctx); err != nil {
		return err
	}
	return r.shops.Create(ctx, s)
}

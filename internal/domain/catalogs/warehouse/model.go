// Package warehouse provides the Warehouse catalog.
// Warehouses hold stock; one of them is the origin of each product.
package warehouse

import (
	"context"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/location"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewWarehouse creates a new active Warehouse.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}

// Ref returns the location reference of the warehouse.
func (w *Warehouse) Ref() location.Ref {
	return location.Warehouse(w.ID)
}

// Package shop provides the Shop catalog. Shops are retail locations: they never
// hold origin stock and receive goods only through transfers or local purchases.
package shop

import (
	"context"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/location"
)

// Shop represents a retail location.
type Shop struct {
	entity.Catalog

	Address *string `db:"address" json:"address,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewShop creates a new active Shop.
func NewShop(code, name string) *Shop {
	return &Shop{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (s *Shop) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}

// Ref returns the location reference of the shop.
func (s *Shop) Ref() location.Ref {
	return location.Shop(s.ID)
}

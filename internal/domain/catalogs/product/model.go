// Package product provides the Product base record.
//
// CountInStock is the legacy global on-hand counter. It is only a valid proxy for
// stock at the origin warehouse once damages and purchases recorded at other
// locations are compensated for; the ledger replay calculator does exactly that.
package product

import (
	"context"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Product is a sellable item with its legacy counters.
type Product struct {
	entity.Catalog

	// OriginWarehouseID is the warehouse the product was created against
	OriginWarehouseID id.ID `db:"origin_warehouse_id" json:"originWarehouseId"`

	// CountInStock: +purchases, -approved damages, -deactivated purchases.
	// Transfers and sales never touch it.
	CountInStock int64 `db:"count_in_stock" json:"countInStock"`

	DamagedQuantity  int64 `db:"damaged_quantity" json:"damagedQuantity"`
	SoldOutQuantity  int64 `db:"sold_out_quantity" json:"soldOutQuantity"`
	ReturnedQuantity int64 `db:"returned_quantity" json:"returnedQuantity"`
}

// NewProduct creates a product assigned to an origin warehouse with opening stock.
func NewProduct(code, name string, originWarehouseID id.ID, openingStock int64) *Product {
	return &Product{
		Catalog:           entity.NewCatalog(code, name),
		OriginWarehouseID: originWarehouseID,
		CountInStock:      openingStock,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.OriginWarehouseID) {
		return apperror.NewValidation("origin warehouse is required").
			WithDetail("field", "originWarehouseId")
	}
	if p.CountInStock < 0 {
		return apperror.NewValidation("opening stock must not be negative").
			WithDetail("field", "openingStock")
	}
	return nil
}

// Origin returns the origin warehouse as a location.
func (p *Product) Origin() location.Ref {
	return location.Warehouse(p.OriginWarehouseID)
}

// IsOrigin reports whether loc is the product's origin warehouse.
func (p *Product) IsOrigin(loc location.Ref) bool {
	return location.Equal(loc, p.Origin())
}

// ApplyPurchase books a receipt on the legacy counter.
func (p *Product) ApplyPurchase(quantity int64) {
	p.CountInStock += quantity
}

// ReversePurchase undoes ApplyPurchase for a deactivated purchase.
func (p *Product) ReversePurchase(quantity int64) {
	p.CountInStock -= quantity
}

// ApplyDamage books an approved write-off on the running totals.
func (p *Product) ApplyDamage(quantity int64) {
	p.DamagedQuantity += quantity
	p.CountInStock -= quantity
}

// ApplySale books sold units. Location-scoped depletion lives in the ledgers.
func (p *Product) ApplySale(quantity int64) {
	p.SoldOutQuantity += quantity
}

// Package purchase provides the Purchase ledger: goods received at a location.
package purchase

import (
	"context"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Purchase is a receipt event. IsActive=false is a soft delete; inactive purchases
// contribute nothing to availability.
type Purchase struct {
	entity.Document

	ProductID id.ID        `json:"productId"`
	Quantity  int64        `json:"quantity"`
	Location  location.Ref `json:"-"`
	IsActive  bool         `json:"isActive"`

	// UnitCost is informational; the engine does not value stock.
	UnitCost decimal.Decimal `json:"unitCost"`

	SupplierRef string `json:"supplierRef,omitempty"`
}

// NewPurchase creates an active purchase.
func NewPurchase(productID id.ID, loc location.Ref, quantity int64) *Purchase {
	return &Purchase{
		Document:  entity.NewDocument(),
		ProductID: productID,
		Quantity:  quantity,
		Location:  loc,
		IsActive:  true,
		UnitCost:  decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if p.Location == nil {
		return apperror.NewValidation("location is required").
			WithDetail("field", "location")
	}
	if p.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost must not be negative").
			WithDetail("field", "unitCost")
	}
	return nil
}

// Deactivate soft-deletes the purchase.
func (p *Purchase) Deactivate() error {
	if !p.IsActive {
		return apperror.NewInvalidState("purchase", p.ID, "inactive", "deactivate")
	}
	p.IsActive = false
	return nil
}

func (p *Purchase) GetDocumentType() string { return entity.RecorderPurchase }

// Movements returns the register receipt for this purchase.
func (p *Purchase) Movements() []entity.StockMovement {
	return []entity.StockMovement{
		entity.NewStockMovement(p.ID, p.GetDocumentType(), 1, p.Date,
			entity.RecordTypeReceipt, p.Location, p.ProductID, p.Quantity),
	}
}

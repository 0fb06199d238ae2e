// Package damage provides the ProductDamage ledger: location-scoped write-offs.
//
// State machine:
//
//	pending -> approved   (stock effect applied here)
//	pending -> rejected
//
// With auto-approval enabled a damage is created directly in approved.
package damage

import (
	"context"
	"strings"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Status of a damage record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Damage is a write-off. Location is nil when the damage was not attributed to a
// specific place; such damages are booked against the product's origin warehouse.
type Damage struct {
	entity.Document

	ProductID id.ID        `json:"productId"`
	Quantity  int64        `json:"quantity"`
	Location  location.Ref `json:"-"`
	Reason    string       `json:"reason"`
	Status    Status       `json:"status"`
}

// NewDamage creates a pending damage.
func NewDamage(productID id.ID, loc location.Ref, quantity int64, reason string) *Damage {
	return &Damage{
		Document:  entity.NewDocument(),
		ProductID: productID,
		Quantity:  quantity,
		Location:  loc,
		Reason:    strings.TrimSpace(reason),
		Status:    StatusPending,
	}
}

// Validate implements entity.Validatable.
func (d *Damage) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(d.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if d.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	return nil
}

// EffectiveLocation is where the write-off is booked.
func (d *Damage) EffectiveLocation(origin location.Ref) location.Ref {
	if d.Location == nil {
		return origin
	}
	return d.Location
}

// Approve moves a pending damage to approved.
func (d *Damage) Approve() error {
	if d.Status != StatusPending {
		return apperror.NewInvalidState("damage", d.ID, string(d.Status), "approve")
	}
	d.Status = StatusApproved
	return nil
}

// Reject moves a pending damage to rejected.
func (d *Damage) Reject() error {
	if d.Status != StatusPending {
		return apperror.NewInvalidState("damage", d.ID, string(d.Status), "reject")
	}
	d.Status = StatusRejected
	return nil
}

func (d *Damage) GetDocumentType() string { return entity.RecorderDamage }

// Movements returns the register expense for an approved damage.
func (d *Damage) Movements(origin location.Ref) []entity.StockMovement {
	return []entity.StockMovement{
		entity.NewStockMovement(d.ID, d.GetDocumentType(), 1, d.Date,
			entity.RecordTypeExpense, d.EffectiveLocation(origin), d.ProductID, d.Quantity),
	}
}

// Package transfer provides the StockTransfer ledger: moves between two locations.
//
// A transfer is booked the moment it is created. The only later transition is
// cancellation, which books the compensating movements:
//
//	completed -> cancelled
package transfer

import (
	"context"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Status of a transfer.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Item is one (product, quantity) line.
type Item struct {
	ProductID id.ID `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// Transfer moves items from Source to Destination.
type Transfer struct {
	entity.Document

	Source      location.Ref `json:"-"`
	Destination location.Ref `json:"-"`
	Items       []Item       `json:"items"`
	Status      Status       `json:"status"`
}

// NewTransfer creates a completed transfer.
func NewTransfer(source, destination location.Ref, items []Item) *Transfer {
	return &Transfer{
		Document:    entity.NewDocument(),
		Source:      source,
		Destination: destination,
		Items:       items,
		Status:      StatusCompleted,
	}
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if t.Source == nil {
		return apperror.NewValidation("source is required").
			WithDetail("field", "source")
	}
	if t.Destination == nil {
		return apperror.NewValidation("destination is required").
			WithDetail("field", "destination")
	}
	if location.Equal(t.Source, t.Destination) {
		return apperror.NewSameLocation(t.Source.String())
	}
	if len(t.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for i, item := range t.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// QuantityByProduct sums item quantities per product.
func (t *Transfer) QuantityByProduct() map[id.ID]int64 {
	out := make(map[id.ID]int64, len(t.Items))
	for _, item := range t.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// QuantityOf returns the total quantity of productID moved by t.
func (t *Transfer) QuantityOf(productID id.ID) int64 {
	var total int64
	for _, item := range t.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}

// Cancel moves the transfer to cancelled.
func (t *Transfer) Cancel() error {
	if t.Status != StatusCompleted {
		return apperror.NewInvalidState("transfer", t.ID, string(t.Status), "cancel")
	}
	t.Status = StatusCancelled
	return nil
}

func (t *Transfer) GetDocumentType() string { return entity.RecorderTransfer }

// Movements returns an expense at the source and a receipt at the destination per item.
func (t *Transfer) Movements() []entity.StockMovement {
	movements := make([]entity.StockMovement, 0, 2*len(t.Items))
	for _, item := range t.Items {
		movements = append(movements,
			entity.NewStockMovement(t.ID, t.GetDocumentType(), 1, t.Date,
				entity.RecordTypeExpense, t.Source, item.ProductID, item.Quantity),
			entity.NewStockMovement(t.ID, t.GetDocumentType(), 1, t.Date,
				entity.RecordTypeReceipt, t.Destination, item.ProductID, item.Quantity),
		)
	}
	return movements
}

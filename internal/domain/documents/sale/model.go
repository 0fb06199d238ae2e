// Package sale provides the Sale ledger: depletions at a shop or a warehouse.
package sale

import (
	"context"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Item is a sold (product, quantity) line.
type Item struct {
	ProductID id.ID           `json:"productId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Sale depletes stock at Location.
type Sale struct {
	entity.Document

	Location location.Ref `json:"-"`
	Items    []Item       `json:"items"`
}

// NewSale creates a sale.
func NewSale(loc location.Ref, items []Item) *Sale {
	return &Sale{
		Document: entity.NewDocument(),
		Location: loc,
		Items:    items,
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if s.Location == nil {
		return apperror.NewInvalidLocationType("sale requires a shop or a warehouse")
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for i, item := range s.Items {
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
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// QuantityByProduct sums item quantities per product.
func (s *Sale) QuantityByProduct() map[id.ID]int64 {
	out := make(map[id.ID]int64, len(s.Items))
	for _, item := range s.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// QuantityOf returns the total quantity of productID sold.
func (s *Sale) QuantityOf(productID id.ID) int64 {
	var total int64
	for _, item := range s.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}

func (s *Sale) GetDocumentType() string { return entity.RecorderSale }

// Movements returns one register expense per item.
func (s *Sale) Movements() []entity.StockMovement {
	movements := make([]entity.StockMovement, 0, len(s.Items))
	for _, item := range s.Items {
		movements = append(movements,
			entity.NewStockMovement(s.ID, s.GetDocumentType(), 1, s.Date,
				entity.RecordTypeExpense, s.Location, item.ProductID, item.Quantity))
	}
	return movements
}

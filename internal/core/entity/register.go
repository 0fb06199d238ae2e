// Package entity provides core domain entities.
package entity

import (
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// RecordType defines movement direction in the stock register.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// Opposite returns the direction that cancels r.
func (r RecordType) Opposite() RecordType {
	if r == RecordTypeReceipt {
		return RecordTypeExpense
	}
	return RecordTypeReceipt
}

// Recorder types: the ledger document that produced a movement.
const (
	RecorderProductOpening = "ProductOpening"
	RecorderPurchase       = "Purchase"
	RecorderTransfer       = "StockTransfer"
	RecorderDamage         = "ProductDamage"
	RecorderSale           = "Sale"
)

// StockMovement is one line of the append-only stock register.
// Movements are never updated or deleted; a reversal is a new movement in the
// opposite direction with a higher RecorderVersion.
type StockMovement struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the ledger document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "StockTransfer", "Sale")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion is 1 for the original posting, incremented by each reversal
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	RecordType RecordType `db:"record_type" json:"recordType"`

	// Dimensions
	LocationType location.Kind `db:"location_type" json:"locationType"`
	LocationID   id.ID         `db:"location_id" json:"locationId"`
	ProductID    id.ID         `db:"product_id" json:"productId"`

	// Resource, always positive; direction is carried by RecordType
	Quantity int64 `db:"quantity" json:"quantity"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	loc location.Ref,
	productID id.ID,
	quantity int64,
) StockMovement {
	return StockMovement{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		LocationType:    loc.Kind(),
		LocationID:      loc.ID(),
		ProductID:       productID,
		Quantity:        quantity,
		CreatedAt:       time.Now().UTC(),
	}
}

// Location returns the movement's location as a Ref.
func (m *StockMovement) Location() location.Ref {
	return location.MustNew(m.LocationType, m.LocationID)
}

// Key returns the movement's location key.
func (m *StockMovement) Key() location.Key {
	return location.Key{Kind: m.LocationType, ID: m.LocationID}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() int64 {
	if m.RecordType == RecordTypeExpense {
		return -m.Quantity
	}
	return m.Quantity
}

// Reversal returns a movement that cancels m.
func (m *StockMovement) Reversal(version int, period time.Time) StockMovement {
	return NewStockMovement(
		m.RecorderID, m.RecorderType, version, period,
		m.RecordType.Opposite(), m.Location(), m.ProductID, m.Quantity,
	)
}

// StockBalance is the materialized (product, location) balance of the register.
// It always equals the fold of the movements for the same dimensions and can be
// rebuilt from them at any time.
type StockBalance struct {
	// Dimensions
	LocationType location.Kind `db:"location_type" json:"locationType"`
	LocationID   id.ID         `db:"location_id" json:"locationId"`
	ProductID    id.ID         `db:"product_id" json:"productId"`

	// Signed; negative only if history was oversold before guards existed
	Quantity int64 `db:"quantity" json:"quantity"`

	LastMovementAt *time.Time `db:"last_movement_at" json:"lastMovementAt,omitempty"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Key returns the balance's location key.
func (b *StockBalance) Key() location.Key {
	return location.Key{Kind: b.LocationType, ID: b.LocationID}
}

// FoldMovements sums the signed quantities of movements.
func FoldMovements(movements []StockMovement) int64 {
	var total int64
	for i := range movements {
		total += movements[i].SignedQuantity()
	}
	return total
}

package reports

import (
	"time"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// --- Stock Turnover Report ---

// StockTurnoverFilter defines filter for stock turnover report.
type StockTurnoverFilter struct {
	// Period, both ends inclusive (required)
	FromDate time.Time
	ToDate   time.Time

	// Optional filters
	ProductID *id.ID
	Location  location.Ref
}

// StockTurnoverRow is one (product, location) cell folded over the period.
type StockTurnoverRow struct {
	LocationType location.Kind `db:"location_type"`
	LocationID   id.ID         `db:"location_id"`
	ProductID    id.ID         `db:"product_id"`

	// Opening is the signed balance before FromDate
	Opening int64 `db:"opening"`
	Receipt int64 `db:"receipt"`
	Expense int64 `db:"expense"`
}

// Closing is the balance at the end of ToDate.
func (r StockTurnoverRow) Closing() int64 {
	return r.Opening + r.Receipt - r.Expense
}

// Key returns the row's location key.
func (r StockTurnoverRow) Key() location.Key {
	return location.Key{Kind: r.LocationType, ID: r.LocationID}
}

// StockTurnoverItem represents a single row in turnover report.
type StockTurnoverItem struct {
	StockTurnoverRow
	ProductCode  string
	ProductName  string
	LocationName string
	Closing      int64
}

// StockTurnoverReport represents the full turnover report.
type StockTurnoverReport struct {
	FromDate time.Time
	ToDate   time.Time
	Items    []StockTurnoverItem

	// Summary totals
	TotalOpening int64
	TotalReceipt int64
	TotalExpense int64
	TotalClosing int64
}

package reports

import "context"

// Repository computes report rows from the stock register.
type Repository interface {
	// StockTurnover folds movements with period <= filter.ToDate into opening,
	// receipt and expense per (product, location). Cells without movements are omitted.
	StockTurnover(ctx context.Context, filter StockTurnoverFilter) ([]StockTurnoverRow, error)
}

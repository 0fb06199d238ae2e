// Package stock provides the stock register: an append-only movement log keyed by
// (product, location) and the materialized balances derived from it.
package stock

import (
	"context"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
)

// Repository defines operations for the stock register.
type Repository interface {
	// Movement operations

	// AppendMovements inserts movements and applies their signed quantities to the
	// balance rows of the same dimensions, in the caller's transaction.
	AppendMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetMovementsByRecorder retrieves all movements of a ledger document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// SumMovements folds the movement log for one (product, location)
	SumMovements(ctx context.Context, loc location.Ref, productID id.ID) (int64, error)

	// SumProductMovements folds every location of a product, restricted to recorder types
	SumProductMovements(ctx context.Context, productID id.ID, recorderTypes []string) (int64, error)

	// FoldAll folds the whole log grouped by (product, location)
	FoldAll(ctx context.Context) ([]entity.StockBalance, error)

	// Balance operations

	// GetBalance returns the materialized balance; a missing row is a zero balance
	GetBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error)

	// LockBalance creates the balance row if needed and locks it until the transaction ends
	LockBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error)

	// GetBalancesByProduct returns non-zero balances of a product across locations
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error)

	// ListBalances returns every materialized balance row
	ListBalances(ctx context.Context) ([]entity.StockBalance, error)

	// SetBalance overwrites a materialized balance (reconciliation only)
	SetBalance(ctx context.Context, loc location.Ref, productID id.ID, quantity int64) error
}

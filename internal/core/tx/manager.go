// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the Postgres and in-memory stores implement it.
package tx

import (
	"context"
	"errors"
)

// ErrCommitFailed marks an error returned by the final COMMIT. The writes issued inside
// the transaction may or may not have been applied.
var ErrCommitFailed = errors.New("commit failed")

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

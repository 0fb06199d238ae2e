// Package document_repo provides PostgreSQL implementations for the ledger repositories.
//
// Ledger documents carry a location.Ref, which has no column form of its own. Each
// repository therefore scans into a flat row struct ((type, id) column pairs) and
// converts it to the domain type.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides common operations over a document header table.
// R is the row type scanned by pgxscan.
type BaseDocumentRepo[R any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[R any](txm *postgres.TxManager, tableName, entityName string) *BaseDocumentRepo[R] {
	return &BaseDocumentRepo[R]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[R](),
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[R]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[R]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// insert writes a header row using its "db" tags.
func (r *BaseDocumentRepo[R]) insert(ctx context.Context, row *R) error {
	data := postgres.StructToMap(row)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in row")
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseDocumentRepo[R]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// getRow retrieves a header row by ID, optionally with a row lock.
func (r *BaseDocumentRepo[R]) getRow(ctx context.Context, entityID id.ID, forUpdate bool) (*R, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := new(R)
	if err := pgxscan.Get(ctx, r.querier(ctx), row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return row, nil
}

// selectRows runs q and scans every row.
func (r *BaseDocumentRepo[R]) selectRows(ctx context.Context, q squirrel.SelectBuilder) ([]R, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []R
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return rows, nil
}

// updateWithVersion applies set to the row if its version still equals version.
func (r *BaseDocumentRepo[R]) updateWithVersion(ctx context.Context, entityID id.ID, version int, set map[string]any) (time.Time, error) {
	now := time.Now().UTC()

	q := r.Builder().
		Update(r.tableName).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return now, fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return now, fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return now, apperror.NewConcurrentModification(r.entityName, entityID.String())
	}
	return now, nil
}

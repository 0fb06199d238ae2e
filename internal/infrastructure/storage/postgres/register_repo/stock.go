// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockBalancesTable  = "reg_stock_balances"
)

var movementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"location_type", "location_id", "product_id", "quantity", "created_at",
}

var balanceColumns = []string{
	"location_type", "location_id", "product_id",
	"quantity", "last_movement_at", "updated_at",
}

// signedSum folds movements in SQL.
const signedSum = "COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END), 0)::bigint"

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// AppendMovements copies movements into the log and applies them to the balances.
// Both steps share one transaction; a caller-provided one is reused.
func (r *StockRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, string(m.RecordType),
				string(m.LocationType), m.LocationID, m.ProductID, m.Quantity, m.CreatedAt,
			})
		}
		inserter := postgres.NewBatchInserter(r.txm)
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}

		return r.applyDeltas(ctx, movements)
	})
}

type delta struct {
	key       location.Key
	productID id.ID
}

// applyDeltas upserts one balance row per touched (product, location).
func (r *StockRepo) applyDeltas(ctx context.Context, movements []entity.StockMovement) error {
	sums := make(map[delta]int64)
	last := make(map[delta]time.Time)
	for i := range movements {
		m := &movements[i]
		d := delta{key: m.Key(), productID: m.ProductID}
		sums[d] += m.SignedQuantity()
		if m.Period.After(last[d]) {
			last[d] = m.Period
		}
	}

	// Stable order keeps concurrent writers from deadlocking on the upserts.
	keys := make([]delta, 0, len(sums))
	for d := range sums {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := id.Compare(keys[i].productID, keys[j].productID); c != 0 {
			return c < 0
		}
		return keys[i].key.Less(keys[j].key)
	})

	const upsert = `
		INSERT INTO reg_stock_balances
			(location_type, location_id, product_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (location_type, location_id, product_id) DO UPDATE SET
			quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
			last_movement_at = GREATEST(reg_stock_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	queries := make([]postgres.BatchQuery, 0, len(keys))
	for _, d := range keys {
		queries = append(queries, postgres.BatchQuery{
			SQL:  upsert,
			Args: []any{string(d.key.Kind), d.key.ID, d.productID, sums[d], last[d], now},
		})
	}

	if err := postgres.NewBatchExecutor(r.txm).ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("apply balance deltas: %w", err)
	}
	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("recorder_version", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// SumMovements folds the log for one (product, location).
func (r *StockRepo) SumMovements(ctx context.Context, loc location.Ref, productID id.ID) (int64, error) {
	q := r.builder.Select(signedSum).
		From(stockMovementsTable).
		Where(squirrel.Eq{
			"location_type": string(loc.Kind()),
			"location_id":   loc.ID(),
			"product_id":    productID,
		})

	return r.scalar(ctx, q)
}

// SumProductMovements folds every location of a product, optionally by recorder type.
func (r *StockRepo) SumProductMovements(ctx context.Context, productID id.ID, recorderTypes []string) (int64, error) {
	q := r.builder.Select(signedSum).
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})
	if len(recorderTypes) > 0 {
		q = q.Where(squirrel.Eq{"recorder_type": recorderTypes})
	}

	return r.scalar(ctx, q)
}

func (r *StockRepo) scalar(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return total, nil
}

// FoldAll folds the whole log grouped by (product, location).
func (r *StockRepo) FoldAll(ctx context.Context) ([]entity.StockBalance, error) {
	q := r.builder.
		Select("location_type", "location_id", "product_id", signedSum+" AS quantity").
		From(stockMovementsTable).
		GroupBy("location_type", "location_id", "product_id").
		OrderBy("product_id", "location_type DESC", "location_id")

	return r.selectBalances(ctx, q)
}

// GetBalance returns current balance for (product, location).
func (r *StockRepo) GetBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"location_type": string(loc.Kind()),
			"location_id":   loc.ID(),
			"product_id":    productID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{
				LocationType: loc.Kind(),
				LocationID:   loc.ID(),
				ProductID:    productID,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// LockBalance returns the balance with a row lock, creating an empty row first so
// that a location that never held the product can still be locked.
func (r *StockRepo) LockBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	const ensure = `
		INSERT INTO reg_stock_balances (location_type, location_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, NOW())
		ON CONFLICT (location_type, location_id, product_id) DO NOTHING
	`
	const lock = `
		SELECT location_type, location_id, product_id, quantity, last_movement_at, updated_at
		FROM reg_stock_balances
		WHERE location_type = $1 AND location_id = $2 AND product_id = $3
		FOR UPDATE
	`

	querier := r.querier(ctx)
	if _, err := querier.Exec(ctx, ensure, string(loc.Kind()), loc.ID(), productID); err != nil {
		return balance, fmt.Errorf("ensure balance row: %w", err)
	}
	if err := pgxscan.Get(ctx, querier, &balance, lock, string(loc.Kind()), loc.ID(), productID); err != nil {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalancesByProduct returns non-zero balances for a product across locations.
func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("location_type DESC", "location_id")

	return r.selectBalances(ctx, q)
}

// ListBalances returns every balance row.
func (r *StockRepo) ListBalances(ctx context.Context) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		OrderBy("product_id", "location_type DESC", "location_id")

	return r.selectBalances(ctx, q)
}

// SetBalance overwrites a balance. Used by reconciliation only.
func (r *StockRepo) SetBalance(ctx context.Context, loc location.Ref, productID id.ID, quantity int64) error {
	const upsert = `
		INSERT INTO reg_stock_balances (location_type, location_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (location_type, location_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.querier(ctx).Exec(ctx, upsert, string(loc.Kind()), loc.ID(), productID, quantity); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (r *StockRepo) selectBalances(ctx context.Context, q squirrel.SelectBuilder) ([]entity.StockBalance, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.querier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)

package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/domain/reports"
)

var _ reports.Repository = (*StockRepo)(nil)

// StockTurnover folds the movement log into opening, receipt and expense columns.
func (r *StockRepo) StockTurnover(ctx context.Context, filter reports.StockTurnoverFilter) ([]reports.StockTurnoverRow, error) {
	q := r.builder.
		Select("location_type", "location_id", "product_id").
		Column(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN period < ? THEN CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END ELSE 0 END), 0)::bigint AS opening",
			filter.FromDate)).
		Column(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN period >= ? AND record_type = 'receipt' THEN quantity ELSE 0 END), 0)::bigint AS receipt",
			filter.FromDate)).
		Column(squirrel.Expr(
			"COALESCE(SUM(CASE WHEN period >= ? AND record_type = 'expense' THEN quantity ELSE 0 END), 0)::bigint AS expense",
			filter.FromDate)).
		From(stockMovementsTable).
		Where(squirrel.LtOrEq{"period": filter.ToDate}).
		GroupBy("location_type", "location_id", "product_id").
		OrderBy("product_id", "location_type DESC", "location_id")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Location != nil {
		q = q.Where(squirrel.Eq{
			"location_type": string(filter.Location.Kind()),
			"location_id":   filter.Location.ID(),
		})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.StockTurnoverRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select turnover: %w", err)
	}
	return rows, nil
}

package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"stockwise/internal/core/apperror"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*product.Product](
			txm,
			productTable,
			"product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// UpdateCounters writes the legacy counters with an optimistic version check.
func (r *ProductRepo) UpdateCounters(ctx context.Context, p *product.Product) error {
	now := time.Now().UTC()

	q := r.Builder().
		Update(productTable).
		Set("count_in_stock", p.CountInStock).
		Set("damaged_quantity", p.DamagedQuantity).
		Set("sold_out_quantity", p.SoldOutQuantity).
		Set("returned_quantity", p.ReturnedQuantity).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product counters: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID.String())
	}

	p.Version++
	p.UpdatedAt = now
	return nil
}

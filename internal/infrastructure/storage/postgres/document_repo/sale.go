package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleItemsTable = "doc_sale_items"
)

type saleRow struct {
	entity.Document
	LocationType location.Kind `db:"location_type"`
	LocationID   id.ID         `db:"location_id"`
}

type saleItemRow struct {
	SaleID    id.ID           `db:"sale_id"`
	LineNo    int             `db:"line_no"`
	ProductID id.ID           `db:"product_id"`
	Quantity  int64           `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func (row *saleRow) toDomain(items []sale.Item) (*sale.Sale, error) {
	loc, err := location.New(row.LocationType, row.LocationID)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", row.ID, err)
	}
	return &sale.Sale{
		Document: row.Document,
		Location: loc,
		Items:    items,
	}, nil
}

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[saleRow]
}

var _ sale.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[saleRow](txm, salesTable, "sale"),
	}
}

// Create inserts the header and its items.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	err := r.insert(ctx, &saleRow{
		Document:     s.Document,
		LocationType: s.Location.Kind(),
		LocationID:   s.Location.ID(),
	})
	if err != nil {
		return err
	}

	q := r.Builder().
		Insert(saleItemsTable).
		Columns("sale_id", "line_no", "product_id", "quantity", "unit_price")
	for i, item := range s.Items {
		q = q.Values(s.ID, i+1, item.ProductID, item.Quantity, item.UnitPrice)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	row, err := r.getRow(ctx, saleID, false)
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, []id.ID{saleID})
	if err != nil {
		return nil, err
	}
	return row.toDomain(items[saleID])
}

func (r *SaleRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*sale.Sale, error) {
	// Placeholders are renumbered when the outer query is built.
	sub := squirrel.
		Select("sale_id").
		From(saleItemsTable).
		Where(squirrel.Eq{"product_id": productID})
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build subquery: %w", err)
	}

	rows, err := r.selectRows(ctx, r.baseSelect().
		Where(squirrel.Expr("id IN ("+subSQL+")", subArgs...)).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]id.ID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*sale.Sale, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toDomain(items[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []id.ID) (map[id.ID][]sale.Item, error) {
	q := r.Builder().
		Select("sale_id", "line_no", "product_id", "quantity", "unit_price").
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleIDs}).
		OrderBy("sale_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []saleItemRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}

	out := make(map[id.ID][]sale.Item, len(saleIDs))
	for _, row := range rows {
		out[row.SaleID] = append(out[row.SaleID], sale.Item{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	return out, nil
}

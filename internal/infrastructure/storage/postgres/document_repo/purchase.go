package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/infrastructure/storage/postgres"
)

const purchasesTable = "doc_purchases"

type purchaseRow struct {
	entity.Document
	ProductID    id.ID           `db:"product_id"`
	Quantity     int64           `db:"quantity"`
	LocationType location.Kind   `db:"location_type"`
	LocationID   id.ID           `db:"location_id"`
	IsActive     bool            `db:"is_active"`
	UnitCost     decimal.Decimal `db:"unit_cost"`
	SupplierRef  string          `db:"supplier_ref"`
}

func (row *purchaseRow) toDomain() (*purchase.Purchase, error) {
	loc, err := location.New(row.LocationType, row.LocationID)
	if err != nil {
		return nil, fmt.Errorf("purchase %s: %w", row.ID, err)
	}
	return &purchase.Purchase{
		Document:    row.Document,
		ProductID:   row.ProductID,
		Quantity:    row.Quantity,
		Location:    loc,
		IsActive:    row.IsActive,
		UnitCost:    row.UnitCost,
		SupplierRef: row.SupplierRef,
	}, nil
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[purchaseRow]
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[purchaseRow](txm, purchasesTable, "purchase"),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.insert(ctx, &purchaseRow{
		Document:     p.Document,
		ProductID:    p.ProductID,
		Quantity:     p.Quantity,
		LocationType: p.Location.Kind(),
		LocationID:   p.Location.ID(),
		IsActive:     p.IsActive,
		UnitCost:     p.UnitCost,
		SupplierRef:  p.SupplierRef,
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	row, err := r.getRow(ctx, purchaseID, false)
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	row, err := r.getRow(ctx, purchaseID, true)
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *PurchaseRepo) SetActive(ctx context.Context, p *purchase.Purchase) error {
	now, err := r.updateWithVersion(ctx, p.ID, p.Version, map[string]any{"is_active": p.IsActive})
	if err != nil {
		return err
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

func (r *PurchaseRepo) ListByProduct(ctx context.Context, productID id.ID, activeOnly bool) ([]*purchase.Purchase, error) {
	q := r.baseSelect().Where(squirrel.Eq{"product_id": productID})
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	rows, err := r.selectRows(ctx, q.OrderBy("id"))
	if err != nil {
		return nil, err
	}

	out := make([]*purchase.Purchase, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

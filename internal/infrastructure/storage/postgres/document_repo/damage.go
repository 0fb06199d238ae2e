package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/infrastructure/storage/postgres"
)

const damagesTable = "doc_damages"

// damageRow stores an unattributed damage with NULL location columns.
type damageRow struct {
	entity.Document
	ProductID    id.ID          `db:"product_id"`
	Quantity     int64          `db:"quantity"`
	LocationType *location.Kind `db:"location_type"`
	LocationID   *id.ID         `db:"location_id"`
	Reason       string         `db:"reason"`
	Status       damage.Status  `db:"status"`
}

func (row *damageRow) toDomain() (*damage.Damage, error) {
	d := &damage.Damage{
		Document:  row.Document,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		Reason:    row.Reason,
		Status:    row.Status,
	}
	if row.LocationType != nil && row.LocationID != nil {
		loc, err := location.New(*row.LocationType, *row.LocationID)
		if err != nil {
			return nil, fmt.Errorf("damage %s: %w", row.ID, err)
		}
		d.Location = loc
	}
	return d, nil
}

// DamageRepo implements damage.Repository.
type DamageRepo struct {
	*BaseDocumentRepo[damageRow]
}

var _ damage.Repository = (*DamageRepo)(nil)

// NewDamageRepo creates a new damage repository.
func NewDamageRepo(txm *postgres.TxManager) *DamageRepo {
	return &DamageRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[damageRow](txm, damagesTable, "damage"),
	}
}

func (r *DamageRepo) Create(ctx context.Context, d *damage.Damage) error {
	row := &damageRow{
		Document:  d.Document,
		ProductID: d.ProductID,
		Quantity:  d.Quantity,
		Reason:    d.Reason,
		Status:    d.Status,
	}
	if d.Location != nil {
		kind, locID := d.Location.Kind(), d.Location.ID()
		row.LocationType = &kind
		row.LocationID = &locID
	}
	return r.insert(ctx, row)
}

func (r *DamageRepo) GetByID(ctx context.Context, damageID id.ID) (*damage.Damage, error) {
	row, err := r.getRow(ctx, damageID, false)
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *DamageRepo) GetForUpdate(ctx context.Context, damageID id.ID) (*damage.Damage, error) {
	row, err := r.getRow(ctx, damageID, true)
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *DamageRepo) UpdateStatus(ctx context.Context, d *damage.Damage) error {
	now, err := r.updateWithVersion(ctx, d.ID, d.Version, map[string]any{"status": d.Status})
	if err != nil {
		return err
	}
	d.Version++
	d.UpdatedAt = now
	return nil
}

func (r *DamageRepo) ListByProduct(ctx context.Context, productID id.ID, status *damage.Status) ([]*damage.Damage, error) {
	q := r.baseSelect().Where(squirrel.Eq{"product_id": productID})
	if status != nil {
		q = q.Where(squirrel.Eq{"status": *status})
	}

	rows, err := r.selectRows(ctx, q.OrderBy("id"))
	if err != nil {
		return nil, err
	}

	out := make([]*damage.Damage, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

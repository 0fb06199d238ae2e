package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/infrastructure/storage/postgres"
)

const (
	transfersTable     = "doc_transfers"
	transferItemsTable = "doc_transfer_items"
)

type transferRow struct {
	entity.Document
	SourceType      location.Kind   `db:"source_type"`
	SourceID        id.ID           `db:"source_id"`
	DestinationType location.Kind   `db:"destination_type"`
	DestinationID   id.ID           `db:"destination_id"`
	Status          transfer.Status `db:"status"`
}

type transferItemRow struct {
	TransferID id.ID `db:"transfer_id"`
	LineNo     int   `db:"line_no"`
	ProductID  id.ID `db:"product_id"`
	Quantity   int64 `db:"quantity"`
}

func (row *transferRow) toDomain(items []transfer.Item) (*transfer.Transfer, error) {
	source, err := location.New(row.SourceType, row.SourceID)
	if err != nil {
		return nil, fmt.Errorf("transfer %s source: %w", row.ID, err)
	}
	destination, err := location.New(row.DestinationType, row.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("transfer %s destination: %w", row.ID, err)
	}
	return &transfer.Transfer{
		Document:    row.Document,
		Source:      source,
		Destination: destination,
		Items:       items,
		Status:      row.Status,
	}, nil
}

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	*BaseDocumentRepo[transferRow]
}

var _ transfer.Repository = (*TransferRepo)(nil)

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[transferRow](txm, transfersTable, "transfer"),
	}
}

// Create inserts the header and its items.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	err := r.insert(ctx, &transferRow{
		Document:        t.Document,
		SourceType:      t.Source.Kind(),
		SourceID:        t.Source.ID(),
		DestinationType: t.Destination.Kind(),
		DestinationID:   t.Destination.ID(),
		Status:          t.Status,
	})
	if err != nil {
		return err
	}

	q := r.Builder().
		Insert(transferItemsTable).
		Columns("transfer_id", "line_no", "product_id", "quantity")
	for i, item := range t.Items {
		q = q.Values(t.ID, i+1, item.ProductID, item.Quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer items: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, false)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, true)
}

func (r *TransferRepo) get(ctx context.Context, transferID id.ID, forUpdate bool) (*transfer.Transfer, error) {
	row, err := r.getRow(ctx, transferID, forUpdate)
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, []id.ID{transferID})
	if err != nil {
		return nil, err
	}
	return row.toDomain(items[transferID])
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer) error {
	now, err := r.updateWithVersion(ctx, t.ID, t.Version, map[string]any{"status": t.Status})
	if err != nil {
		return err
	}
	t.Version++
	t.UpdatedAt = now
	return nil
}

func (r *TransferRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*transfer.Transfer, error) {
	// Placeholders are renumbered when the outer query is built.
	sub := squirrel.
		Select("transfer_id").
		From(transferItemsTable).
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

	out := make([]*transfer.Transfer, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain(items[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, transferIDs []id.ID) (map[id.ID][]transfer.Item, error) {
	q := r.Builder().
		Select("transfer_id", "line_no", "product_id", "quantity").
		From(transferItemsTable).
		Where(squirrel.Eq{"transfer_id": transferIDs}).
		OrderBy("transfer_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []transferItemRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfer items: %w", err)
	}

	out := make(map[id.ID][]transfer.Item, len(transferIDs))
	for _, row := range rows {
		out[row.TransferID] = append(out[row.TransferID], transfer.Item{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		})
	}
	return out, nil
}

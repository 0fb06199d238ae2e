package memory

import (
	"context"
	"sort"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/reports"
)

var _ reports.Repository = (*StockRepo)(nil)

// StockTurnover implements reports.Repository.
func (r *StockRepo) StockTurnover(ctx context.Context, filter reports.StockTurnoverFilter) ([]reports.StockTurnoverRow, error) {
	var out []reports.StockTurnoverRow
	err := r.s.do(ctx, func(st *state) error {
		rows := make(map[cell]*reports.StockTurnoverRow)
		for _, m := range st.movements {
			if m.Period.After(filter.ToDate) {
				continue
			}
			if filter.ProductID != nil && m.ProductID != *filter.ProductID {
				continue
			}
			if filter.Location != nil && m.Key() != location.KeyOf(filter.Location) {
				continue
			}

			c := cell{kind: m.LocationType, locID: m.LocationID, productID: m.ProductID}
			row, ok := rows[c]
			if !ok {
				row = &reports.StockTurnoverRow{LocationType: c.kind, LocationID: c.locID, ProductID: c.productID}
				rows[c] = row
			}
			switch {
			case m.Period.Before(filter.FromDate):
				row.Opening += m.SignedQuantity()
			case m.RecordType == entity.RecordTypeReceipt:
				row.Receipt += m.Quantity
			default:
				row.Expense += m.Quantity
			}
		}

		out = make([]reports.StockTurnoverRow, 0, len(rows))
		for _, row := range rows {
			out = append(out, *row)
		}
		sort.Slice(out, func(i, j int) bool {
			if c := id.Compare(out[i].ProductID, out[j].ProductID); c != 0 {
				return c < 0
			}
			return out[i].Key().Less(out[j].Key())
		})
		return nil
	})
	return out, err
}

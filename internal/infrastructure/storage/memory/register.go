package memory

import (
	"context"
	"sort"
	"time"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) AppendMovements(ctx context.Context, movements []entity.StockMovement) error {
	return r.s.do(ctx, func(st *state) error {
		now := time.Now().UTC()
		for _, m := range movements {
			st.movements = append(st.movements, m)

			c := cell{kind: m.LocationType, locID: m.LocationID, productID: m.ProductID}
			b, ok := st.balances[c]
			if !ok {
				b = entity.StockBalance{LocationType: m.LocationType, LocationID: m.LocationID, ProductID: m.ProductID}
			}
			b.Quantity += m.SignedQuantity()
			period := m.Period
			b.LastMovementAt = &period
			b.UpdatedAt = now
			st.balances[c] = b
		}
		return nil
	})
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.RecorderID == recorderID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) SumMovements(ctx context.Context, loc location.Ref, productID id.ID) (int64, error) {
	var total int64
	err := r.s.do(ctx, func(st *state) error {
		want := cellOf(loc, productID)
		for _, m := range st.movements {
			if (cell{kind: m.LocationType, locID: m.LocationID, productID: m.ProductID}) == want {
				total += m.SignedQuantity()
			}
		}
		return nil
	})
	return total, err
}

func (r *StockRepo) SumProductMovements(ctx context.Context, productID id.ID, recorderTypes []string) (int64, error) {
	allowed := make(map[string]bool, len(recorderTypes))
	for _, t := range recorderTypes {
		allowed[t] = true
	}

	var total int64
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != productID {
				continue
			}
			if len(allowed) > 0 && !allowed[m.RecorderType] {
				continue
			}
			total += m.SignedQuantity()
		}
		return nil
	})
	return total, err
}

func (r *StockRepo) FoldAll(ctx context.Context) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	err := r.s.do(ctx, func(st *state) error {
		folded := make(map[cell]int64)
		for _, m := range st.movements {
			folded[cell{kind: m.LocationType, locID: m.LocationID, productID: m.ProductID}] += m.SignedQuantity()
		}
		for c, q := range folded {
			out = append(out, entity.StockBalance{
				LocationType: c.kind,
				LocationID:   c.locID,
				ProductID:    c.productID,
				Quantity:     q,
			})
		}
		sortBalances(out)
		return nil
	})
	return out, err
}

func (r *StockRepo) GetBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error) {
	var out entity.StockBalance
	err := r.s.do(ctx, func(st *state) error {
		b, ok := st.balances[cellOf(loc, productID)]
		if !ok {
			b = entity.StockBalance{LocationType: loc.Kind(), LocationID: loc.ID(), ProductID: productID}
		}
		out = b
		return nil
	})
	return out, err
}

// LockBalance creates the row if needed. The transaction's store lock is the row lock.
func (r *StockRepo) LockBalance(ctx context.Context, loc location.Ref, productID id.ID) (entity.StockBalance, error) {
	var out entity.StockBalance
	err := r.s.do(ctx, func(st *state) error {
		c := cellOf(loc, productID)
		b, ok := st.balances[c]
		if !ok {
			b = entity.StockBalance{
				LocationType: loc.Kind(),
				LocationID:   loc.ID(),
				ProductID:    productID,
				UpdatedAt:    time.Now().UTC(),
			}
			st.balances[c] = b
		}
		out = b
		return nil
	})
	return out, err
}

func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	err := r.s.do(ctx, func(st *state) error {
		for c, b := range st.balances {
			if c.productID == productID && b.Quantity != 0 {
				out = append(out, b)
			}
		}
		sortBalances(out)
		return nil
	})
	return out, err
}

func (r *StockRepo) ListBalances(ctx context.Context) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.balances {
			out = append(out, b)
		}
		sortBalances(out)
		return nil
	})
	return out, err
}

func (r *StockRepo) SetBalance(ctx context.Context, loc location.Ref, productID id.ID, quantity int64) error {
	return r.s.do(ctx, func(st *state) error {
		c := cellOf(loc, productID)
		b, ok := st.balances[c]
		if !ok {
			b = entity.StockBalance{LocationType: loc.Kind(), LocationID: loc.ID(), ProductID: productID}
		}
		b.Quantity = quantity
		b.UpdatedAt = time.Now().UTC()
		st.balances[c] = b
		return nil
	})
}

func sortBalances(items []entity.StockBalance) {
	sort.Slice(items, func(i, j int) bool {
		if c := id.Compare(items[i].ProductID, items[j].ProductID); c != 0 {
			return c < 0
		}
		return items[i].Key().Less(items[j].Key())
	})
}

package memory

import (
	"context"
	"sort"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
)

// byID orders documents by id, which is creation order for UUIDv7.
func byID[T any](items []*T, idOf func(*T) id.ID) {
	sort.Slice(items, func(i, j int) bool {
		return id.Compare(idOf(items[i]), idOf(items[j])) < 0
	})
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct{ s *Store }

var _ purchase.Repository = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.purchases[p.ID]; ok {
			return apperror.NewDuplicate("purchase", "id", p.ID.String())
		}
		st.purchases[p.ID] = *p
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, pid id.ID) (*purchase.Purchase, error) {
	var out *purchase.Purchase
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.purchases[pid]
		if !ok {
			return apperror.NewNotFound("purchase", pid.String())
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, pid id.ID) (*purchase.Purchase, error) {
	return r.GetByID(ctx, pid)
}

func (r *PurchaseRepo) SetActive(ctx context.Context, p *purchase.Purchase) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.purchases[p.ID]
		if !ok {
			return apperror.NewNotFound("purchase", p.ID.String())
		}
		p.Touch()
		stored.IsActive = p.IsActive
		stored.Version = p.Version
		stored.UpdatedAt = p.UpdatedAt
		st.purchases[p.ID] = stored
		return nil
	})
}

func (r *PurchaseRepo) ListByProduct(ctx context.Context, productID id.ID, activeOnly bool) ([]*purchase.Purchase, error) {
	var out []*purchase.Purchase
	err := r.s.do(ctx, func(st *state) error {
		for _, p := range st.purchases {
			if p.ProductID != productID || (activeOnly && !p.IsActive) {
				continue
			}
			p := p
			out = append(out, &p)
		}
		byID(out, func(p *purchase.Purchase) id.ID { return p.ID })
		return nil
	})
	return out, err
}

// TransferRepo implements transfer.Repository.
type TransferRepo struct{ s *Store }

var _ transfer.Repository = (*TransferRepo)(nil)

func copyTransfer(t transfer.Transfer) *transfer.Transfer {
	t.Items = append([]transfer.Item(nil), t.Items...)
	return &t
}

func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return apperror.NewDuplicate("transfer", "id", t.ID.String())
		}
		st.transfers[t.ID] = *copyTransfer(*t)
		return nil
	})
}

func (r *TransferRepo) GetByID(ctx context.Context, tid id.ID) (*transfer.Transfer, error) {
	var out *transfer.Transfer
	err := r.s.do(ctx, func(st *state) error {
		t, ok := st.transfers[tid]
		if !ok {
			return apperror.NewNotFound("transfer", tid.String())
		}
		out = copyTransfer(t)
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, tid id.ID) (*transfer.Transfer, error) {
	return r.GetByID(ctx, tid)
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.transfers[t.ID]
		if !ok {
			return apperror.NewNotFound("transfer", t.ID.String())
		}
		if stored.Version != t.Version {
			return apperror.NewConcurrentModification("transfer", t.ID.String())
		}
		t.Touch()
		stored.Status = t.Status
		stored.Version = t.Version
		stored.UpdatedAt = t.UpdatedAt
		st.transfers[t.ID] = stored
		return nil
	})
}

func (r *TransferRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*transfer.Transfer, error) {
	var out []*transfer.Transfer
	err := r.s.do(ctx, func(st *state) error {
		for _, t := range st.transfers {
			if t.QuantityOf(productID) == 0 {
				continue
			}
			out = append(out, copyTransfer(t))
		}
		byID(out, func(t *transfer.Transfer) id.ID { return t.ID })
		return nil
	})
	return out, err
}

// DamageRepo implements damage.Repository.
type DamageRepo struct{ s *Store }

var _ damage.Repository = (*DamageRepo)(nil)

func (r *DamageRepo) Create(ctx context.Context, d *damage.Damage) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.damages[d.ID]; ok {
			return apperror.NewDuplicate("damage", "id", d.ID.String())
		}
		st.damages[d.ID] = *d
		return nil
	})
}

func (r *DamageRepo) GetByID(ctx context.Context, did id.ID) (*damage.Damage, error) {
	var out *damage.Damage
	err := r.s.do(ctx, func(st *state) error {
		d, ok := st.damages[did]
		if !ok {
			return apperror.NewNotFound("damage", did.String())
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *DamageRepo) GetForUpdate(ctx context.Context, did id.ID) (*damage.Damage, error) {
	return r.GetByID(ctx, did)
}

func (r *DamageRepo) UpdateStatus(ctx context.Context, d *damage.Damage) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.damages[d.ID]
		if !ok {
			return apperror.NewNotFound("damage", d.ID.String())
		}
		if stored.Version != d.Version {
			return apperror.NewConcurrentModification("damage", d.ID.String())
		}
		d.Touch()
		stored.Status = d.Status
		stored.Version = d.Version
		stored.UpdatedAt = d.UpdatedAt
		st.damages[d.ID] = stored
		return nil
	})
}

func (r *DamageRepo) ListByProduct(ctx context.Context, productID id.ID, status *damage.Status) ([]*damage.Damage, error) {
	var out []*damage.Damage
	err := r.s.do(ctx, func(st *state) error {
		for _, d := range st.damages {
			if d.ProductID != productID || (status != nil && d.Status != *status) {
				continue
			}
			d := d
			out = append(out, &d)
		}
		byID(out, func(d *damage.Damage) id.ID { return d.ID })
		return nil
	})
	return out, err
}

// SaleRepo implements sale.Repository.
type SaleRepo struct{ s *Store }

var _ sale.Repository = (*SaleRepo)(nil)

func copySale(s sale.Sale) *sale.Sale {
	s.Items = append([]sale.Item(nil), s.Items...)
	return &s
}

func (r *SaleRepo) Create(ctx context.Context, sl *sale.Sale) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.sales[sl.ID]; ok {
			return apperror.NewDuplicate("sale", "id", sl.ID.String())
		}
		st.sales[sl.ID] = *copySale(*sl)
		return nil
	})
}

func (r *SaleRepo) GetByID(ctx context.Context, sid id.ID) (*sale.Sale, error) {
	var out *sale.Sale
	err := r.s.do(ctx, func(st *state) error {
		sl, ok := st.sales[sid]
		if !ok {
			return apperror.NewNotFound("sale", sid.String())
		}
		out = copySale(sl)
		return nil
	})
	return out, err
}

func (r *SaleRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*sale.Sale, error) {
	var out []*sale.Sale
	err := r.s.do(ctx, func(st *state) error {
		for _, sl := range st.sales {
			if sl.QuantityOf(productID) == 0 {
				continue
			}
			out = append(out, copySale(sl))
		}
		byID(out, func(s *sale.Sale) id.ID { return s.ID })
		return nil
	})
	return out, err
}

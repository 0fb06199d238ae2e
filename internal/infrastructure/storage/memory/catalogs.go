package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
)

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct{ s *Store }

var _ warehouse.Repository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	return r.s.do(ctx, func(st *state) error {
		for _, existing := range st.warehouses {
			if strings.EqualFold(existing.Code, w.Code) {
				return apperror.NewDuplicate("warehouse", "code", w.Code)
			}
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(ctx context.Context, wid id.ID) (*warehouse.Warehouse, error) {
	var out *warehouse.Warehouse
	err := r.s.do(ctx, func(st *state) error {
		w, ok := st.warehouses[wid]
		if !ok {
			return apperror.NewNotFound("warehouse", wid.String())
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	var out []*warehouse.Warehouse
	err := r.s.do(ctx, func(st *state) error {
		out = make([]*warehouse.Warehouse, 0, len(st.warehouses))
		for _, w := range st.warehouses {
			w := w
			out = append(out, &w)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		return nil
	})
	return out, err
}

// ShopRepo implements shop.Repository.
type ShopRepo struct{ s *Store }

var _ shop.Repository = (*ShopRepo)(nil)

func (r *ShopRepo) Create(ctx context.Context, sh *shop.Shop) error {
	return r.s.do(ctx, func(st *state) error {
		for _, existing := range st.shops {
			if strings.EqualFold(existing.Code, sh.Code) {
				return apperror.NewDuplicate("shop", "code", sh.Code)
			}
		}
		st.shops[sh.ID] = *sh
		return nil
	})
}

func (r *ShopRepo) GetByID(ctx context.Context, sid id.ID) (*shop.Shop, error) {
	var out *shop.Shop
	err := r.s.do(ctx, func(st *state) error {
		sh, ok := st.shops[sid]
		if !ok {
			return apperror.NewNotFound("shop", sid.String())
		}
		out = &sh
		return nil
	})
	return out, err
}

func (r *ShopRepo) List(ctx context.Context) ([]*shop.Shop, error) {
	var out []*shop.Shop
	err := r.s.do(ctx, func(st *state) error {
		out = make([]*shop.Shop, 0, len(st.shops))
		for _, sh := range st.shops {
			sh := sh
			out = append(out, &sh)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		return nil
	})
	return out, err
}

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

var _ product.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.s.do(ctx, func(st *state) error {
		for _, existing := range st.products {
			if strings.EqualFold(existing.Code, p.Code) {
				return apperror.NewDuplicate("product", "code", p.Code)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, pid id.ID) (*product.Product, error) {
	var out *product.Product
	err := r.s.do(ctx, func(st *state) error {
		p, ok := st.products[pid]
		if !ok {
			return apperror.NewNotFound("product", pid.String())
		}
		out = &p
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the store lock held by the transaction is the row lock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, pid id.ID) (*product.Product, error) {
	return r.GetByID(ctx, pid)
}

func (r *ProductRepo) UpdateCounters(ctx context.Context, p *product.Product) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.products[p.ID]
		if !ok {
			return apperror.NewNotFound("product", p.ID.String())
		}
		if stored.Version != p.Version {
			return apperror.NewConcurrentModification("product", p.ID.String())
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()

		stored.CountInStock = p.CountInStock
		stored.DamagedQuantity = p.DamagedQuantity
		stored.SoldOutQuantity = p.SoldOutQuantity
		stored.ReturnedQuantity = p.ReturnedQuantity
		stored.Version = p.Version
		stored.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = stored
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context) ([]*product.Product, error) {
	var out []*product.Product
	err := r.s.do(ctx, func(st *state) error {
		out = make([]*product.Product, 0, len(st.products))
		for _, p := range st.products {
			p := p
			out = append(out, &p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		return nil
	})
	return out, err
}

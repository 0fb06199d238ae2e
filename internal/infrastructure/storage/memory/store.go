// Package memory is an in-process implementation of every repository and of
// tx.Manager. Transactions are serialized by one mutex and rolled back by restoring a
// snapshot, so guards get the same isolation they get from Postgres row locks.
// It backs the test suites and STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
)

type cell struct {
	kind      location.Kind
	locID     id.ID
	productID id.ID
}

func cellOf(loc location.Ref, productID id.ID) cell {
	return cell{kind: loc.Kind(), locID: loc.ID(), productID: productID}
}

// state holds values, never pointers shared with callers. Slices inside stored
// documents are copied on write and never mutated afterwards, so a shallow map copy
// is a valid snapshot.
type state struct {
	warehouses map[id.ID]warehouse.Warehouse
	shops      map[id.ID]shop.Shop
	products   map[id.ID]product.Product
	purchases  map[id.ID]purchase.Purchase
	transfers  map[id.ID]transfer.Transfer
	damages    map[id.ID]damage.Damage
	sales      map[id.ID]sale.Sale
	movements  []entity.StockMovement
	balances   map[cell]entity.StockBalance
	sequences  map[string]int64
}

func newState() *state {
	return &state{
		warehouses: make(map[id.ID]warehouse.Warehouse),
		shops:      make(map[id.ID]shop.Shop),
		products:   make(map[id.ID]product.Product),
		purchases:  make(map[id.ID]purchase.Purchase),
		transfers:  make(map[id.ID]transfer.Transfer),
		damages:    make(map[id.ID]damage.Damage),
		sales:      make(map[id.ID]sale.Sale),
		balances:   make(map[cell]entity.StockBalance),
		sequences:  make(map[string]int64),
	}
}

func (s *state) clone() *state {
	return &state{
		warehouses: copyMap(s.warehouses),
		shops:      copyMap(s.shops),
		products:   copyMap(s.products),
		purchases:  copyMap(s.purchases),
		transfers:  copyMap(s.transfers),
		damages:    copyMap(s.damages),
		sales:      copyMap(s.sales),
		movements:  append([]entity.StockMovement(nil), s.movements...),
		balances:   copyMap(s.balances),
		sequences:  copyMap(s.sequences),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store is the in-memory database.
type Store struct {
	mu   sync.Mutex
	data *state

	// FailCommit, when set, is called after a successful transaction body. A non-nil
	// result is reported as a commit failure; the writes stay applied.
	FailCommit func() error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// do runs fn against the current state, holding the store lock unless the caller's
// transaction already holds it.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TxManager returns a tx.Manager over the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// TxManager implements tx.Manager and tx.ReadOnlyManager.
type TxManager struct {
	store *Store
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// RunInTransaction implements tx.Manager.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s := m.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}

	if s.FailCommit != nil {
		if cerr := s.FailCommit(); cerr != nil {
			return fmt.Errorf("%w: %v", tx.ErrCommitFailed, cerr)
		}
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager. Writes made by fn are discarded.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() { s.data = snapshot }()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// Repositories bundles every repository of the store.
type Repositories struct {
	Warehouses *WarehouseRepo
	Shops      *ShopRepo
	Products   *ProductRepo
	Purchases  *PurchaseRepo
	Transfers  *TransferRepo
	Damages    *DamageRepo
	Sales      *SaleRepo
	Stock      *StockRepo
}

// Repositories returns repositories bound to the store.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Warehouses: &WarehouseRepo{s: s},
		Shops:      &ShopRepo{s: s},
		Products:   &ProductRepo{s: s},
		Purchases:  &PurchaseRepo{s: s},
		Transfers:  &TransferRepo{s: s},
		Damages:    &DamageRepo{s: s},
		Sales:      &SaleRepo{s: s},
		Stock:      &StockRepo{s: s},
	}
}

package availability_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/storage/memory"
)

type readMarker struct{}

// countingReader tags the context of every ReadOnly call.
type countingReader struct {
	tx.ReadOnlyManager
	calls int
}

func (r *countingReader) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return r.ReadOnlyManager.ReadOnly(ctx, func(ctx context.Context) error {
		return fn(context.WithValue(ctx, readMarker{}, r.calls))
	})
}

// watchedProducts records which ReadOnly call each GetByID ran in and runs onGet after it.
type watchedProducts struct {
	product.Repository
	seen  []any
	onGet func()
}

func (w *watchedProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	w.seen = append(w.seen, ctx.Value(readMarker{}))
	p, err := w.Repository.GetByID(ctx, productID)
	if w.onGet != nil {
		w.onGet()
	}
	return p, err
}

// watchedCalc records which ReadOnly call each Compute ran in.
type watchedCalc struct {
	availability.Calculator
	seen []any
}

func (c *watchedCalc) Compute(ctx context.Context, p *product.Product, loc location.Ref) (int64, error) {
	c.seen = append(c.seen, ctx.Value(readMarker{}))
	return c.Calculator.Compute(ctx, p, loc)
}

type snapshotEnv struct {
	ctx      context.Context
	reader   *countingReader
	products *watchedProducts
	calc     *watchedCalc
	avail    *availability.Service
	guard    *guard.Service
	origin   location.Ref
	product  *product.Product
}

func newSnapshotEnv(t *testing.T) *snapshotEnv {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	registry := locations.NewRegistry(repos.Warehouses, repos.Shops)
	ledger := availability.NewLedgerCalculator(availability.Ledgers{
		Purchases: repos.Purchases,
		Transfers: repos.Transfers,
		Damages:   repos.Damages,
		Sales:     repos.Sales,
	})

	g := guard.NewService(guard.Deps{
		TxManager:         store.TxManager(),
		Products:          repos.Products,
		Locations:         registry,
		Purchases:         repos.Purchases,
		Transfers:         repos.Transfers,
		Damages:           repos.Damages,
		Sales:             repos.Sales,
		Register:          stock.NewService(repos.Stock),
		Availability:      availability.NewService(store.TxManager(), repos.Products, registry, ledger, nil),
		AutoApproveDamage: true,
	})

	x := warehouse.NewWarehouse("WH-X", "Central")
	require.NoError(t, registry.CreateWarehouse(ctx, x))
	p, err := g.RegisterProduct(ctx, guard.ProductRequest{
		Code:              "SKU-1",
		Name:              "Widget",
		OriginWarehouseID: x.ID,
		OpeningStock:      100,
	})
	require.NoError(t, err)

	reader := &countingReader{ReadOnlyManager: store.TxManager()}
	products := &watchedProducts{Repository: repos.Products}
	calc := &watchedCalc{Calculator: ledger}

	return &snapshotEnv{
		ctx:      ctx,
		reader:   reader,
		products: products,
		calc:     calc,
		avail:    availability.NewService(reader, products, registry, calc, nil),
		guard:    g,
		origin:   x.Ref(),
		product:  p,
	}
}

func TestService_ReadsRunInOneSnapshot(t *testing.T) {
	t.Run("available stock", func(t *testing.T) {
		e := newSnapshotEnv(t)

		qty, err := e.avail.AvailableStock(e.ctx, e.product.ID, e.origin)
		require.NoError(t, err)
		assert.Equal(t, int64(100), qty)

		assert.Equal(t, 1, e.reader.calls)
		assert.Equal(t, []any{1}, e.products.seen)
		assert.Equal(t, []any{1}, e.calc.seen)
	})

	t.Run("locations with stock", func(t *testing.T) {
		e := newSnapshotEnv(t)

		list, err := e.avail.LocationsWithStock(e.ctx, e.product.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(100), list[0].Stock)

		assert.Equal(t, 1, e.reader.calls)
		assert.Equal(t, []any{1}, e.products.seen)
		require.NotEmpty(t, e.calc.seen)
		for _, marker := range e.calc.seen {
			assert.Equal(t, 1, marker)
		}
	})
}

func TestService_ConcurrentDamageDoesNotSkewLedgerRead(t *testing.T) {
	e := newSnapshotEnv(t)

	var (
		once sync.Once
		wg   sync.WaitGroup
		derr error
	)
	// The damage starts after the product row was read and before the ledgers are.
	e.products.onGet = func() {
		once.Do(func() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, derr = e.guard.ValidateAndCreateDamage(e.ctx, guard.DamageRequest{
					ProductID: e.product.ID,
					Location:  e.origin,
					Quantity:  10,
				})
			}()
		})
	}

	qty, err := e.avail.AvailableStock(e.ctx, e.product.ID, e.origin)
	require.NoError(t, err)
	assert.Equal(t, int64(100), qty, "read must not see half of the damage")

	wg.Wait()
	require.NoError(t, derr)

	e.products.onGet = nil
	qty, err = e.avail.AvailableStock(e.ctx, e.product.ID, e.origin)
	require.NoError(t, err)
	assert.Equal(t, int64(90), qty)
}

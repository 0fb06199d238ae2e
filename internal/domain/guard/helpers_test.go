package guard_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/storage/memory"
)

var modes = []availability.Mode{availability.ModeRegister, availability.ModeLedger}

// spy records guard outcomes and oversold observations.
type spy struct {
	mu       sync.Mutex
	accepted map[string]int
	rejected map[string]int
	partial  map[string]int
	oversold int64
}

func newSpy() *spy {
	return &spy{accepted: map[string]int{}, rejected: map[string]int{}, partial: map[string]int{}}
}

func (s *spy) GuardAccepted(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted[op]++
}

func (s *spy) GuardRejected(op, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[op+"/"+code]++
}

func (s *spy) PartialFailure(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partial[op]++
}

func (s *spy) ObserveOversold(_ location.Kind, shortfall int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oversold += shortfall
}

// env is a fully wired engine over a fresh memory store with two warehouses
// (X is the origin of every product created through it) and one shop Y.
type env struct {
	ctx      context.Context
	store    *memory.Store
	repos    memory.Repositories
	registry *locations.Registry
	avail    *availability.Service
	guard    *guard.Service
	metrics  *spy

	X, Z location.Ref
	Y    location.Ref
}

func newEnv(t *testing.T, mode availability.Mode, autoApprove bool) *env {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	registry := locations.NewRegistry(repos.Warehouses, repos.Shops)
	register := stock.NewService(repos.Stock)

	var calc availability.Calculator = availability.NewRegisterCalculator(register)
	if mode == availability.ModeLedger {
		calc = availability.NewLedgerCalculator(availability.Ledgers{
			Purchases: repos.Purchases,
			Transfers: repos.Transfers,
			Damages:   repos.Damages,
			Sales:     repos.Sales,
		})
	}

	m := newSpy()
	avail := availability.NewService(store.TxManager(), repos.Products, registry, calc, m)
	g := guard.NewService(guard.Deps{
		TxManager:         store.TxManager(),
		Products:          repos.Products,
		Locations:         registry,
		Purchases:         repos.Purchases,
		Transfers:         repos.Transfers,
		Damages:           repos.Damages,
		Sales:             repos.Sales,
		Register:          register,
		Availability:      avail,
		Metrics:           m,
		Numbers:           store.Numerator(),
		AutoApproveDamage: autoApprove,
	})

	x := warehouse.NewWarehouse("WH-X", "Central")
	z := warehouse.NewWarehouse("WH-Z", "North")
	y := shop.NewShop("SH-Y", "High Street")
	require.NoError(t, registry.CreateWarehouse(ctx, x))
	require.NoError(t, registry.CreateWarehouse(ctx, z))
	require.NoError(t, registry.CreateShop(ctx, y))

	return &env{
		ctx:      ctx,
		store:    store,
		repos:    repos,
		registry: registry,
		avail:    avail,
		guard:    g,
		metrics:  m,
		X:        x.Ref(),
		Z:        z.Ref(),
		Y:        y.Ref(),
	}
}

func (e *env) product(t *testing.T, code string, opening int64) *product.Product {
	t.Helper()
	p, err := e.guard.RegisterProduct(e.ctx, guard.ProductRequest{
		Code:              code,
		Name:              "Product " + code,
		OriginWarehouseID: e.X.ID(),
		OpeningStock:      opening,
	})
	require.NoError(t, err)
	return p
}

func (e *env) stockAt(t *testing.T, productID id.ID, loc location.Ref) int64 {
	t.Helper()
	qty, err := e.avail.AvailableStock(e.ctx, productID, loc)
	require.NoError(t, err)
	return qty
}

func (e *env) counters(t *testing.T, productID id.ID) *product.Product {
	t.Helper()
	p, err := e.repos.Products.GetByID(e.ctx, productID)
	require.NoError(t, err)
	return p
}

func (e *env) movementCount(t *testing.T, recorderID id.ID) int {
	t.Helper()
	mv, err := e.repos.Stock.GetMovementsByRecorder(e.ctx, recorderID)
	require.NoError(t, err)
	return len(mv)
}

// Package app wires the engine's services over the configured store.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"stockwise/internal/config"
	"stockwise/internal/core/idempotency"
	corenumerator "stockwise/internal/core/numerator"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/reconcile"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/domain/reports"
	v1 "stockwise/internal/infrastructure/http/v1"
	"stockwise/internal/infrastructure/metrics"
	"stockwise/internal/infrastructure/numerator"
	"stockwise/internal/infrastructure/storage/memory"
	"stockwise/internal/infrastructure/storage/postgres"
	"stockwise/internal/infrastructure/storage/postgres/catalog_repo"
	"stockwise/internal/infrastructure/storage/postgres/document_repo"
	"stockwise/internal/infrastructure/storage/postgres/register_repo"
	"stockwise/pkg/logger"
)

// Version is reported by GET /health.
var Version = "0.1.0"

// repositories is one store's implementation of every repository contract.
type repositories struct {
	txm         tx.ReadOnlyManager
	warehouses  warehouse.Repository
	shops       shop.Repository
	products    product.Repository
	purchases   purchase.Repository
	transfers   transfer.Repository
	damages     damage.Repository
	sales       sale.Repository
	stock       stock.Repository
	reports     reports.Repository
	idempotency idempotency.Store
	numbers     corenumerator.Generator
}

// App holds the wired services.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *metrics.Metrics

	TxManager    tx.Manager
	Products     product.Repository
	Stock        stock.Repository
	Locations    *locations.Registry
	Availability *availability.Service
	Guard        *guard.Service
	Reconcile    *reconcile.Service
	Reports      *reports.Service
	Idempotency  idempotency.Store

	// Exactly one of Pool and Memory is set.
	Pool   *postgres.Pool
	Memory *memory.Store
}

// New connects to the configured store and wires every service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	var repos repositories
	switch cfg.Database.Driver {
	case config.DriverMemory:
		a.Memory = memory.NewStore()
		repos = memoryRepositories(a.Memory, cfg)
	case config.DriverPostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
		poolCfg.MaxConns = cfg.Database.MaxConns
		poolCfg.MinConns = cfg.Database.MinConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.Pool = pool
		repos, err = postgresRepositories(pool, cfg)
		if err != nil {
			pool.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Database.Driver)
	}

	a.wire(repos)

	log.Infow("engine wired",
		"store", cfg.Database.Driver,
		"availability_mode", cfg.Availability.Mode,
		"damage_auto_approve", cfg.Availability.DamageAutoApprove,
		"numbering", cfg.Numbering.Strategy,
		"metrics", cfg.Metrics.Enabled,
	)
	return a, nil
}

func memoryRepositories(s *memory.Store, cfg *config.Config) repositories {
	r := s.Repositories()
	return repositories{
		txm:         s.TxManager(),
		warehouses:  r.Warehouses,
		shops:       r.Shops,
		products:    r.Products,
		purchases:   r.Purchases,
		transfers:   r.Transfers,
		damages:     r.Damages,
		sales:       r.Sales,
		stock:       r.Stock,
		reports:     r.Stock,
		idempotency: memory.NewIdempotencyStore(cfg.Idempotency.TTL),
		numbers:     s.Numerator(),
	}
}

func postgresRepositories(pool *postgres.Pool, cfg *config.Config) (repositories, error) {
	txm := postgres.NewTxManager(pool, cfg.Database.StatementTimeout)
	compressor, err := postgres.NewCompressor(postgres.DefaultCompressThreshold)
	if err != nil {
		return repositories{}, err
	}
	stockRepo := register_repo.NewStockRepo(txm)
	return repositories{
		txm:         txm,
		warehouses:  catalog_repo.NewWarehouseRepo(txm),
		shops:       catalog_repo.NewShopRepo(txm),
		products:    catalog_repo.NewProductRepo(txm),
		purchases:   document_repo.NewPurchaseRepo(txm),
		transfers:   document_repo.NewTransferRepo(txm),
		damages:     document_repo.NewDamageRepo(txm),
		sales:       document_repo.NewSaleRepo(txm),
		stock:       stockRepo,
		reports:     stockRepo,
		idempotency: postgres.NewIdempotencyStore(txm, cfg.Idempotency.TTL, compressor),
		numbers:     numerator.New(txm),
	}, nil
}

func (a *App) wire(r repositories) {
	cfg := a.Config

	registry := locations.NewRegistry(r.warehouses, r.shops)
	register := stock.NewService(r.stock)
	ledger := availability.NewLedgerCalculator(availability.Ledgers{
		Purchases: r.purchases,
		Transfers: r.transfers,
		Damages:   r.damages,
		Sales:     r.sales,
	})

	var calc availability.Calculator = availability.NewRegisterCalculator(register)
	if cfg.Availability.Mode == availability.ModeLedger {
		calc = ledger
	}

	var (
		oversold     availability.OversoldObserver
		guardMetrics guard.Metrics
		driftMetrics reconcile.Metrics
	)
	if a.Metrics != nil {
		oversold, guardMetrics, driftMetrics = a.Metrics, a.Metrics, a.Metrics
	}

	avail := availability.NewService(r.txm, r.products, registry, calc, oversold)

	a.TxManager = r.txm
	a.Products = r.products
	a.Stock = r.stock
	a.Locations = registry
	a.Availability = avail
	a.Guard = guard.NewService(guard.Deps{
		TxManager:         r.txm,
		Products:          r.products,
		Locations:         registry,
		Purchases:         r.purchases,
		Transfers:         r.transfers,
		Damages:           r.damages,
		Sales:             r.sales,
		Register:          register,
		Availability:      avail,
		Metrics:           guardMetrics,
		Numbers:           r.numbers,
		NumberOptions:     cfg.Numbering.Options(),
		AutoApproveDamage: cfg.Availability.DamageAutoApprove,
	})
	a.Reconcile = reconcile.NewService(
		r.txm, r.stock, r.products, registry, ledger, driftMetrics,
		reconcile.Config{Repair: cfg.Reconcile.Repair},
	)
	a.Reports = reports.NewService(r.reports, r.products, registry)
	if cfg.Idempotency.Enabled {
		a.Idempotency = r.idempotency
	}
}

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	rc := v1.RouterConfig{
		Logger:       a.Log,
		Guard:        a.Guard,
		Availability: a.Availability,
		Locations:    a.Locations,
		Products:     a.Products,
		Stock:        a.Stock,
		Reports:      a.Reports,
		Idempotency:  a.Idempotency,
		Metrics:      a.Metrics,
		StoreDriver:  a.Config.Database.Driver,
		Version:      Version,
	}
	if a.Pool != nil {
		rc.Store = a.Pool
	}
	return v1.NewRouter(rc)
}

// Close releases the store.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

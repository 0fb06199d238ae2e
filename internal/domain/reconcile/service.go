// Package reconcile compares the materialized state of the engine against its sources
// of truth and optionally repairs it.
//
// Three checks run in one transaction:
//
//   - balance: every register balance row must equal the fold of its movements
//   - count_in_stock: Product.CountInStock must equal opening stock plus purchases
//     minus damages as recorded in the register
//   - ledger: the legacy ledger replay must agree with the register at every location
//
// Repair rewrites balances and product counters from the movement log. Ledger drift is
// only reported; it points at legacy data that needs a human.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/registers/stock"
	"stockwise/pkg/logger"
)

// DriftKind names the check that found a drift.
type DriftKind string

const (
	DriftBalance      DriftKind = "balance"
	DriftCountInStock DriftKind = "count_in_stock"
	DriftLedger       DriftKind = "ledger"
)

// Drift is one mismatch.
type Drift struct {
	Kind      DriftKind `json:"kind"`
	ProductID id.ID     `json:"productId"`
	Location  string    `json:"location,omitempty"`
	Expected  int64     `json:"expected"`
	Actual    int64     `json:"actual"`
	Repaired  bool      `json:"repaired"`
}

// Report summarizes one run.
type Report struct {
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	BalancesChecked int       `json:"balancesChecked"`
	ProductsChecked int       `json:"productsChecked"`
	Drifts          []Drift   `json:"drifts"`
}

// Count returns the number of drifts of kind k.
func (r *Report) Count(k DriftKind) int {
	n := 0
	for _, d := range r.Drifts {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Metrics receives drift counts.
type Metrics interface {
	ObserveDrift(kind string, n int)
}

// Config controls a Service.
type Config struct {
	Repair bool
}

// Service runs reconciliation.
type Service struct {
	tx        tx.Manager
	register  stock.Repository
	products  product.Repository
	locations *locations.Registry
	ledger    availability.Calculator
	metrics   Metrics
	cfg       Config
}

// NewService creates a reconciliation service. ledger is normally an
// availability.LedgerCalculator; metrics may be nil.
func NewService(
	txm tx.Manager,
	register stock.Repository,
	products product.Repository,
	registry *locations.Registry,
	ledger availability.Calculator,
	metrics Metrics,
	cfg Config,
) *Service {
	return &Service{
		tx:        txm,
		register:  register,
		products:  products,
		locations: registry,
		ledger:    ledger,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Run performs every check once.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkBalances(ctx, report); err != nil {
			return fmt.Errorf("check balances: %w", err)
		}
		if err := s.checkProducts(ctx, report); err != nil {
			return fmt.Errorf("check products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	if s.metrics != nil {
		for _, k := range []DriftKind{DriftBalance, DriftCountInStock, DriftLedger} {
			s.metrics.ObserveDrift(string(k), report.Count(k))
		}
	}

	logger.Info(ctx, "reconciliation finished",
		"balances", report.BalancesChecked,
		"products", report.ProductsChecked,
		"drifts", len(report.Drifts),
		"repair", s.cfg.Repair,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

type cell struct {
	key       location.Key
	productID id.ID
}

func (s *Service) checkBalances(ctx context.Context, report *Report) error {
	folds, err := s.register.FoldAll(ctx)
	if err != nil {
		return err
	}
	balances, err := s.register.ListBalances(ctx)
	if err != nil {
		return err
	}

	expected := make(map[cell]int64, len(folds))
	for i := range folds {
		expected[cell{key: folds[i].Key(), productID: folds[i].ProductID}] = folds[i].Quantity
	}
	actual := make(map[cell]int64, len(balances))
	for i := range balances {
		actual[cell{key: balances[i].Key(), productID: balances[i].ProductID}] = balances[i].Quantity
	}

	cells := make([]cell, 0, len(expected)+len(actual))
	for c := range expected {
		cells = append(cells, c)
	}
	for c := range actual {
		if _, ok := expected[c]; !ok {
			cells = append(cells, c)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].productID != cells[j].productID {
			return id.Compare(cells[i].productID, cells[j].productID) < 0
		}
		return cells[i].key.Less(cells[j].key)
	})

	for _, c := range cells {
		report.BalancesChecked++
		want, got := expected[c], actual[c]
		if want == got {
			continue
		}
		d := Drift{
			Kind:      DriftBalance,
			ProductID: c.productID,
			Location:  c.key.Ref().String(),
			Expected:  want,
			Actual:    got,
		}
		if s.cfg.Repair {
			if err := s.register.SetBalance(ctx, c.key.Ref(), c.productID, want); err != nil {
				return err
			}
			d.Repaired = true
		}
		logger.Warn(ctx, "balance drift",
			"product_id", d.ProductID,
			"location", d.Location,
			"expected", want,
			"actual", got,
			"repaired", d.Repaired,
		)
		report.Drifts = append(report.Drifts, d)
	}
	return nil
}

var countInStockRecorders = []string{
	entity.RecorderProductOpening,
	entity.RecorderPurchase,
	entity.RecorderDamage,
}

func (s *Service) checkProducts(ctx context.Context, report *Report) error {
	products, err := s.products.List(ctx)
	if err != nil {
		return err
	}
	all, err := s.locations.All(ctx)
	if err != nil {
		return err
	}

	for _, p := range products {
		report.ProductsChecked++

		want, err := s.register.SumProductMovements(ctx, p.ID, countInStockRecorders)
		if err != nil {
			return err
		}
		if want != p.CountInStock {
			d := Drift{
				Kind:      DriftCountInStock,
				ProductID: p.ID,
				Expected:  want,
				Actual:    p.CountInStock,
			}
			if s.cfg.Repair {
				locked, err := s.products.GetForUpdate(ctx, p.ID)
				if err != nil {
					return err
				}
				locked.CountInStock = want
				if err := s.products.UpdateCounters(ctx, locked); err != nil {
					return err
				}
				p = locked
				d.Repaired = true
			}
			logger.Warn(ctx, "count_in_stock drift",
				"product_id", p.ID,
				"expected", want,
				"actual", d.Actual,
				"repaired", d.Repaired,
			)
			report.Drifts = append(report.Drifts, d)
		}

		if s.ledger == nil {
			continue
		}
		for _, r := range all {
			replayed, err := s.ledger.Compute(ctx, p, r.Ref)
			if err != nil {
				return err
			}
			// The register fold is authoritative once balances are repaired.
			folded, err := s.register.SumMovements(ctx, r.Ref, p.ID)
			if err != nil {
				return err
			}
			if replayed == folded {
				continue
			}
			logger.Warn(ctx, "ledger drift",
				"product_id", p.ID,
				"location", r.Ref.String(),
				"register", folded,
				"ledger", replayed,
			)
			report.Drifts = append(report.Drifts, Drift{
				Kind:      DriftLedger,
				ProductID: p.ID,
				Location:  r.Ref.String(),
				Expected:  folded,
				Actual:    replayed,
			})
		}
	}
	return nil
}

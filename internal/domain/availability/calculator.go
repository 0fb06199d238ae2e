// Package availability computes how many units of a product a location holds.
//
// Two calculators implement the same contract:
//
//   - RegisterCalculator reads the materialized register balance, which is the fold
//     of the append-only movement log. This is the default.
//   - LedgerCalculator replays the four ledgers plus the legacy Product counters.
//     It is kept for deployments that still trust the legacy data and is the
//     reference the reconciliation job compares the register against.
//
// Both return the raw, unclamped value. Clamping happens once, in Service.
package availability

import (
	"context"
	"fmt"

	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/registers/stock"
)

// Mode selects a calculator.
type Mode string

const (
	ModeRegister Mode = "register"
	ModeLedger   Mode = "ledger"
)

// Calculator returns the signed stock of p at loc.
type Calculator interface {
	Compute(ctx context.Context, p *product.Product, loc location.Ref) (int64, error)
	Mode() Mode
}

// RegisterCalculator reads the register balance.
type RegisterCalculator struct {
	register *stock.Service
}

// NewRegisterCalculator creates a register-backed calculator.
func NewRegisterCalculator(register *stock.Service) *RegisterCalculator {
	return &RegisterCalculator{register: register}
}

func (c *RegisterCalculator) Mode() Mode { return ModeRegister }

// Compute implements Calculator.
func (c *RegisterCalculator) Compute(ctx context.Context, p *product.Product, loc location.Ref) (int64, error) {
	return c.register.Balance(ctx, loc, p.ID)
}

// Ledgers groups the ledger repositories the replay reads.
type Ledgers struct {
	Purchases purchase.Repository
	Transfers transfer.Repository
	Damages   damage.Repository
	Sales     sale.Repository
}

// LedgerCalculator replays the ledgers on top of Product.CountInStock.
type LedgerCalculator struct {
	ledgers Ledgers
}

// NewLedgerCalculator creates a ledger replay calculator.
func NewLedgerCalculator(ledgers Ledgers) *LedgerCalculator {
	return &LedgerCalculator{ledgers: ledgers}
}

func (c *LedgerCalculator) Mode() Mode { return ModeLedger }

// Compute implements Calculator.
func (c *LedgerCalculator) Compute(ctx context.Context, p *product.Product, loc location.Ref) (int64, error) {
	purchases, err := c.ledgers.Purchases.ListByProduct(ctx, p.ID, true)
	if err != nil {
		return 0, fmt.Errorf("list purchases: %w", err)
	}
	transfers, err := c.ledgers.Transfers.ListByProduct(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("list transfers: %w", err)
	}
	approved := damage.StatusApproved
	damages, err := c.ledgers.Damages.ListByProduct(ctx, p.ID, &approved)
	if err != nil {
		return 0, fmt.Errorf("list damages: %w", err)
	}
	sales, err := c.ledgers.Sales.ListByProduct(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("list sales: %w", err)
	}

	return Replay(p, loc, History{
		Purchases: purchases,
		Transfers: transfers,
		Damages:   damages,
		Sales:     sales,
	}), nil
}

// History is the ledger rows of one product.
type History struct {
	Purchases []*purchase.Purchase
	Transfers []*transfer.Transfer
	Damages   []*damage.Damage
	Sales     []*sale.Sale
}

// Replay computes the signed stock of p at loc from the legacy counter and the ledgers.
//
// CountInStock is global: it already includes every active purchase and every
// approved damage, wherever they were recorded. The origin warehouse is seeded with
// it and then compensated for the entries that belong to other locations; every other
// location counts only its own entries. Inactive purchases, cancelled transfers and
// non-approved damages are ignored.
func Replay(p *product.Product, loc location.Ref, h History) int64 {
	origin := p.Origin()
	isOrigin := location.Equal(loc, origin)

	var total int64
	if isOrigin {
		total = p.CountInStock
	}

	for _, t := range h.Transfers {
		if t.Status != transfer.StatusCompleted {
			continue
		}
		q := t.QuantityOf(p.ID)
		if location.Equal(t.Destination, loc) {
			total += q
		}
		if location.Equal(t.Source, loc) {
			total -= q
		}
	}

	for _, d := range h.Damages {
		if d.ProductID != p.ID || d.Status != damage.StatusApproved {
			continue
		}
		at := d.EffectiveLocation(origin)
		switch {
		case isOrigin && !location.Equal(at, origin):
			// countInStock was decremented for a damage that happened elsewhere
			total += d.Quantity
		case !isOrigin && location.Equal(at, loc):
			total -= d.Quantity
		}
	}

	for _, pu := range h.Purchases {
		if pu.ProductID != p.ID || !pu.IsActive {
			continue
		}
		switch {
		case isOrigin && !location.Equal(pu.Location, origin):
			total -= pu.Quantity
		case !isOrigin && location.Equal(pu.Location, loc):
			total += pu.Quantity
		}
	}

	for _, s := range h.Sales {
		if location.Equal(s.Location, loc) {
			total -= s.QuantityOf(p.ID)
		}
	}

	return total
}

// Package guard implements the write path of the stock engine.
//
// Every operation that can lower stock at a location follows the same shape inside one
// transaction: lock the product rows, lock the affected register balances in a stable
// order, read availability, compare with the request, and only then append the ledger
// row, the register movements and the product counter changes. A shortfall aborts the
// transaction before anything is written.
package guard

import (
	"context"
	"errors"
	"sort"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/core/numerator"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/locations"
	"stockwise/internal/domain/registers/stock"
	"stockwise/pkg/logger"
)

// Operation names used in logs, metrics and PartialFailure details.
const (
	OpRegisterProduct    = "register_product"
	OpRecordPurchase     = "record_purchase"
	OpDeactivatePurchase = "deactivate_purchase"
	OpCreateTransfer     = "create_transfer"
	OpCancelTransfer     = "cancel_transfer"
	OpCreateDamage       = "create_damage"
	OpApproveDamage      = "approve_damage"
	OpRejectDamage       = "reject_damage"
	OpCreateSale         = "create_sale"
)

// Metrics receives guard outcomes.
type Metrics interface {
	GuardAccepted(operation string)
	GuardRejected(operation, code string)
	PartialFailure(operation string)
}

type nopMetrics struct{}

func (nopMetrics) GuardAccepted(string)         {}
func (nopMetrics) GuardRejected(string, string) {}
func (nopMetrics) PartialFailure(string)        {}

// Deps holds the collaborators of Service.
type Deps struct {
	TxManager    tx.Manager
	Products     product.Repository
	Locations    *locations.Registry
	Purchases    purchase.Repository
	Transfers    transfer.Repository
	Damages      damage.Repository
	Sales        sale.Repository
	Register     *stock.Service
	Availability *availability.Service
	Metrics      Metrics

	// Numbers assigns document numbers; nil leaves documents unnumbered.
	Numbers       numerator.Generator
	NumberOptions *numerator.Options

	// AutoApproveDamage creates damages directly in approved.
	AutoApproveDamage bool
}

// Service is the guarded write API.
type Service struct {
	tx           tx.Manager
	products     product.Repository
	locations    *locations.Registry
	purchases    purchase.Repository
	transfers    transfer.Repository
	damages      damage.Repository
	sales        sale.Repository
	register     *stock.Service
	availability *availability.Service
	metrics      Metrics
	numbers      numerator.Generator
	numberOpts   *numerator.Options
	autoApprove  bool
}

// NewService creates the guard service.
func NewService(d Deps) *Service {
	m := d.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	return &Service{
		tx:           d.TxManager,
		products:     d.Products,
		locations:    d.Locations,
		purchases:    d.Purchases,
		transfers:    d.Transfers,
		damages:      d.Damages,
		sales:        d.Sales,
		register:     d.Register,
		availability: d.Availability,
		metrics:      m,
		numbers:      d.Numbers,
		numberOpts:   d.NumberOptions,
		autoApprove:  d.AutoApproveDamage,
	}
}

// inTx runs fn in a transaction and classifies the outcome.
func (s *Service) inTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := s.tx.RunInTransaction(ctx, fn)
	if err == nil {
		s.metrics.GuardAccepted(op)
		return nil
	}

	if errors.Is(err, tx.ErrCommitFailed) {
		s.metrics.PartialFailure(op)
		logger.Error(ctx, "commit outcome unknown, reconciliation required",
			"operation", op,
			"error", err,
		)
		return apperror.NewPartialFailure(op, err)
	}

	if appErr, ok := apperror.AsAppError(err); ok {
		s.metrics.GuardRejected(op, appErr.Code)
		logger.Info(ctx, "operation rejected",
			"operation", op,
			"code", appErr.Code,
			"message", appErr.Message,
		)
	}
	return err
}

// assignNumber gives doc the next number of its recorder type. It runs inside the
// posting transaction, after the guard checks pass.
func (s *Service) assignNumber(ctx context.Context, doc *entity.Document, recorderType string) error {
	if s.numbers == nil || doc.Number != "" {
		return nil
	}
	num, err := s.numbers.GetNextNumber(ctx, numerator.ConfigFor(recorderType), s.numberOpts, doc.Date)
	if err != nil {
		return apperror.NewInternal(err)
	}
	doc.Number = num
	return nil
}

// lockProducts takes row locks on the given products in id order.
func (s *Service) lockProducts(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	sorted := sortedIDs(ids)
	out := make(map[id.ID]*product.Product, len(sorted))
	for _, pid := range sorted {
		p, err := s.products.GetForUpdate(ctx, pid)
		if err != nil {
			return nil, err
		}
		out[pid] = p
	}
	return out, nil
}

// lockBalances locks every (product, location) cell the operation touches.
func (s *Service) lockBalances(ctx context.Context, productIDs []id.ID, locs ...location.Ref) error {
	dims := make([]stock.Dimension, 0, len(productIDs)*len(locs))
	for _, pid := range productIDs {
		for _, loc := range locs {
			dims = append(dims, stock.Dimension{ProductID: pid, Location: location.KeyOf(loc)})
		}
	}
	return s.register.Lock(ctx, dims)
}

// ensureAvailable fails with InsufficientStock when loc holds less than requested.
func (s *Service) ensureAvailable(ctx context.Context, p *product.Product, loc location.Ref, requested int64) error {
	available, err := s.availability.Available(ctx, p, loc)
	if err != nil {
		return err
	}
	if available >= requested {
		return nil
	}

	suggestions, err := s.availability.Suggestions(ctx, p, loc)
	if err != nil {
		return err
	}
	return apperror.NewInsufficientStock(p.ID.String(), loc.String(), requested, available).
		WithDetail("suggestions", suggestions)
}

func sortedIDs(ids []id.ID) []id.ID {
	seen := make(map[id.ID]struct{}, len(ids))
	out := make([]id.ID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id.Compare(out[i], out[j]) < 0 })
	return out
}

func keys(m map[id.ID]int64) []id.ID {
	out := make([]id.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return sortedIDs(out)
}

package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller (the write-path guards).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repo exposes the underlying repository to read-side collaborators.
func (s *Service) Repo() Repository {
	return s.repo
}

// RecordMovements validates and appends movements from a ledger document.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if m.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if id.IsNil(m.ProductID) || id.IsNil(m.LocationID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: product and location are required", i))
		}
	}

	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}

	logger.Debug(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
		"recorder_type", movements[0].RecorderType,
	)
	return nil
}

// ReverseRecorder appends movements that cancel everything a document has booked so far.
// The log stays append-only; nothing is deleted.
func (s *Service) ReverseRecorder(ctx context.Context, recorderID id.ID) error {
	existing, err := s.repo.GetMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return fmt.Errorf("get movements: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}

	// Net out per dimension so a second reversal after a re-posting stays correct.
	type dim struct {
		key       location.Key
		productID id.ID
	}
	net := make(map[dim]int64)
	version := 0
	for i := range existing {
		m := &existing[i]
		net[dim{key: m.Key(), productID: m.ProductID}] += m.SignedQuantity()
		if m.RecorderVersion > version {
			version = m.RecorderVersion
		}
	}

	now := time.Now().UTC()
	recorderType := existing[0].RecorderType
	reversals := make([]entity.StockMovement, 0, len(net))
	for d, qty := range net {
		if qty == 0 {
			continue
		}
		recordType := entity.RecordTypeExpense
		if qty < 0 {
			recordType = entity.RecordTypeReceipt
			qty = -qty
		}
		reversals = append(reversals, entity.NewStockMovement(
			recorderID, recorderType, version+1, now, recordType, d.key.Ref(), d.productID, qty,
		))
	}
	sort.Slice(reversals, func(i, j int) bool {
		return reversals[i].Key().Less(reversals[j].Key())
	})

	if err := s.RecordMovements(ctx, reversals); err != nil {
		return err
	}

	logger.Info(ctx, "reversed stock movements",
		"recorder_id", recorderID,
		"recorder_version", version+1,
	)
	return nil
}

// Balance returns the signed materialized balance for (product, location).
func (s *Service) Balance(ctx context.Context, loc location.Ref, productID id.ID) (int64, error) {
	b, err := s.repo.GetBalance(ctx, loc, productID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return b.Quantity, nil
}

// Lock takes row locks on the balances of the given dimensions in a stable order.
func (s *Service) Lock(ctx context.Context, dims []Dimension) error {
	sorted := append([]Dimension(nil), dims...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var prev *Dimension
	for i := range sorted {
		d := sorted[i]
		if prev != nil && *prev == d {
			continue
		}
		if _, err := s.repo.LockBalance(ctx, d.Location.Ref(), d.ProductID); err != nil {
			return fmt.Errorf("lock balance %s/%s: %w", d.Location.Kind, d.ProductID, err)
		}
		prev = &sorted[i]
	}
	return nil
}

// Dimension is one (product, location) cell of the register.
type Dimension struct {
	ProductID id.ID
	Location  location.Key
}

// Less orders dimensions by product, then location.
func (d Dimension) Less(other Dimension) bool {
	if c := id.Compare(d.ProductID, other.ProductID); c != 0 {
		return c < 0
	}
	return d.Location.Less(other.Location)
}

package guard

import (
	"context"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/pkg/logger"
)

// PurchaseRequest describes goods received at a location.
type PurchaseRequest struct {
	ProductID   id.ID
	Location    location.Ref
	Quantity    int64
	UnitCost    decimal.Decimal
	SupplierRef string
	Comment     string
}

// RecordPurchase books a receipt. Receipts need no availability check.
func (s *Service) RecordPurchase(ctx context.Context, req PurchaseRequest) (*purchase.Purchase, error) {
	pu := purchase.NewPurchase(req.ProductID, req.Location, req.Quantity)
	pu.UnitCost = req.UnitCost
	pu.SupplierRef = req.SupplierRef
	pu.Comment = req.Comment
	if err := pu.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, OpRecordPurchase, func(ctx context.Context) error {
		if _, err := s.locations.Resolve(ctx, pu.Location); err != nil {
			return err
		}
		products, err := s.lockProducts(ctx, []id.ID{pu.ProductID})
		if err != nil {
			return err
		}
		p := products[pu.ProductID]
		if err := s.lockBalances(ctx, []id.ID{p.ID}, pu.Location); err != nil {
			return err
		}

		if err := s.assignNumber(ctx, &pu.Document, entity.RecorderPurchase); err != nil {
			return err
		}
		if err := s.purchases.Create(ctx, pu); err != nil {
			return err
		}
		if err := s.register.RecordMovements(ctx, pu.Movements()); err != nil {
			return err
		}
		p.ApplyPurchase(pu.Quantity)
		return s.products.UpdateCounters(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"purchase_id", pu.ID,
		"product_id", pu.ProductID,
		"location", pu.Location.String(),
		"quantity", pu.Quantity,
	)
	return pu, nil
}

// DeactivatePurchase soft-deletes a purchase and takes its units back out of stock.
// The location must still hold them.
func (s *Service) DeactivatePurchase(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	var pu *purchase.Purchase

	err := s.inTx(ctx, OpDeactivatePurchase, func(ctx context.Context) error {
		var err error
		pu, err = s.purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if !pu.IsActive {
			return pu.Deactivate()
		}

		products, err := s.lockProducts(ctx, []id.ID{pu.ProductID})
		if err != nil {
			return err
		}
		p := products[pu.ProductID]
		if err := s.lockBalances(ctx, []id.ID{p.ID}, pu.Location); err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, p, pu.Location, pu.Quantity); err != nil {
			return err
		}

		if err := pu.Deactivate(); err != nil {
			return err
		}
		if err := s.purchases.SetActive(ctx, pu); err != nil {
			return err
		}
		if err := s.register.ReverseRecorder(ctx, pu.ID); err != nil {
			return err
		}
		p.ReversePurchase(pu.Quantity)
		return s.products.UpdateCounters(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase deactivated", "purchase_id", pu.ID)
	return pu, nil
}

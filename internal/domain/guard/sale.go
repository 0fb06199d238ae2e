package guard

import (
	"context"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/sale"
	"stockwise/pkg/logger"
)

// SaleRequest describes a sale of one or more products at one location.
type SaleRequest struct {
	Location location.Ref
	Items    []sale.Item
	Comment  string
}

// ValidateAndCreateSale sells quantity units of one product at loc.
func (s *Service) ValidateAndCreateSale(ctx context.Context, productID id.ID, loc location.Ref, quantity int64) (*sale.Sale, error) {
	return s.CreateSale(ctx, SaleRequest{
		Location: loc,
		Items: []sale.Item{
			{ProductID: productID, Quantity: quantity, UnitPrice: decimal.Zero},
		},
	})
}

// CreateSale books a sale if the location holds every requested quantity.
func (s *Service) CreateSale(ctx context.Context, req SaleRequest) (*sale.Sale, error) {
	sl := sale.NewSale(req.Location, req.Items)
	sl.Comment = req.Comment
	if err := sl.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, OpCreateSale, func(ctx context.Context) error {
		if _, err := s.locations.Resolve(ctx, sl.Location); err != nil {
			return err
		}

		qty := sl.QuantityByProduct()
		productIDs := keys(qty)
		products, err := s.lockProducts(ctx, productIDs)
		if err != nil {
			return err
		}
		if err := s.lockBalances(ctx, productIDs, sl.Location); err != nil {
			return err
		}

		for _, pid := range productIDs {
			if err := s.ensureAvailable(ctx, products[pid], sl.Location, qty[pid]); err != nil {
				return err
			}
		}

		if err := s.assignNumber(ctx, &sl.Document, entity.RecorderSale); err != nil {
			return err
		}
		if err := s.sales.Create(ctx, sl); err != nil {
			return err
		}
		if err := s.register.RecordMovements(ctx, sl.Movements()); err != nil {
			return err
		}
		for _, pid := range productIDs {
			p := products[pid]
			p.ApplySale(qty[pid])
			if err := s.products.UpdateCounters(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"sale_id", sl.ID,
		"location", sl.Location.String(),
		"lines", len(sl.Items),
	)
	return sl, nil
}

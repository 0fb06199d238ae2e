package guard

import (
	"context"
	"time"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/pkg/logger"
)

// ProductRequest describes a new product.
type ProductRequest struct {
	Code              string
	Name              string
	OriginWarehouseID id.ID
	OpeningStock      int64
}

// RegisterProduct creates a product and books its opening stock at the origin warehouse.
func (s *Service) RegisterProduct(ctx context.Context, req ProductRequest) (*product.Product, error) {
	p := product.NewProduct(req.Code, req.Name, req.OriginWarehouseID, req.OpeningStock)
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, OpRegisterProduct, func(ctx context.Context) error {
		if _, err := s.locations.Resolve(ctx, p.Origin()); err != nil {
			return err
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
		if p.CountInStock == 0 {
			return nil
		}
		opening := entity.NewStockMovement(
			p.ID, entity.RecorderProductOpening, 1, time.Now().UTC(),
			entity.RecordTypeReceipt, p.Origin(), p.ID, p.CountInStock,
		)
		return s.register.RecordMovements(ctx, []entity.StockMovement{opening})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product registered",
		"product_id", p.ID,
		"origin", p.Origin().String(),
		"opening_stock", p.CountInStock,
	)
	return p, nil
}

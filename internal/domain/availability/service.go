package availability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/core/tx"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/locations"
	"stockwise/pkg/logger"
)

var tracer = otel.Tracer("stockwise/availability")

// OversoldObserver is notified when a calculator returns a negative value.
type OversoldObserver interface {
	ObserveOversold(kind location.Kind, shortfall int64)
}

type nopObserver struct{}

func (nopObserver) ObserveOversold(location.Kind, int64) {}

// Service answers "how many units of product P are at location L".
type Service struct {
	reader    tx.ReadOnlyManager
	products  product.Repository
	locations *locations.Registry
	calc      Calculator
	observer  OversoldObserver
}

// NewService creates the availability service. observer may be nil.
// AvailableStock and LocationsWithStock run inside reader.ReadOnly so all of their
// queries see one snapshot.
func NewService(
	reader tx.ReadOnlyManager,
	products product.Repository,
	registry *locations.Registry,
	calc Calculator,
	observer OversoldObserver,
) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		reader:    reader,
		products:  products,
		locations: registry,
		calc:      calc,
		observer:  observer,
	}
}

// Calculator returns the configured calculator.
func (s *Service) Calculator() Calculator {
	return s.calc
}

// AvailableStock returns the non-negative stock of productID at loc.
// Unknown products and locations are NotFound errors.
func (s *Service) AvailableStock(ctx context.Context, productID id.ID, loc location.Ref) (int64, error) {
	var qty int64
	err := s.reader.ReadOnly(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if _, err := s.locations.Resolve(ctx, loc); err != nil {
			return err
		}
		qty, err = s.Available(ctx, p, loc)
		return err
	})
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Available is AvailableStock for an already loaded product and resolved location.
func (s *Service) Available(ctx context.Context, p *product.Product, loc location.Ref) (int64, error) {
	raw, err := s.Raw(ctx, p, loc)
	if err != nil {
		return 0, err
	}
	if raw < 0 {
		logger.Warn(ctx, "negative stock computed, clamping to zero",
			"product_id", p.ID,
			"location", loc.String(),
			"raw", raw,
			"mode", s.calc.Mode(),
		)
		s.observer.ObserveOversold(loc.Kind(), -raw)
		return 0, nil
	}
	return raw, nil
}

// Raw returns the unclamped calculator output.
func (s *Service) Raw(ctx context.Context, p *product.Product, loc location.Ref) (int64, error) {
	ctx, span := tracer.Start(ctx, "availability.compute",
		trace.WithAttributes(
			attribute.String("product_id", p.ID.String()),
			attribute.String("location", loc.String()),
			attribute.String("mode", string(s.calc.Mode())),
		),
	)
	defer span.End()

	raw, err := s.calc.Compute(ctx, p, loc)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Int64("raw", raw))
	return raw, nil
}

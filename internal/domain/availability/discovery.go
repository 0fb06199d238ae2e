package availability

import (
	"context"
	"fmt"

	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/product"
)

// LocationStock is one entry of a discovery listing.
type LocationStock struct {
	LocationType location.Kind `json:"locationType"`
	LocationID   id.ID         `json:"locationId"`
	Name         string        `json:"name"`
	Stock        int64         `json:"stock"`
}

// Ref returns the entry's location.
func (ls LocationStock) Ref() location.Ref {
	return location.MustNew(ls.LocationType, ls.LocationID)
}

// LocationsWithStock lists every location holding a positive quantity of productID.
// The origin warehouse comes first, then the other warehouses, then shops.
func (s *Service) LocationsWithStock(ctx context.Context, productID id.ID) ([]LocationStock, error) {
	var out []LocationStock
	err := s.reader.ReadOnly(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		out, err = s.locationsWithStock(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) locationsWithStock(ctx context.Context, p *product.Product) ([]LocationStock, error) {
	all, err := s.locations.All(ctx)
	if err != nil {
		return nil, err
	}

	origin := p.Origin()
	out := make([]LocationStock, 0, len(all))
	var originEntry *LocationStock

	for _, r := range all {
		qty, err := s.Available(ctx, p, r.Ref)
		if err != nil {
			return nil, fmt.Errorf("compute stock at %s: %w", r.Ref, err)
		}
		if qty <= 0 {
			continue
		}
		entry := LocationStock{
			LocationType: r.Ref.Kind(),
			LocationID:   r.Ref.ID(),
			Name:         r.Name,
			Stock:        qty,
		}
		if location.Equal(r.Ref, origin) {
			originEntry = &entry
			continue
		}
		out = append(out, entry)
	}

	if originEntry != nil {
		out = append([]LocationStock{*originEntry}, out...)
	}
	return out, nil
}

// Suggestions returns the locations other than exclude that hold stock of p.
func (s *Service) Suggestions(ctx context.Context, p *product.Product, exclude location.Ref) ([]LocationStock, error) {
	all, err := s.locationsWithStock(ctx, p)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, ls := range all {
		if location.Equal(ls.Ref(), exclude) {
			continue
		}
		out = append(out, ls)
	}
	return out, nil
}

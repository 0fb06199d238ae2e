// Package reports builds read-only reports over the stock register.
package reports

import (
	"context"
	"fmt"
	"sort"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/locations"
	"stockwise/pkg/logger"
)

// Service provides report generation operations.
type Service struct {
	repo      Repository
	products  product.Repository
	locations *locations.Registry
}

// NewService creates a new reports service.
func NewService(repo Repository, products product.Repository, registry *locations.Registry) *Service {
	return &Service{repo: repo, products: products, locations: registry}
}

// GetStockTurnover generates the stock turnover report: opening balance, receipts,
// expenses and closing balance per (product, location) over a period.
func (s *Service) GetStockTurnover(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must not be after toDate").
			WithDetail("fromDate", filter.FromDate).
			WithDetail("toDate", filter.ToDate)
	}
	if filter.Location != nil {
		if _, err := s.locations.Resolve(ctx, filter.Location); err != nil {
			return nil, err
		}
	}

	rows, err := s.repo.StockTurnover(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock turnover report: %w", err)
	}

	names, err := s.locationNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &StockTurnoverReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Items:    make([]StockTurnoverItem, 0, len(rows)),
	}
	products := make(map[id.ID]*product.Product)
	for _, row := range rows {
		p, ok := products[row.ProductID]
		if !ok {
			p, err = s.products.GetByID(ctx, row.ProductID)
			if err != nil {
				return nil, err
			}
			products[row.ProductID] = p
		}

		item := StockTurnoverItem{
			StockTurnoverRow: row,
			ProductCode:      p.Code,
			ProductName:      p.Name,
			LocationName:     names[row.Key()],
			Closing:          row.Closing(),
		}
		report.Items = append(report.Items, item)
		report.TotalOpening += item.Opening
		report.TotalReceipt += item.Receipt
		report.TotalExpense += item.Expense
		report.TotalClosing += item.Closing
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if a.ProductCode != b.ProductCode {
			return a.ProductCode < b.ProductCode
		}
		return a.Key().Less(b.Key())
	})

	logger.Debug(ctx, "stock turnover built",
		"from", filter.FromDate,
		"to", filter.ToDate,
		"rows", len(report.Items),
	)
	return report, nil
}

func (s *Service) locationNames(ctx context.Context) (map[location.Key]string, error) {
	all, err := s.locations.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[location.Key]string, len(all))
	for _, l := range all {
		names[location.KeyOf(l.Ref)] = l.Name
	}
	return names, nil
}

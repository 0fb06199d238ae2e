package dto

import (
	"time"

	"stockwise/internal/domain/reports"
)

// StockTurnoverItemResponse is one (product, location) row of the turnover report.
type StockTurnoverItemResponse struct {
	ProductID      string `json:"productId"`
	ProductCode    string `json:"productCode"`
	ProductName    string `json:"productName"`
	LocationType   string `json:"locationType"`
	LocationID     string `json:"locationId"`
	LocationName   string `json:"locationName"`
	OpeningBalance int64  `json:"openingBalance"`
	Receipt        int64  `json:"receipt"`
	Expense        int64  `json:"expense"`
	ClosingBalance int64  `json:"closingBalance"`
}

// StockTurnoverResponse represents the full turnover report.
type StockTurnoverResponse struct {
	FromDate     time.Time                   `json:"fromDate"`
	ToDate       time.Time                   `json:"toDate"`
	Items        []StockTurnoverItemResponse `json:"items"`
	TotalOpening int64                       `json:"totalOpening"`
	TotalReceipt int64                       `json:"totalReceipt"`
	TotalExpense int64                       `json:"totalExpense"`
	TotalClosing int64                       `json:"totalClosing"`
}

// FromStockTurnover converts the report.
func FromStockTurnover(r *reports.StockTurnoverReport) StockTurnoverResponse {
	items := make([]StockTurnoverItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = StockTurnoverItemResponse{
			ProductID:      it.ProductID.String(),
			ProductCode:    it.ProductCode,
			ProductName:    it.ProductName,
			LocationType:   string(it.LocationType),
			LocationID:     it.LocationID.String(),
			LocationName:   it.LocationName,
			OpeningBalance: it.Opening,
			Receipt:        it.Receipt,
			Expense:        it.Expense,
			ClosingBalance: it.Closing,
		}
	}
	return StockTurnoverResponse{
		FromDate:     r.FromDate,
		ToDate:       r.ToDate,
		Items:        items,
		TotalOpening: r.TotalOpening,
		TotalReceipt: r.TotalReceipt,
		TotalExpense: r.TotalExpense,
		TotalClosing: r.TotalClosing,
	}
}

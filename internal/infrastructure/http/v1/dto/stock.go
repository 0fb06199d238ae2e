package dto

import (
	"time"

	"stockwise/internal/core/entity"
	"stockwise/internal/domain/availability"
)

// --- Availability ---

// AvailabilityResponse answers "how many units of a product are at a location".
type AvailabilityResponse struct {
	ProductID    string `json:"productId"`
	LocationType string `json:"locationType"`
	LocationID   string `json:"locationId"`
	Available    int64  `json:"available"`
	Mode         string `json:"mode"`
}

// LocationStockResponse is one location holding a product.
type LocationStockResponse struct {
	LocationType string `json:"locationType"`
	LocationID   string `json:"locationId"`
	Name         string `json:"name"`
	Stock        int64  `json:"stock"`
}

// FromLocationStock converts a discovery entry.
func FromLocationStock(ls availability.LocationStock) LocationStockResponse {
	return LocationStockResponse{
		LocationType: string(ls.LocationType),
		LocationID:   ls.LocationID.String(),
		Name:         ls.Name,
		Stock:        ls.Stock,
	}
}

// FromLocationStocks converts a discovery result, keeping an empty list non-nil.
func FromLocationStocks(list []availability.LocationStock) []LocationStockResponse {
	out := make([]LocationStockResponse, len(list))
	for i, ls := range list {
		out[i] = FromLocationStock(ls)
	}
	return out
}

// --- Register ---

// StockBalanceResponse represents stock balance in API responses.
type StockBalanceResponse struct {
	LocationType   string     `json:"locationType"`
	LocationID     string     `json:"locationId"`
	ProductID      string     `json:"productId"`
	Quantity       int64      `json:"quantity"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		LocationType:   string(b.LocationType),
		LocationID:     b.LocationID.String(),
		ProductID:      b.ProductID.String(),
		Quantity:       b.Quantity,
		LastMovementAt: b.LastMovementAt,
	}
}

// StockMovementResponse represents stock movement in API responses.
type StockMovementResponse struct {
	LineID          string    `json:"lineId"`
	RecorderID      string    `json:"recorderId"`
	RecorderType    string    `json:"recorderType"`
	RecorderVersion int       `json:"recorderVersion"`
	Period          time.Time `json:"period"`
	RecordType      string    `json:"recordType"`
	LocationType    string    `json:"locationType"`
	LocationID      string    `json:"locationId"`
	ProductID       string    `json:"productId"`
	Quantity        int64     `json:"quantity"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		LineID:          m.LineID.String(),
		RecorderID:      m.RecorderID.String(),
		RecorderType:    m.RecorderType,
		RecorderVersion: m.RecorderVersion,
		Period:          m.Period,
		RecordType:      string(m.RecordType),
		LocationType:    string(m.LocationType),
		LocationID:      m.LocationID.String(),
		ProductID:       m.ProductID.String(),
		Quantity:        m.Quantity,
		CreatedAt:       m.CreatedAt,
	}
}

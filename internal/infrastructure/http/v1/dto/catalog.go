package dto

import (
	"strings"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/shop"
	"stockwise/internal/domain/catalogs/warehouse"
	"stockwise/internal/domain/guard"
	"stockwise/internal/domain/locations"
)

// --- Warehouses and shops ---

// CreateLocationRequest registers a warehouse or a shop.
type CreateLocationRequest struct {
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// ToWarehouse converts DTO to entity.
func (r CreateLocationRequest) ToWarehouse() *warehouse.Warehouse {
	w := warehouse.NewWarehouse(strings.TrimSpace(r.Code), strings.TrimSpace(r.Name))
	w.Address = r.Address
	return w
}

// ToShop converts DTO to entity.
func (r CreateLocationRequest) ToShop() *shop.Shop {
	s := shop.NewShop(strings.TrimSpace(r.Code), strings.TrimSpace(r.Name))
	s.Address = r.Address
	return s
}

// LocationDetailsResponse represents a warehouse or shop.
type LocationDetailsResponse struct {
	BaseResponse
	Type     string  `json:"type"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Address  *string `json:"address,omitempty"`
	IsActive bool    `json:"isActive"`
}

// FromWarehouse converts entity to response DTO.
func FromWarehouse(w *warehouse.Warehouse) LocationDetailsResponse {
	return LocationDetailsResponse{
		BaseResponse: FromBase(w.BaseEntity),
		Type:         string(w.Ref().Kind()),
		Code:         w.Code,
		Name:         w.Name,
		Address:      w.Address,
		IsActive:     w.IsActive,
	}
}

// FromShop converts entity to response DTO.
func FromShop(s *shop.Shop) LocationDetailsResponse {
	return LocationDetailsResponse{
		BaseResponse: FromBase(s.BaseEntity),
		Type:         string(s.Ref().Kind()),
		Code:         s.Code,
		Name:         s.Name,
		Address:      s.Address,
		IsActive:     s.IsActive,
	}
}

// LocationSummaryResponse is one entry of the location directory.
type LocationSummaryResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FromResolved converts a registry entry.
func FromResolved(r locations.Resolved) LocationSummaryResponse {
	return LocationSummaryResponse{
		Type: string(r.Ref.Kind()),
		ID:   r.Ref.ID().String(),
		Name: r.Name,
	}
}

// --- Products ---

// CreateProductRequest registers a product with its opening stock.
type CreateProductRequest struct {
	Code              string `json:"code" binding:"required"`
	Name              string `json:"name" binding:"required"`
	OriginWarehouseID string `json:"originWarehouseId" binding:"required"`
	OpeningStock      int64  `json:"openingStock" binding:"min=0"`
}

// ToRequest converts DTO to guard request.
func (r CreateProductRequest) ToRequest() (guard.ProductRequest, error) {
	originID, err := id.Parse(r.OriginWarehouseID)
	if err != nil {
		return guard.ProductRequest{}, apperror.NewValidation("invalid originWarehouseId").
			WithDetail("field", "originWarehouseId")
	}
	return guard.ProductRequest{
		Code:              strings.TrimSpace(r.Code),
		Name:              strings.TrimSpace(r.Name),
		OriginWarehouseID: originID,
		OpeningStock:      r.OpeningStock,
	}, nil
}

// ProductResponse represents a product and its legacy counters.
type ProductResponse struct {
	BaseResponse
	Code              string `json:"code"`
	Name              string `json:"name"`
	OriginWarehouseID string `json:"originWarehouseId"`
	CountInStock      int64  `json:"countInStock"`
	DamagedQuantity   int64  `json:"damagedQuantity"`
	SoldOutQuantity   int64  `json:"soldOutQuantity"`
	ReturnedQuantity  int64  `json:"returnedQuantity"`
}

// FromProduct converts entity to response DTO.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		BaseResponse:      FromBase(p.BaseEntity),
		Code:              p.Code,
		Name:              p.Name,
		OriginWarehouseID: p.OriginWarehouseID.String(),
		CountInStock:      p.CountInStock,
		DamagedQuantity:   p.DamagedQuantity,
		SoldOutQuantity:   p.SoldOutQuantity,
		ReturnedQuantity:  p.ReturnedQuantity,
	}
}

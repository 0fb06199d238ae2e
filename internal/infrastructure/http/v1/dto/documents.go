package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/damage"
	"stockwise/internal/domain/documents/purchase"
	"stockwise/internal/domain/documents/sale"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/internal/domain/guard"
)

func parseProductID(raw, field string) (id.ID, error) {
	v, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid product id").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return v, nil
}

// --- Purchase ---

// CreatePurchaseRequest records incoming stock.
type CreatePurchaseRequest struct {
	ProductID   string          `json:"productId" binding:"required"`
	Location    LocationRequest `json:"location"`
	Quantity    int64           `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	SupplierRef string          `json:"supplierRef"`
	Comment     string          `json:"comment"`
}

// ToRequest converts DTO to guard request.
func (r CreatePurchaseRequest) ToRequest() (guard.PurchaseRequest, error) {
	productID, err := parseProductID(r.ProductID, "productId")
	if err != nil {
		return guard.PurchaseRequest{}, err
	}
	loc, err := r.Location.ToRef()
	if err != nil {
		return guard.PurchaseRequest{}, err
	}
	return guard.PurchaseRequest{
		ProductID:   productID,
		Location:    loc,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		SupplierRef: strings.TrimSpace(r.SupplierRef),
		Comment:     r.Comment,
	}, nil
}

// PurchaseResponse represents a purchase.
type PurchaseResponse struct {
	DocumentResponse
	ProductID   string            `json:"productId"`
	Quantity    int64             `json:"quantity"`
	Location    *LocationResponse `json:"location"`
	IsActive    bool              `json:"isActive"`
	UnitCost    decimal.Decimal   `json:"unitCost"`
	SupplierRef string            `json:"supplierRef,omitempty"`
}

// FromPurchase converts entity to response DTO.
func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		DocumentResponse: FromDocument(p.Document),
		ProductID:        p.ProductID.String(),
		Quantity:         p.Quantity,
		Location:         FromRef(p.Location),
		IsActive:         p.IsActive,
		UnitCost:         p.UnitCost,
		SupplierRef:      p.SupplierRef,
	}
}

// --- Transfer ---

// TransferItemRequest is one transfer line.
type TransferItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

// CreateTransferRequest moves stock between locations.
type CreateTransferRequest struct {
	Source      LocationRequest       `json:"source"`
	Destination LocationRequest       `json:"destination"`
	Items       []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
	Comment     string                `json:"comment"`
}

// ToRequest converts DTO to guard request.
func (r CreateTransferRequest) ToRequest() (guard.TransferRequest, error) {
	source, err := r.Source.ToRef()
	if err != nil {
		return guard.TransferRequest{}, err
	}
	destination, err := r.Destination.ToRef()
	if err != nil {
		return guard.TransferRequest{}, err
	}
	items := make([]transfer.Item, len(r.Items))
	for i, it := range r.Items {
		productID, err := parseProductID(it.ProductID, "items.productId")
		if err != nil {
			return guard.TransferRequest{}, err
		}
		items[i] = transfer.Item{ProductID: productID, Quantity: it.Quantity}
	}
	return guard.TransferRequest{
		Source:      source,
		Destination: destination,
		Items:       items,
		Comment:     r.Comment,
	}, nil
}

// TransferItemResponse is one transfer line.
type TransferItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// TransferResponse represents a transfer.
type TransferResponse struct {
	DocumentResponse
	Source      *LocationResponse      `json:"source"`
	Destination *LocationResponse      `json:"destination"`
	Items       []TransferItemResponse `json:"items"`
	Status      string                 `json:"status"`
}

// FromTransfer converts entity to response DTO.
func FromTransfer(t *transfer.Transfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = TransferItemResponse{ProductID: it.ProductID.String(), Quantity: it.Quantity}
	}
	return TransferResponse{
		DocumentResponse: FromDocument(t.Document),
		Source:           FromRef(t.Source),
		Destination:      FromRef(t.Destination),
		Items:            items,
		Status:           string(t.Status),
	}
}

// --- Damage ---

// CreateDamageRequest writes off damaged stock. Without a location the damage is
// attributed to the product's origin warehouse.
type CreateDamageRequest struct {
	ProductID string           `json:"productId" binding:"required"`
	Location  *LocationRequest `json:"location"`
	Quantity  int64            `json:"quantity" binding:"required"`
	Reason    string           `json:"reason"`
}

// ToRequest converts DTO to guard request.
func (r CreateDamageRequest) ToRequest() (guard.DamageRequest, error) {
	productID, err := parseProductID(r.ProductID, "productId")
	if err != nil {
		return guard.DamageRequest{}, err
	}
	var loc location.Ref
	if r.Location != nil {
		if loc, err = r.Location.ToRef(); err != nil {
			return guard.DamageRequest{}, err
		}
	}
	return guard.DamageRequest{
		ProductID: productID,
		Location:  loc,
		Quantity:  r.Quantity,
		Reason:    strings.TrimSpace(r.Reason),
	}, nil
}

// DamageResponse represents a damage.
type DamageResponse struct {
	DocumentResponse
	ProductID string            `json:"productId"`
	Quantity  int64             `json:"quantity"`
	Location  *LocationResponse `json:"location"`
	Reason    string            `json:"reason,omitempty"`
	Status    string            `json:"status"`
}

// FromDamage converts entity to response DTO.
func FromDamage(d *damage.Damage) DamageResponse {
	return DamageResponse{
		DocumentResponse: FromDocument(d.Document),
		ProductID:        d.ProductID.String(),
		Quantity:         d.Quantity,
		Location:         FromRef(d.Location),
		Reason:           d.Reason,
		Status:           string(d.Status),
	}
}

// --- Sale ---

// SaleItemRequest is one sale line.
type SaleItemRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateSaleRequest sells stock at a location.
type CreateSaleRequest struct {
	Location LocationRequest   `json:"location"`
	Items    []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Comment  string            `json:"comment"`
}

// ToRequest converts DTO to guard request.
func (r CreateSaleRequest) ToRequest() (guard.SaleRequest, error) {
	loc, err := r.Location.ToRef()
	if err != nil {
		return guard.SaleRequest{}, err
	}
	items := make([]sale.Item, len(r.Items))
	for i, it := range r.Items {
		productID, err := parseProductID(it.ProductID, "items.productId")
		if err != nil {
			return guard.SaleRequest{}, err
		}
		items[i] = sale.Item{ProductID: productID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return guard.SaleRequest{Location: loc, Items: items, Comment: r.Comment}, nil
}

// SaleItemResponse is one sale line.
type SaleItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleResponse represents a sale.
type SaleResponse struct {
	DocumentResponse
	Location *LocationResponse  `json:"location"`
	Items    []SaleItemResponse `json:"items"`
}

// FromSale converts entity to response DTO.
func FromSale(s *sale.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{ProductID: it.ProductID.String(), Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return SaleResponse{
		DocumentResponse: FromDocument(s.Document),
		Location:         FromRef(s.Location),
		Items:            items,
	}
}

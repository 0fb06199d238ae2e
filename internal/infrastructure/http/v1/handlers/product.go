package handlers

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/domain/availability"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/guard"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves product registration and stock queries.
type ProductHandler struct {
	*BaseHandler
	guard        *guard.Service
	availability *availability.Service
	products     product.Repository
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, g *guard.Service, a *availability.Service, products product.Repository) *ProductHandler {
	return &ProductHandler{BaseHandler: base, guard: g, availability: a, products: products}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.guard.RegisterProduct(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduct(p))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}
	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// Availability handles GET /products/:id/availability?locationType=&locationId=
func (h *ProductHandler) Availability(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}
	loc, ok := h.ParseLocationQuery(c)
	if !ok {
		return
	}

	n, err := h.availability.AvailableStock(c.Request.Context(), productID, loc)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AvailabilityResponse{
		ProductID:    productID.String(),
		LocationType: string(loc.Kind()),
		LocationID:   loc.ID().String(),
		Available:    n,
		Mode:         string(h.availability.Calculator().Mode()),
	})
}

// Locations handles GET /products/:id/locations
func (h *ProductHandler) Locations(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}
	list, err := h.availability.LocationsWithStock(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[dto.LocationStockResponse]{Items: dto.FromLocationStocks(list)})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/domain/locations"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// LocationHandler registers warehouses and shops.
type LocationHandler struct {
	*BaseHandler
	registry *locations.Registry
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(base *BaseHandler, registry *locations.Registry) *LocationHandler {
	return &LocationHandler{BaseHandler: base, registry: registry}
}

// CreateWarehouse handles POST /warehouses
func (h *LocationHandler) CreateWarehouse(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w := req.ToWarehouse()
	if err := h.registry.CreateWarehouse(c.Request.Context(), w); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromWarehouse(w))
}

// CreateShop handles POST /shops
func (h *LocationHandler) CreateShop(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s := req.ToShop()
	if err := h.registry.CreateShop(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromShop(s))
}

// List handles GET /locations: warehouses first, then shops.
func (h *LocationHandler) List(c *gin.Context) {
	all, err := h.registry.All(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	items := make([]dto.LocationSummaryResponse, len(all))
	for i, r := range all {
		items[i] = dto.FromResolved(r)
	}
	h.OK(c, dto.ListResponse[dto.LocationSummaryResponse]{Items: items})
}

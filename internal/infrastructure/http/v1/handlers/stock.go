package handlers

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for Stock register.
type StockHandler struct {
	*BaseHandler
	repo stock.Repository
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, repo stock.Repository) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		repo:        repo,
	}
}

// GetBalances handles GET /registers/stock/balances?productId=
func (h *StockHandler) GetBalances(c *gin.Context) {
	productID, ok := h.requiredID(c, "productId")
	if !ok {
		return
	}

	balances, err := h.repo.GetBalancesByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockBalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromStockBalance(b)
	}
	h.OK(c, dto.ListResponse[dto.StockBalanceResponse]{Items: items})
}

// GetMovements handles GET /registers/stock/movements?recorderId=
func (h *StockHandler) GetMovements(c *gin.Context) {
	recorderID, ok := h.requiredID(c, "recorderId")
	if !ok {
		return
	}

	movements, err := h.repo.GetMovementsByRecorder(c.Request.Context(), recorderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromStockMovement(m)
	}
	h.OK(c, dto.ListResponse[dto.StockMovementResponse]{Items: items})
}

func (h *StockHandler) requiredID(c *gin.Context, key string) (id.ID, bool) {
	raw := c.Query(key)
	if raw == "" {
		h.Error(c, apperror.NewValidation(key+" is required"))
		return id.Nil(), false
	}
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" format"))
		return id.Nil(), false
	}
	return v, true
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/domain/guard"
	"stockwise/internal/infrastructure/http/v1/dto"
)

// DocumentHandler serves the guarded ledger writes.
type DocumentHandler struct {
	*BaseHandler
	guard *guard.Service
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, g *guard.Service) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, guard: g}
}

// CreatePurchase handles POST /purchases
func (h *DocumentHandler) CreatePurchase(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}
	p, err := h.guard.RecordPurchase(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPurchase(p))
}

// DeactivatePurchase handles DELETE /purchases/:id
func (h *DocumentHandler) DeactivatePurchase(c *gin.Context) {
	purchaseID, ok := h.ParseID(c)
	if !ok {
		return
	}
	p, err := h.guard.DeactivatePurchase(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPurchase(p))
}

// CreateTransfer handles POST /transfers
func (h *DocumentHandler) CreateTransfer(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}
	t, err := h.guard.ValidateAndCreateTransfer(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromTransfer(t))
}

// CancelTransfer handles POST /transfers/:id/cancel
func (h *DocumentHandler) CancelTransfer(c *gin.Context) {
	transferID, ok := h.ParseID(c)
	if !ok {
		return
	}
	t, err := h.guard.CancelTransfer(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTransfer(t))
}

// CreateDamage handles POST /damages
func (h *DocumentHandler) CreateDamage(c *gin.Context) {
	var req dto.CreateDamageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}
	d, err := h.guard.ValidateAndCreateDamage(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromDamage(d))
}

// ApproveDamage handles POST /damages/:id/approve
func (h *DocumentHandler) ApproveDamage(c *gin.Context) {
	damageID, ok := h.ParseID(c)
	if !ok {
		return
	}
	d, err := h.guard.ApproveDamage(c.Request.Context(), damageID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDamage(d))
}

// RejectDamage handles POST /damages/:id/reject
func (h *DocumentHandler) RejectDamage(c *gin.Context) {
	damageID, ok := h.ParseID(c)
	if !ok {
		return
	}
	d, err := h.guard.RejectDamage(c.Request.Context(), damageID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDamage(d))
}

// CreateSale handles POST /sales
func (h *DocumentHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToRequest()
	if err != nil {
		h.Error(c, err)
		return
	}
	s, err := h.guard.CreateSale(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSale(s))
}

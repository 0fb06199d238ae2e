package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
	"stockwise/internal/domain/reports"
	"stockwise/internal/infrastructure/http/v1/dto"
)

const dateLayout = "2006-01-02"

// ReportHandler handles HTTP requests for reports.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// StockTurnover handles GET /reports/stock-turnover?from=&to=[&productId=][&locationType=&locationId=]
// Dates are YYYY-MM-DD or RFC 3339; a date-only "to" covers the whole day.
func (h *ReportHandler) StockTurnover(c *gin.Context) {
	from, ok := h.parseDate(c, "from", false)
	if !ok {
		return
	}
	to, ok := h.parseDate(c, "to", true)
	if !ok {
		return
	}

	filter := reports.StockTurnoverFilter{FromDate: from, ToDate: to}

	if raw := c.Query("productId"); raw != "" {
		pid, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &pid
	}
	if c.Query("locationType") != "" || c.Query("locationId") != "" {
		loc, ok := h.ParseLocationQuery(c)
		if !ok {
			return
		}
		filter.Location = loc
	}

	report, err := h.service.GetStockTurnover(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStockTurnover(report))
}

func (h *ReportHandler) parseDate(c *gin.Context, key string, endOfDay bool) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		h.Error(c, apperror.NewValidation(key+" is required"))
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" date").WithDetail("value", raw))
		return time.Time{}, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true
}

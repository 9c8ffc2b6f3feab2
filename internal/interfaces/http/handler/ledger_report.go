package handler

import (
	"time"

	ledgerapp "github.com/goldledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerReportHandler handles overdue and statistics reporting endpoints
type LedgerReportHandler struct {
	BaseHandler
	queryService *ledgerapp.LedgerQueryService
}

// NewLedgerReportHandler creates a new LedgerReportHandler
func NewLedgerReportHandler(queryService *ledgerapp.LedgerQueryService) *LedgerReportHandler {
	return &LedgerReportHandler{queryService: queryService}
}

// @Summary      List overdue installments
// @Description  Retrieve pending installments whose due date has passed, valued at the current gold price
// @Tags         reports
// @Produce      json
// @Param        invoice_id query string false "Restrict to a single invoice" format(uuid)
// @Param        as_of query string false "Reference date (RFC 3339), defaults to now"
// @Success      200 {object} dto.Response{data=[]ledgerapp.OverdueInstallmentResponse}
// @Security     BearerAuth
// @Router       /reports/overdue [get]
func (h *LedgerReportHandler) ListOverdue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var invoiceID *uuid.UUID
	if raw := c.Query("invoice_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid invoice ID")
			return
		}
		invoiceID = &id
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be in RFC 3339 format")
			return
		}
		asOf = parsed
	}

	overdue, err := h.queryService.ListOverdue(c.Request.Context(), tenantID, invoiceID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overdue)
}

// @Summary      Get ledger statistics
// @Description  Aggregate counts and weight totals across the tenant's installments
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=ledgerapp.LedgerStatisticsResponse}
// @Security     BearerAuth
// @Router       /reports/statistics [get]
func (h *LedgerReportHandler) GetStatistics(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	stats, err := h.queryService.GetStatistics(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

package handler

import (
	ledgerapp "github.com/goldledger/backend/internal/application/ledger"
	"github.com/goldledger/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentHandler handles installment plan and settlement API endpoints
type InstallmentHandler struct {
	BaseHandler
	planService       *ledgerapp.PlanService
	settlementService *ledgerapp.SettlementService
	queryService      *ledgerapp.LedgerQueryService
	metrics           *telemetry.LedgerMetrics
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(
	planService *ledgerapp.PlanService,
	settlementService *ledgerapp.SettlementService,
	queryService *ledgerapp.LedgerQueryService,
) *InstallmentHandler {
	return &InstallmentHandler{
		planService:       planService,
		settlementService: settlementService,
		queryService:      queryService,
	}
}

// SetMetrics enables domain metrics recording on write endpoints
func (h *InstallmentHandler) SetMetrics(m *telemetry.LedgerMetrics) {
	h.metrics = m
}

// @Summary      Create installment plan
// @Description  Split an invoice's outstanding gold weight into a schedule of installments
// @Tags         installments
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreatePlanRequest true "Plan definition"
// @Success      201 {object} dto.Response{data=ledgerapp.PlanResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /installment-plans [post]
func (h *InstallmentHandler) CreatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPlanCreated(c.Request.Context(), tenantID)
	}
	h.Created(c, plan)
}

// @Summary      Get installment plan
// @Description  Retrieve the full installment schedule for an invoice
// @Tags         installments
// @Produce      json
// @Param        invoice_id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.PlanResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{invoice_id}/installment-plan [get]
func (h *InstallmentHandler) GetPlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("invoice_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// @Summary      Get invoice ledger summary
// @Description  Roll up an invoice's installments into remaining weight and completion state
// @Tags         installments
// @Produce      json
// @Param        invoice_id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.InvoiceLedgerSummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{invoice_id}/ledger-summary [get]
func (h *InstallmentHandler) GetInvoiceSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("invoice_id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	summary, err := h.queryService.GetInvoiceSummary(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// @Summary      Get installment
// @Tags         installments
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.InstallmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /installments/{id} [get]
func (h *InstallmentHandler) GetInstallment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	installment, err := h.queryService.GetInstallment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, installment)
}

// @Summary      List installments
// @Description  Retrieve a paginated list of installments with optional filters
// @Tags         installments
// @Produce      json
// @Param        invoice_id query string false "Filter by invoice" format(uuid)
// @Param        status query string false "Filter by status" Enums(PENDING, PAID)
// @Param        due_from query string false "Due date lower bound (RFC 3339)"
// @Param        due_to query string false "Due date upper bound (RFC 3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ledgerapp.InstallmentResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /installments [get]
func (h *InstallmentHandler) ListInstallments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.InstallmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	installments, total, err := h.queryService.ListInstallments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, installments, total, filter.Page, filter.PageSize)
}

// @Summary      Settle installment payment
// @Description  Apply a monetary payment to an installment, converting the amount to gold weight at the current price
// @Tags         installments
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.SettlePaymentRequest true "Payment"
// @Success      200 {object} dto.Response{data=ledgerapp.SettlementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlements [post]
func (h *InstallmentHandler) SettlePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settlement, err := h.settlementService.SettlePayment(c.Request.Context(), tenantID, req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordSettlement(c.Request.Context(), tenantID, req.Method,
				telemetry.SettlementStatusFailed, decimal.Zero)
		}
		h.HandleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSettlement(c.Request.Context(), tenantID, req.Method,
			telemetry.SettlementStatusSuccess, settlement.WeightSettled)
	}
	h.Success(c, settlement)
}

package handler

import (
	"time"

	ledgerapp "github.com/goldledger/backend/internal/application/ledger"
	"github.com/goldledger/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GoldPriceHandler handles gold price oracle API endpoints
type GoldPriceHandler struct {
	BaseHandler
	priceService *ledgerapp.PriceService
	metrics      *telemetry.LedgerMetrics
}

// NewGoldPriceHandler creates a new GoldPriceHandler
func NewGoldPriceHandler(priceService *ledgerapp.PriceService) *GoldPriceHandler {
	return &GoldPriceHandler{priceService: priceService}
}

// SetMetrics enables domain metrics recording on write endpoints
func (h *GoldPriceHandler) SetMetrics(m *telemetry.LedgerMetrics) {
	h.metrics = m
}

// @Summary      Set gold price
// @Description  Record a new gold price and make it the tenant's current price
// @Tags         gold-prices
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.SetGoldPriceRequest true "Price record"
// @Success      201 {object} dto.Response{data=ledgerapp.GoldPriceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /gold-prices [post]
func (h *GoldPriceHandler) SetPrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.SetGoldPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price, err := h.priceService.SetPrice(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPriceSet(c.Request.Context(), tenantID, req.Source)
	}
	h.Created(c, price)
}

// @Summary      Get current gold price
// @Description  Retrieve the tenant's current gold price record
// @Tags         gold-prices
// @Produce      json
// @Success      200 {object} dto.Response{data=ledgerapp.GoldPriceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /gold-prices/current [get]
func (h *GoldPriceHandler) GetCurrentPrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	price, err := h.priceService.GetCurrentPrice(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, price)
}

// @Summary      Get gold price on a date
// @Description  Retrieve the price in effect at a historical date. Dates before the first record return 404.
// @Tags         gold-prices
// @Produce      json
// @Param        date query string true "Target date (RFC 3339)"
// @Success      200 {object} dto.Response{data=ledgerapp.GoldPriceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /gold-prices/on [get]
func (h *GoldPriceHandler) GetPriceOn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		h.BadRequest(c, "date query parameter is required")
		return
	}
	target, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		h.BadRequest(c, "date must be in RFC 3339 format")
		return
	}

	price, err := h.priceService.GetPriceOn(c.Request.Context(), tenantID, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, price)
}

// @Summary      List gold prices
// @Description  Retrieve a paginated price history for the tenant
// @Tags         gold-prices
// @Produce      json
// @Param        source query string false "Price source" Enums(MANUAL, MARKET_FEED)
// @Param        from query string false "Effective date range start (RFC 3339)"
// @Param        to query string false "Effective date range end (RFC 3339)"
// @Param        active_only query boolean false "Exclude deactivated records"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]ledgerapp.GoldPriceResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /gold-prices [get]
func (h *GoldPriceHandler) ListPrices(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter ledgerapp.GoldPriceListFilter
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

	prices, total, err := h.priceService.ListPrices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, prices, total, filter.Page, filter.PageSize)
}

// @Summary      Deactivate gold price
// @Description  Soft-deactivate a historical price record. The current record cannot be deactivated.
// @Tags         gold-prices
// @Produce      json
// @Param        id path string true "Price record ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /gold-prices/{id} [delete]
func (h *GoldPriceHandler) DeactivatePrice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid price record ID")
		return
	}

	if err := h.priceService.DeactivatePrice(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

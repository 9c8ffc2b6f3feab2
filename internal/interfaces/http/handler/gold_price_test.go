package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	ledgerapp "github.com/goldledger/backend/internal/application/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/interfaces/http/dto"
	"github.com/goldledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAuthedContext builds a test context carrying the tenant claim the way
// the JWT middleware would set it.
func newAuthedContext(t *testing.T, tenantID uuid.UUID, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.JWTTenantIDKey, tenantID.String())

	return c, w
}

func testGoldPrice(t *testing.T, tenantID uuid.UUID) *ledger.GoldPrice {
	t.Helper()
	price, err := ledger.NewGoldPrice(
		tenantID,
		decimal.NewFromInt(85),
		decimal.RequireFromString("18.000"),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ledger.PriceSourceManual,
	)
	require.NoError(t, err)
	return price
}

func TestGoldPriceHandler_SetPrice(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates price record", func(t *testing.T) {
		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("SetCurrent", mock.Anything, mock.AnythingOfType("*ledger.GoldPrice")).Return(nil)

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodPost, "/ledger/gold-prices", map[string]any{
			"price_per_gram": "85.50",
			"purity":         "18.000",
			"effective_at":   "2026-03-01T00:00:00Z",
			"source":         "MANUAL",
		})

		h.SetPrice(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, "85.5", data["price_per_gram"])
		assert.Equal(t, true, data["is_current"])
		priceRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		h := NewGoldPriceHandler(ledgerapp.NewPriceService(new(MockGoldPriceRepository)))

		c, w := newAuthedContext(t, tenantID, http.MethodPost, "/ledger/gold-prices", map[string]any{
			"price_per_gram": "85.50",
			"purity":         "18.000",
			"effective_at":   "2026-03-01T00:00:00Z",
			"source":         "GUESSWORK",
		})

		h.SetPrice(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires tenant", func(t *testing.T) {
		h := NewGoldPriceHandler(ledgerapp.NewPriceService(new(MockGoldPriceRepository)))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/ledger/gold-prices", bytes.NewReader(nil))

		h.SetPrice(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGoldPriceHandler_GetCurrentPrice(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns current price", func(t *testing.T) {
		price := testGoldPrice(t, tenantID)

		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("FindCurrent", mock.Anything, tenantID).Return(price, nil)

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/gold-prices/current", nil)

		h.GetCurrentPrice(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, price.ID.String(), data["id"])
	})

	t.Run("404 when no price set", func(t *testing.T) {
		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("FindCurrent", mock.Anything, tenantID).
			Return(nil, shared.NewNotFoundError("no gold price has been set for this tenant"))

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/gold-prices/current", nil)

		h.GetCurrentPrice(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
	})
}

func TestGoldPriceHandler_GetPriceOn(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns price in effect", func(t *testing.T) {
		price := testGoldPrice(t, tenantID)
		target := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("FindOn", mock.Anything, tenantID, target).Return(price, nil)

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodGet,
			"/ledger/gold-prices/on?date=2026-03-15T00:00:00Z", nil)

		h.GetPriceOn(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requires date parameter", func(t *testing.T) {
		h := NewGoldPriceHandler(ledgerapp.NewPriceService(new(MockGoldPriceRepository)))

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/gold-prices/on", nil)

		h.GetPriceOn(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		h := NewGoldPriceHandler(ledgerapp.NewPriceService(new(MockGoldPriceRepository)))

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/gold-prices/on?date=yesterday", nil)

		h.GetPriceOn(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGoldPriceHandler_ListPrices(t *testing.T) {
	tenantID := uuid.New()

	price := testGoldPrice(t, tenantID)

	priceRepo := new(MockGoldPriceRepository)
	priceRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("ledger.GoldPriceFilter")).
		Return([]ledger.GoldPrice{*price}, nil)
	priceRepo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("ledger.GoldPriceFilter")).
		Return(int64(1), nil)

	h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

	c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/gold-prices?page=1&page_size=10", nil)

	h.ListPrices(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, float64(1), float64(resp.Meta.Total))
}

func TestGoldPriceHandler_DeactivatePrice(t *testing.T) {
	tenantID := uuid.New()

	t.Run("rejects malformed id", func(t *testing.T) {
		h := NewGoldPriceHandler(ledgerapp.NewPriceService(new(MockGoldPriceRepository)))

		c, w := newAuthedContext(t, tenantID, http.MethodDelete, "/ledger/gold-prices/not-a-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		h.DeactivatePrice(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("422 for current record", func(t *testing.T) {
		price := testGoldPrice(t, tenantID)

		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("FindByIDForTenant", mock.Anything, tenantID, price.ID).Return(price, nil)

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodDelete, "/ledger/gold-prices/"+price.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: price.ID.String()}}

		h.DeactivatePrice(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("204 for historical record", func(t *testing.T) {
		price := testGoldPrice(t, tenantID)
		price.Supersede()

		priceRepo := new(MockGoldPriceRepository)
		priceRepo.On("FindByIDForTenant", mock.Anything, tenantID, price.ID).Return(price, nil)
		priceRepo.On("Save", mock.Anything, price).Return(nil)

		h := NewGoldPriceHandler(ledgerapp.NewPriceService(priceRepo))

		c, w := newAuthedContext(t, tenantID, http.MethodDelete, "/ledger/gold-prices/"+price.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: price.ID.String()}}

		h.DeactivatePrice(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
		priceRepo.AssertExpectations(t)
	})
}

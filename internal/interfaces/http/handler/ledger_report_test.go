package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	ledgerapp "github.com/goldledger/backend/internal/application/ledger"
	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	installmentRepo *MockInstallmentRepository
	priceRepo       *MockGoldPriceRepository
	handler         *LedgerReportHandler
}

func newReportFixture() *reportFixture {
	installmentRepo := new(MockInstallmentRepository)
	priceRepo := new(MockGoldPriceRepository)
	return &reportFixture{
		installmentRepo: installmentRepo,
		priceRepo:       priceRepo,
		handler:         NewLedgerReportHandler(ledgerapp.NewLedgerQueryService(installmentRepo, priceRepo)),
	}
}

func TestLedgerReportHandler_ListOverdue(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	dueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("lists overdue installments as of a date", func(t *testing.T) {
		f := newReportFixture()
		f.installmentRepo.On("FindOverdue", mock.Anything, tenantID, (*uuid.UUID)(nil), asOf).
			Return([]ledger.Installment{*testInstallment(t, tenantID, invoiceID, 1, "30", dueDate)}, nil)

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/reports/overdue?as_of=2026-03-15T00:00:00Z", nil)

		f.handler.ListOverdue(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                                    `json:"success"`
			Data    []ledgerapp.OverdueInstallmentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.True(t, resp.Data[0].IsOverdue)
		assert.Equal(t, 42, resp.Data[0].DaysOverdue)
		assert.True(t, resp.Data[0].AsOf.Equal(asOf))
		f.installmentRepo.AssertExpectations(t)
	})

	t.Run("scopes to one invoice", func(t *testing.T) {
		f := newReportFixture()
		f.installmentRepo.On("FindOverdue", mock.Anything, tenantID, mock.AnythingOfType("*uuid.UUID"), asOf).
			Return([]ledger.Installment{}, nil)

		c, w := newAuthedContext(t, tenantID, http.MethodGet,
			"/ledger/reports/overdue?invoice_id="+invoiceID.String()+"&as_of=2026-03-15T00:00:00Z", nil)

		f.handler.ListOverdue(c)

		assert.Equal(t, http.StatusOK, w.Code)
		f.installmentRepo.AssertExpectations(t)
	})

	t.Run("rejects malformed as_of", func(t *testing.T) {
		f := newReportFixture()

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/reports/overdue?as_of=yesterday", nil)

		f.handler.ListOverdue(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed invoice id", func(t *testing.T) {
		f := newReportFixture()

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/reports/overdue?invoice_id=not-a-uuid", nil)

		f.handler.ListOverdue(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLedgerReportHandler_GetStatistics(t *testing.T) {
	tenantID := uuid.New()

	stats := &ledger.LedgerStatistics{
		TotalInstallments:   10,
		PaidInstallments:    6,
		PendingInstallments: 4,
		InvoiceCount:        3,
		TotalWeightDue:      decimal.RequireFromString("400"),
		TotalWeightPaid:     decimal.RequireFromString("300"),
		OutstandingWeight:   decimal.RequireFromString("100"),
	}

	t.Run("values outstanding weight at the current price", func(t *testing.T) {
		f := newReportFixture()
		f.installmentRepo.On("Statistics", mock.Anything, tenantID).Return(stats, nil)
		f.installmentRepo.On("FindOverdue", mock.Anything, tenantID, (*uuid.UUID)(nil), mock.AnythingOfType("time.Time")).
			Return([]ledger.Installment{}, nil)
		f.priceRepo.On("FindCurrent", mock.Anything, tenantID).Return(testGoldPrice(t, tenantID), nil)

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/reports/statistics", nil)

		f.handler.GetStatistics(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                               `json:"success"`
			Data    ledgerapp.LedgerStatisticsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(10), resp.Data.TotalInstallments)
		assert.Equal(t, "0.75", resp.Data.CollectionRate.String())
		require.NotNil(t, resp.Data.OutstandingValue)
		// 100 g outstanding at 85 per gram
		assert.Equal(t, "8500", resp.Data.OutstandingValue.String())
		f.priceRepo.AssertExpectations(t)
	})

	t.Run("omits valuation without a current price", func(t *testing.T) {
		f := newReportFixture()
		f.installmentRepo.On("Statistics", mock.Anything, tenantID).Return(stats, nil)
		f.installmentRepo.On("FindOverdue", mock.Anything, tenantID, (*uuid.UUID)(nil), mock.AnythingOfType("time.Time")).
			Return([]ledger.Installment{}, nil)
		f.priceRepo.On("FindCurrent", mock.Anything, tenantID).
			Return(nil, shared.NewNotFoundError("no current gold price"))

		c, w := newAuthedContext(t, tenantID, http.MethodGet, "/ledger/reports/statistics", nil)

		f.handler.GetStatistics(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data ledgerapp.LedgerStatisticsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Nil(t, resp.Data.CurrentPricePerGram)
		assert.Nil(t, resp.Data.OutstandingValue)
	})
}

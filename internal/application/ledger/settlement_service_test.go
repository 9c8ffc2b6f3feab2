package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestInstallment(t *testing.T, tenantID uuid.UUID, weightDue string, dueDate time.Time) *ledger.Installment {
	t.Helper()
	inst, err := ledger.NewInstallment(tenantID, uuid.New(), 1,
		valueobject.MustNewWeightFromString(weightDue), dueDate)
	require.NoError(t, err)
	return inst
}

func newTestPrice(t *testing.T, tenantID uuid.UUID, pricePerGram string, effectiveAt time.Time) *ledger.GoldPrice {
	t.Helper()
	p, err := ledger.NewGoldPrice(tenantID,
		decimal.RequireFromString(pricePerGram),
		decimal.RequireFromString("18"),
		effectiveAt, ledger.PriceSourceManual)
	require.NoError(t, err)
	return p
}

func TestSettlementService_SettlePayment(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	paidAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	dueDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("settles payment at the price on the payment date", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		inst := newTestInstallment(t, tenantID, "12.500", dueDate)
		price := newTestPrice(t, tenantID, "2000000", paidAt.Add(-24*time.Hour))

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(price, nil)
		installmentRepo.On("SaveWithLock", ctx, inst).Return(nil)
		installmentRepo.On("FindByInvoice", ctx, tenantID, inst.InvoiceID).Return([]ledger.Installment{*inst}, nil)
		invoiceSvc.On("UpdateRemainingWeight", ctx, tenantID, inst.InvoiceID,
			mock.MatchedBy(func(remaining decimal.Decimal) bool {
				return remaining.Equal(decimal.RequireFromString("10"))
			})).Return(nil)

		resp, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
			Method:        "BANK_TRANSFER",
			Reference:     "TRX-100",
		})
		require.NoError(t, err)

		// 5,000,000 / 2,000,000 = 2.500 g
		assert.True(t, resp.WeightSettled.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, resp.PricePerGram.Equal(decimal.RequireFromString("2000000")))
		assert.Equal(t, price.ID, resp.PriceRecordID)
		assert.Equal(t, "PENDING", resp.Installment.Status)
		assert.True(t, resp.Installment.RemainingWeight.Equal(decimal.RequireFromString("10")))

		installmentRepo.AssertExpectations(t)
		priceRepo.AssertExpectations(t)
		invoiceSvc.AssertExpectations(t)
	})

	t.Run("fails when no price is in effect on the payment date", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		inst := newTestInstallment(t, tenantID, "12.500", dueDate)

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(nil,
			shared.NewNotFoundError("no gold price is in effect on the requested date"))

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
		})
		assert.True(t, shared.IsNotFoundError(err))
		installmentRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects overpayment beyond tolerance without saving", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		inst := newTestInstallment(t, tenantID, "2.500", dueDate)
		price := newTestPrice(t, tenantID, "2000000", paidAt.Add(-24*time.Hour))

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(price, nil)

		// 6,000,000 / 2,000,000 = 3.000 g against 2.500 g remaining
		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("6000000"),
			PaidAt:        paidAt,
		})
		assert.True(t, shared.IsBusinessError(err))
		installmentRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		invoiceSvc.AssertNotCalled(t, "UpdateRemainingWeight", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("full payment transitions to PAID and zeroes the invoice remainder", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		inst := newTestInstallment(t, tenantID, "2.500", dueDate)
		price := newTestPrice(t, tenantID, "2000000", paidAt.Add(-24*time.Hour))

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(price, nil)
		installmentRepo.On("SaveWithLock", ctx, inst).Return(nil)
		installmentRepo.On("FindByInvoice", ctx, tenantID, inst.InvoiceID).Return([]ledger.Installment{*inst}, nil)
		invoiceSvc.On("UpdateRemainingWeight", ctx, tenantID, inst.InvoiceID,
			mock.MatchedBy(func(remaining decimal.Decimal) bool {
				return remaining.IsZero()
			})).Return(nil)

		resp, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
		})
		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Installment.Status)
		assert.NotNil(t, resp.Installment.PaidAt)
		invoiceSvc.AssertExpectations(t)
	})

	t.Run("propagates optimistic lock conflicts", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		inst := newTestInstallment(t, tenantID, "12.500", dueDate)
		price := newTestPrice(t, tenantID, "2000000", paidAt.Add(-24*time.Hour))

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(price, nil)
		installmentRepo.On("SaveWithLock", ctx, inst).Return(
			shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "installment was modified by another process"))

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
		})
		assert.True(t, shared.IsConflictError(err))
		invoiceSvc.AssertNotCalled(t, "UpdateRemainingWeight", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate payment reference", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		store := new(MockIdempotencyStore)
		svc := NewSettlementService(
			NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc),
			WithIdempotencyStore(store),
		)

		inst := newTestInstallment(t, tenantID, "12.500", dueDate)
		store.On("IsProcessed", ctx, mock.AnythingOfType("string")).Return(true, nil)

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
			Reference:     "TRX-100",
		})
		assert.True(t, shared.IsConflictError(err))
		installmentRepo.AssertNotCalled(t, "FindByIDForTenantLocked", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("marks the reference processed after a successful settlement", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		store := new(MockIdempotencyStore)
		svc := NewSettlementService(
			NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc),
			WithIdempotencyStore(store),
		)

		inst := newTestInstallment(t, tenantID, "12.500", dueDate)
		price := newTestPrice(t, tenantID, "2000000", paidAt.Add(-24*time.Hour))

		store.On("IsProcessed", ctx, mock.AnythingOfType("string")).Return(false, nil)
		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, inst.ID).Return(inst, nil)
		priceRepo.On("FindOn", ctx, tenantID, paidAt).Return(price, nil)
		installmentRepo.On("SaveWithLock", ctx, inst).Return(nil)
		installmentRepo.On("FindByInvoice", ctx, tenantID, inst.InvoiceID).Return([]ledger.Installment{*inst}, nil)
		invoiceSvc.On("UpdateRemainingWeight", ctx, tenantID, inst.InvoiceID, mock.Anything).Return(nil)
		store.On("MarkProcessed", ctx, mock.AnythingOfType("string"), settlementIdempotencyTTL).Return(true, nil)

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: inst.ID,
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
			Reference:     "TRX-101",
		})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("rejects non-positive amounts before touching storage", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: uuid.New(),
			Amount:        decimal.Zero,
			PaidAt:        paidAt,
		})
		assert.Error(t, err)
		installmentRepo.AssertNotCalled(t, "FindByIDForTenantLocked", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		installmentRepo := new(MockInstallmentRepository)
		priceRepo := new(MockGoldPriceRepository)
		invoiceSvc := new(MockInvoiceService)
		svc := NewSettlementService(NewNoOpTransactionScope(installmentRepo, priceRepo, invoiceSvc))

		installmentRepo.On("FindByIDForTenantLocked", ctx, tenantID, mock.AnythingOfType("uuid.UUID")).
			Return(nil, errors.New("database error"))

		_, err := svc.SettlePayment(ctx, tenantID, SettlePaymentRequest{
			InstallmentID: uuid.New(),
			Amount:        decimal.RequireFromString("5000000"),
			PaidAt:        paidAt,
		})
		assert.Error(t, err)
	})
}

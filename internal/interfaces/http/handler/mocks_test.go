package handler

import (
	"context"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/ledger/acl"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockGoldPriceRepository is a mock implementation of ledger.GoldPriceRepository
type MockGoldPriceRepository struct {
	mock.Mock
}

func (m *MockGoldPriceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.GoldPrice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GoldPrice), args.Error(1)
}

func (m *MockGoldPriceRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*ledger.GoldPrice, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GoldPrice), args.Error(1)
}

func (m *MockGoldPriceRepository) FindOn(ctx context.Context, tenantID uuid.UUID, target time.Time) (*ledger.GoldPrice, error) {
	args := m.Called(ctx, tenantID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GoldPrice), args.Error(1)
}

func (m *MockGoldPriceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.GoldPriceFilter) ([]ledger.GoldPrice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.GoldPrice), args.Error(1)
}

func (m *MockGoldPriceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.GoldPriceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGoldPriceRepository) SetCurrent(ctx context.Context, price *ledger.GoldPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

func (m *MockGoldPriceRepository) Save(ctx context.Context, price *ledger.GoldPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

// MockInstallmentRepository is a mock implementation of ledger.InstallmentRepository
type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.Installment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) ([]ledger.Installment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, asOf time.Time) ([]ledger.Installment, error) {
	args := m.Called(ctx, tenantID, invoiceID, asOf)
	return args.Get(0).([]ledger.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ExistsForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, installments []*ledger.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) SaveWithLock(ctx context.Context, installment *ledger.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockInstallmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInstallmentRepository) Statistics(ctx context.Context, tenantID uuid.UUID) (*ledger.LedgerStatistics, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.LedgerStatistics), args.Error(1)
}

// MockInvoiceService is a mock implementation of acl.InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoiceRef(ctx context.Context, tenantID, invoiceID uuid.UUID) (acl.InvoiceRef, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).(acl.InvoiceRef), args.Error(1)
}

func (m *MockInvoiceService) MarkInstallmentBacked(ctx context.Context, tenantID, invoiceID uuid.UUID, totalWeight decimal.Decimal) error {
	args := m.Called(ctx, tenantID, invoiceID, totalWeight)
	return args.Error(0)
}

func (m *MockInvoiceService) UpdateRemainingWeight(ctx context.Context, tenantID, invoiceID uuid.UUID, remaining decimal.Decimal) error {
	args := m.Called(ctx, tenantID, invoiceID, remaining)
	return args.Error(0)
}

package persistence

import (
	"context"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerMetricsReader serves the aggregate reads behind periodic gauge
// collection. Queries go straight to SQL; no aggregates are loaded.
type LedgerMetricsReader struct {
	db *gorm.DB
}

// NewLedgerMetricsReader creates a new LedgerMetricsReader
func NewLedgerMetricsReader(db *gorm.DB) *LedgerMetricsReader {
	return &LedgerMetricsReader{db: db}
}

// GetActiveTenantIDs returns the tenants that currently hold installments
func (r *LedgerMetricsReader) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("installments").
		Distinct("tenant_id").
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetOutstandingWeight returns the tenant's total unsettled weight in grams
func (r *LedgerMetricsReader) GetOutstandingWeight(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var raw string
	err := r.db.WithContext(ctx).
		Table("installments").
		Select("COALESCE(SUM(weight_due - weight_paid), 0)").
		Where("tenant_id = ? AND status = ?", tenantID, string(ledger.InstallmentStatusPending)).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

// GetOverdueCount returns the number of overdue installments for a tenant
func (r *LedgerMetricsReader) GetOverdueCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("installments").
		Where("tenant_id = ? AND due_date < NOW() AND status = ?", tenantID, string(ledger.InstallmentStatusPending)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

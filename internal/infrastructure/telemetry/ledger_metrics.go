package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics provides business metrics for the gold installment ledger.
// It tracks price updates, plan creation, settlement activity, and the
// outstanding weight across the tenant base.
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	priceSetTotal       *Counter
	planCreatedTotal    *Counter
	settlementTotal     *Counter
	settledMilligrams   *Counter
	outstandingWeight   *FloatGauge
	overdueInstallments *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	provider LedgerMetricsProvider
}

// LedgerMetricsProvider provides ledger data for periodic gauge collection.
// The interface lets the telemetry layer query ledger state without
// depending on the ledger domain directly.
type LedgerMetricsProvider interface {
	// GetOutstandingWeight returns the tenant's total unsettled weight in grams
	GetOutstandingWeight(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)

	// GetOverdueCount returns the number of overdue installments for a tenant
	GetOverdueCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider LedgerMetricsProvider
}

// NewLedgerMetrics creates a new LedgerMetrics instance.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	var err error

	lm.priceSetTotal, err = NewCounter(
		cfg.Meter,
		"ledger_gold_price_set_total",
		"Total number of gold price updates",
		"{updates}",
	)
	if err != nil {
		return nil, err
	}

	lm.planCreatedTotal, err = NewCounter(
		cfg.Meter,
		"ledger_plan_created_total",
		"Total number of installment plans created",
		"{plans}",
	)
	if err != nil {
		return nil, err
	}

	lm.settlementTotal, err = NewCounter(
		cfg.Meter,
		"ledger_settlement_total",
		"Total number of settlement attempts",
		"{settlements}",
	)
	if err != nil {
		return nil, err
	}

	lm.settledMilligrams, err = NewCounter(
		cfg.Meter,
		"ledger_settled_weight_milligrams_total",
		"Total settled weight in milligrams",
		"{mg}",
	)
	if err != nil {
		return nil, err
	}

	lm.outstandingWeight, err = NewFloatGauge(
		cfg.Meter,
		"ledger_outstanding_weight_grams",
		"Current unsettled weight in grams",
		"{g}",
	)
	if err != nil {
		return nil, err
	}

	lm.overdueInstallments, err = NewGauge(
		cfg.Meter,
		"ledger_overdue_installments",
		"Number of installments past due and not fully paid",
		"{installments}",
	)
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordPriceSet records a gold price update.
func (lm *LedgerMetrics) RecordPriceSet(ctx context.Context, tenantID uuid.UUID, source string) {
	lm.priceSetTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPriceSource.String(source),
	)
}

// RecordPlanCreated records an installment plan creation.
func (lm *LedgerMetrics) RecordPlanCreated(ctx context.Context, tenantID uuid.UUID) {
	lm.planCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// SettlementStatus represents the outcome of a settlement for metrics labeling.
type SettlementStatus string

const (
	SettlementStatusSuccess SettlementStatus = "success"
	SettlementStatusFailed  SettlementStatus = "failed"
)

// RecordSettlement records a settlement attempt and, on success, the weight
// settled. Weight is recorded in milligrams so the counter stays integral.
func (lm *LedgerMetrics) RecordSettlement(ctx context.Context, tenantID uuid.UUID, method string, status SettlementStatus, settledGrams decimal.Decimal) {
	lm.settlementTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(string(status)),
	)
	if status == SettlementStatusSuccess {
		mg := settledGrams.Mul(decimal.NewFromInt(1000)).IntPart()
		lm.settledMilligrams.Add(ctx, mg,
			AttrTenantID.String(tenantID.String()),
		)
	}
}

// StartPeriodicCollection starts periodic collection of the gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go lm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (lm *LedgerMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.collectGauges(ctx, tenants)

	for {
		select {
		case <-lm.stopChan:
			lm.logger.Info("Stopping periodic ledger metrics collection")
			return
		case <-ctx.Done():
			lm.logger.Info("Context cancelled, stopping periodic ledger metrics collection")
			return
		case <-ticker.C:
			lm.collectGauges(ctx, tenants)
		}
	}
}

func (lm *LedgerMetrics) collectGauges(ctx context.Context, tenants TenantProvider) {
	if lm.provider == nil {
		return
	}

	tenantIDs, err := tenants.GetActiveTenantIDs(ctx)
	if err != nil {
		lm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		outstanding, err := lm.provider.GetOutstandingWeight(ctx, tenantID)
		if err != nil {
			lm.logger.Warn("Failed to get outstanding weight for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			lm.outstandingWeight.Record(ctx, outstanding.InexactFloat64(),
				AttrTenantID.String(tenantID.String()),
			)
		}

		overdue, err := lm.provider.GetOverdueCount(ctx, tenantID)
		if err != nil {
			lm.logger.Warn("Failed to get overdue count for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			lm.overdueInstallments.Record(ctx, overdue,
				AttrTenantID.String(tenantID.String()),
			)
		}
	}
}

// Stop stops the periodic collection.
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

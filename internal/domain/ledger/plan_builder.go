package ledger

import (
	"fmt"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger/acl"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan size bounds
const (
	MinInstallmentCount = 2
	MaxInstallmentCount = 60
)

// PlanBuilder is a domain service that splits a gold-denominated obligation
// into installments.
//
// The split rule is deliberate and auditable: the per-installment share is
// the total divided by the count, quantized to milligram precision with
// round-half-up, assigned to installments 1..N-1; the final installment
// receives the exact remainder, so the plan's weights always sum to the
// total with no rounding drift.
type PlanBuilder struct{}

// NewPlanBuilder creates a new PlanBuilder
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{}
}

// Build materializes the installments for an invoice. Due dates are
// start_date + k*interval_days for the k-th installment (1-based), so the
// first installment falls due one interval after the plan start.
//
// The HasInstallments check here is advisory; the storage layer's uniqueness
// constraint on (tenant, invoice, sequence) is the authoritative guard
// against a duplicate plan under concurrent retries.
func (b *PlanBuilder) Build(
	tenantID uuid.UUID,
	invoice acl.InvoiceRef,
	count int,
	startDate time.Time,
	intervalDays int,
) ([]*Installment, error) {
	if !invoice.IsGold() {
		return nil, shared.NewValidationError("installment plans can only be created for gold invoices")
	}
	if count < MinInstallmentCount || count > MaxInstallmentCount {
		return nil, shared.NewValidationError(fmt.Sprintf(
			"installment count must be between %d and %d", MinInstallmentCount, MaxInstallmentCount))
	}
	if intervalDays <= 0 {
		return nil, shared.NewValidationError("interval days must be positive")
	}
	if startDate.IsZero() {
		return nil, shared.NewValidationError("start date cannot be empty")
	}
	if invoice.TotalWeightDue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("invoice total weight must be positive")
	}
	if invoice.HasInstallments {
		return nil, shared.NewBusinessError("invoice already has installments")
	}

	total := invoice.TotalWeightDue
	share := total.Div(decimal.NewFromInt(int64(count))).Round(valueobject.WeightPrecision)
	// The last installment absorbs all rounding error so the plan sums to
	// the total exactly.
	last := total.Sub(share.Mul(decimal.NewFromInt(int64(count - 1))))

	installments := make([]*Installment, 0, count)
	for k := 1; k <= count; k++ {
		weight := share
		if k == count {
			weight = last
		}
		w, err := valueobject.NewWeight(weight)
		if err != nil {
			return nil, shared.NewValidationError("total weight is too small to split into this many installments")
		}
		if !w.IsPositive() {
			return nil, shared.NewValidationError("total weight is too small to split into this many installments")
		}

		dueDate := startDate.AddDate(0, 0, k*intervalDays)
		inst, err := NewInstallment(tenantID, invoice.ID.UUID(), k, w, dueDate)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}

	installments[0].AddDomainEvent(NewInstallmentPlanCreatedEvent(
		tenantID, invoice.ID.UUID(), count, total, installments[0].DueDate))

	return installments, nil
}

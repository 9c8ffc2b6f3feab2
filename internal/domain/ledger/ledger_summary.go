package ledger

import (
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerSummary is the weight rollup over one invoice's installments.
// It is the source of truth for how much gold is still owed on an invoice.
type LedgerSummary struct {
	TotalWeight     decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingWeight decimal.Decimal
	TotalCount      int
	PendingCount    int
	PaidCount       int
	IsFullyPaid     bool
}

// Summarize rolls up installments into a ledger summary. Remaining weight is
// the sum of per-installment remainders (never negative). IsFullyPaid is true
// iff the remaining weight is within the settlement tolerance, so a ledger
// short by less than a milligram counts as settled.
func Summarize(installments []Installment) LedgerSummary {
	summary := LedgerSummary{
		TotalWeight:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		RemainingWeight: decimal.Zero,
		TotalCount:      len(installments),
	}

	for i := range installments {
		inst := &installments[i]
		summary.TotalWeight = summary.TotalWeight.Add(inst.WeightDue)
		summary.TotalPaid = summary.TotalPaid.Add(inst.WeightPaid)
		summary.RemainingWeight = summary.RemainingWeight.Add(inst.RemainingWeight().Grams())
		if inst.Status == InstallmentStatusPaid {
			summary.PaidCount++
		} else {
			summary.PendingCount++
		}
	}

	summary.IsFullyPaid = summary.TotalCount > 0 &&
		summary.RemainingWeight.LessThanOrEqual(valueobject.WeightTolerance())

	return summary
}

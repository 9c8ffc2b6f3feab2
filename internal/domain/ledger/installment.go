package ledger

import (
	"fmt"
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentType discriminates what an installment is denominated in
type InstallmentType string

const (
	InstallmentTypeGold     InstallmentType = "GOLD"     // Debt denominated in grams of gold
	InstallmentTypeCurrency InstallmentType = "CURRENCY" // Debt denominated in currency
)

// IsValid checks if the installment type is valid
func (t InstallmentType) IsValid() bool {
	return t == InstallmentTypeGold || t == InstallmentTypeCurrency
}

// InstallmentStatus represents the stored status of an installment.
//
// PARTIAL and OVERDUE are deliberately not stored states: partial progress is
// derived from weight_paid > 0, and overdue is derived from the due date at
// read time, so a late payment always remains possible.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING" // Outstanding weight above tolerance
	InstallmentStatusPaid    InstallmentStatus = "PAID"    // Remaining weight within tolerance
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusPaid
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one slice of a gold-denominated obligation. The weight due
// is fixed at plan creation; payments made in currency are converted to
// settled weight at the gold price in effect on the payment date, so the
// same installment can be worth different currency amounts on different days
// while the weight owed stays exact.
type Installment struct {
	shared.TenantAggregateRoot
	InvoiceID          uuid.UUID         `json:"invoice_id"`
	Sequence           int               `json:"sequence"` // 1-based, unique within the invoice
	Type               InstallmentType   `json:"type"`
	WeightDue          decimal.Decimal   `json:"weight_due"`  // grams
	WeightPaid         decimal.Decimal   `json:"weight_paid"` // grams, monotonically non-decreasing
	AmountPaid         decimal.Decimal   `json:"amount_paid"` // currency paid across all settlements
	PriceAtLastPayment *decimal.Decimal  `json:"price_at_last_payment,omitempty"`
	DueDate            time.Time         `json:"due_date"`
	Status             InstallmentStatus `json:"status"`
	PaymentMethod      string            `json:"payment_method,omitempty"`
	PaymentReference   string            `json:"payment_reference,omitempty"`
	PaymentNotes       string            `json:"payment_notes,omitempty"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
}

// NewInstallment creates a new gold installment. Installments are created in
// batches by the plan builder and never re-created for the same invoice.
func NewInstallment(
	tenantID uuid.UUID,
	invoiceID uuid.UUID,
	sequence int,
	weightDue valueobject.Weight,
	dueDate time.Time,
) (*Installment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("invoice ID cannot be empty")
	}
	if sequence < 1 {
		return nil, shared.NewValidationError("installment sequence must be 1-based")
	}
	if !weightDue.IsPositive() {
		return nil, shared.NewValidationError("installment weight due must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("due date cannot be empty")
	}

	return &Installment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		Sequence:            sequence,
		Type:                InstallmentTypeGold,
		WeightDue:           weightDue.Grams(),
		WeightPaid:          decimal.Zero,
		AmountPaid:          decimal.Zero,
		DueDate:             dueDate,
		Status:              InstallmentStatusPending,
	}, nil
}

// ApplyPayment settles a currency payment against the installment at the
// given price per gram (the price in effect on the payment date, resolved by
// the caller through the price oracle). It returns the weight settled by
// this payment.
//
// Settled weight is quantized to milligram precision. A payment that would
// settle more weight than remains, beyond the settlement tolerance, is
// rejected rather than clamped or credited forward; excess inside the
// tolerance is absorbed so weight_paid never exceeds weight_due.
func (i *Installment) ApplyPayment(
	amount valueobject.Money,
	pricePerGram decimal.Decimal,
	paidAt time.Time,
	method, reference, notes string,
) (valueobject.Weight, error) {
	if i.Type != InstallmentTypeGold {
		return valueobject.ZeroWeight(), shared.NewDomainError("INVALID_STATE",
			"Payments can only be settled against gold installments")
	}
	if !amount.IsPositive() {
		return valueobject.ZeroWeight(), shared.NewValidationError("payment amount must be positive")
	}
	if pricePerGram.LessThanOrEqual(decimal.Zero) {
		return valueobject.ZeroWeight(), shared.NewValidationError("price per gram must be positive")
	}

	settled := amount.Amount().Div(pricePerGram).Round(valueobject.WeightPrecision)
	remaining := i.WeightDue.Sub(i.WeightPaid)

	if settled.Sub(remaining).GreaterThan(valueobject.WeightTolerance()) {
		return valueobject.ZeroWeight(), shared.NewBusinessError(fmt.Sprintf(
			"payment settles %s g but only %s g remain on installment %d",
			settled.StringFixed(valueobject.WeightPrecision),
			remaining.StringFixed(valueobject.WeightPrecision),
			i.Sequence))
	}
	// Excess within tolerance is absorbed so weight_paid never exceeds weight_due.
	if settled.GreaterThan(remaining) {
		settled = remaining
	}

	i.WeightPaid = i.WeightPaid.Add(settled)
	i.AmountPaid = i.AmountPaid.Add(amount.Amount())
	price := pricePerGram
	i.PriceAtLastPayment = &price
	i.PaymentMethod = method
	i.PaymentReference = reference
	i.PaymentNotes = notes

	weightSettled := valueobject.MustNewWeight(settled)

	if i.WeightDue.Sub(i.WeightPaid).LessThanOrEqual(valueobject.WeightTolerance()) {
		i.Status = InstallmentStatusPaid
		at := paidAt
		i.PaidAt = &at
		i.AddDomainEvent(NewInstallmentPaidEvent(i))
	} else {
		i.AddDomainEvent(NewInstallmentPaymentSettledEvent(i, amount.Amount(), pricePerGram, weightSettled.Grams()))
	}

	i.Touch()
	i.IncrementVersion()

	return weightSettled, nil
}

// RemainingWeight returns the weight still owed on this installment.
func (i *Installment) RemainingWeight() valueobject.Weight {
	remaining := i.WeightDue.Sub(i.WeightPaid)
	if remaining.IsNegative() {
		return valueobject.ZeroWeight()
	}
	return valueobject.MustNewWeight(remaining)
}

// IsFullyPaid returns true if the remaining weight is within tolerance.
func (i *Installment) IsFullyPaid() bool {
	return i.WeightDue.Sub(i.WeightPaid).LessThanOrEqual(valueobject.WeightTolerance())
}

// IsPartial returns true if the installment has partial progress.
// PARTIAL is a read-time view, not a stored status.
func (i *Installment) IsPartial() bool {
	return i.WeightPaid.IsPositive() && !i.IsFullyPaid()
}

// IsOverdue returns true if the due date has passed and the installment is
// not fully paid. Overdue is informational; it never blocks settlement.
func (i *Installment) IsOverdue() bool {
	return i.IsOverdueAt(time.Now())
}

// IsOverdueAt reports whether the installment is overdue as of the given
// reference time. Overdue is derived at read time and never stored, so the
// classification is always consistent with the reference time asked for.
func (i *Installment) IsOverdueAt(asOf time.Time) bool {
	return asOf.After(i.DueDate) && !i.IsFullyPaid()
}

// DaysOverdue returns the number of whole days past due (0 if not overdue).
func (i *Installment) DaysOverdue() int {
	return i.DaysOverdueAt(time.Now())
}

// DaysOverdueAt returns the number of whole days past due as of the given
// reference time.
func (i *Installment) DaysOverdueAt(asOf time.Time) int {
	if !i.IsOverdueAt(asOf) {
		return 0
	}
	return int(asOf.Sub(i.DueDate).Hours() / 24)
}

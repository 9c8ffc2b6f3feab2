package ledger

import (
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentPlanCreatedEvent is raised once when a plan is materialized for an invoice
type InstallmentPlanCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InstallmentCount int             `json:"installment_count"`
	TotalWeight      decimal.Decimal `json:"total_weight"`
	FirstDueDate     time.Time       `json:"first_due_date"`
}

// EventType returns the event type name
func (e *InstallmentPlanCreatedEvent) EventType() string {
	return "InstallmentPlanCreated"
}

// NewInstallmentPlanCreatedEvent creates a new InstallmentPlanCreatedEvent
func NewInstallmentPlanCreatedEvent(tenantID, invoiceID uuid.UUID, count int, totalWeight decimal.Decimal, firstDue time.Time) *InstallmentPlanCreatedEvent {
	return &InstallmentPlanCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InstallmentPlanCreated", "Installment", invoiceID, tenantID),
		InvoiceID:        invoiceID,
		InstallmentCount: count,
		TotalWeight:      totalWeight,
		FirstDueDate:     firstDue,
	}
}

// InstallmentPaymentSettledEvent is raised when a payment partially settles an installment
type InstallmentPaymentSettledEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID       `json:"installment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Sequence      int             `json:"sequence"`
	Amount        decimal.Decimal `json:"amount"`
	PricePerGram  decimal.Decimal `json:"price_per_gram"`
	WeightSettled decimal.Decimal `json:"weight_settled"`
	WeightPaid    decimal.Decimal `json:"weight_paid"`
	WeightDue     decimal.Decimal `json:"weight_due"`
}

// EventType returns the event type name
func (e *InstallmentPaymentSettledEvent) EventType() string {
	return "InstallmentPaymentSettled"
}

// NewInstallmentPaymentSettledEvent creates a new InstallmentPaymentSettledEvent
func NewInstallmentPaymentSettledEvent(i *Installment, amount, pricePerGram, weightSettled decimal.Decimal) *InstallmentPaymentSettledEvent {
	return &InstallmentPaymentSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPaymentSettled", "Installment", i.ID, i.TenantID),
		InstallmentID:   i.ID,
		InvoiceID:       i.InvoiceID,
		Sequence:        i.Sequence,
		Amount:          amount,
		PricePerGram:    pricePerGram,
		WeightSettled:   weightSettled,
		WeightPaid:      i.WeightPaid,
		WeightDue:       i.WeightDue,
	}
}

// InstallmentPaidEvent is raised when an installment becomes fully paid
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID       `json:"installment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Sequence      int             `json:"sequence"`
	WeightDue     decimal.Decimal `json:"weight_due"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InstallmentPaidEvent) EventType() string {
	return "InstallmentPaid"
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(i *Installment) *InstallmentPaidEvent {
	paidAt := time.Now()
	if i.PaidAt != nil {
		paidAt = *i.PaidAt
	}
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPaid", "Installment", i.ID, i.TenantID),
		InstallmentID:   i.ID,
		InvoiceID:       i.InvoiceID,
		Sequence:        i.Sequence,
		WeightDue:       i.WeightDue,
		AmountPaid:      i.AmountPaid,
		PaidAt:          paidAt,
	}
}

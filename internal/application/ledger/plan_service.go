package ledger

import (
	"context"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanService creates installment plans for gold invoices
type PlanService struct {
	txScope TransactionScope
	builder *ledger.PlanBuilder
}

// NewPlanService creates a new PlanService
func NewPlanService(txScope TransactionScope) *PlanService {
	return &PlanService{
		txScope: txScope,
		builder: ledger.NewPlanBuilder(),
	}
}

// CreatePlanRequest represents a request to split an invoice into installments
type CreatePlanRequest struct {
	InvoiceID    uuid.UUID `json:"invoice_id" binding:"required"`
	Count        int       `json:"count" binding:"required,min=2,max=60"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	IntervalDays int       `json:"interval_days" binding:"required,min=1"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	TenantID           uuid.UUID        `json:"tenant_id"`
	InvoiceID          uuid.UUID        `json:"invoice_id"`
	Sequence           int              `json:"sequence"`
	Type               string           `json:"type"`
	WeightDue          decimal.Decimal  `json:"weight_due"`
	WeightPaid         decimal.Decimal  `json:"weight_paid"`
	RemainingWeight    decimal.Decimal  `json:"remaining_weight"`
	AmountPaid         decimal.Decimal  `json:"amount_paid"`
	PriceAtLastPayment *decimal.Decimal `json:"price_at_last_payment,omitempty"`
	DueDate            time.Time        `json:"due_date"`
	Status             string           `json:"status"`
	IsPartial          bool             `json:"is_partial"`
	IsOverdue          bool             `json:"is_overdue"`
	DaysOverdue        int              `json:"days_overdue"`
	PaymentMethod      string           `json:"payment_method,omitempty"`
	PaymentReference   string           `json:"payment_reference,omitempty"`
	PaymentNotes       string           `json:"payment_notes,omitempty"`
	PaidAt             *time.Time       `json:"paid_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Version            int              `json:"version"`
}

// PlanResponse represents a created installment plan
type PlanResponse struct {
	InvoiceID    uuid.UUID             `json:"invoice_id"`
	Count        int                   `json:"count"`
	TotalWeight  decimal.Decimal       `json:"total_weight"`
	Installments []InstallmentResponse `json:"installments"`
}

// CreatePlan splits a gold invoice into equal installments. The whole plan
// is inserted in one transaction together with the invoice-side bookkeeping,
// so a plan either exists in full or not at all. The storage uniqueness
// constraint on (tenant, invoice, sequence) guards against a duplicate plan
// slipping in between the existence check and the insert.
func (s *PlanService) CreatePlan(ctx context.Context, tenantID uuid.UUID, req CreatePlanRequest) (*PlanResponse, error) {
	var resp *PlanResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceService().GetInvoiceRef(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		exists, err := repos.InstallmentRepo().ExistsForInvoice(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		if exists {
			// A plan the caller can already see is a business-rule rejection.
			// Only the unique-index violation inside CreateBatch, where two
			// requests actually raced, reports a concurrency conflict.
			return shared.NewBusinessError("invoice already has installments")
		}

		plan, err := s.builder.Build(tenantID, invoice, req.Count, req.StartDate, req.IntervalDays)
		if err != nil {
			return err
		}

		if err := repos.InstallmentRepo().CreateBatch(ctx, plan); err != nil {
			return err
		}

		if err := repos.InvoiceService().MarkInstallmentBacked(ctx, tenantID, req.InvoiceID, invoice.TotalWeightDue); err != nil {
			return err
		}

		resp = toPlanResponse(req.InvoiceID, invoice.TotalWeightDue, plan)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GetPlan returns the invoice's installments ordered by sequence, together
// with the plan-level weight rollup.
func (s *PlanService) GetPlan(ctx context.Context, tenantID, invoiceID uuid.UUID) (*PlanResponse, error) {
	var resp *PlanResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		installments, err := repos.InstallmentRepo().FindByInvoice(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if len(installments) == 0 {
			return shared.NewNotFoundError("invoice has no installment plan")
		}

		total := decimal.Zero
		refs := make([]*ledger.Installment, len(installments))
		for i := range installments {
			total = total.Add(installments[i].WeightDue)
			refs[i] = &installments[i]
		}

		resp = toPlanResponse(invoiceID, total, refs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func toPlanResponse(invoiceID uuid.UUID, total decimal.Decimal, plan []*ledger.Installment) *PlanResponse {
	responses := make([]InstallmentResponse, len(plan))
	for i, inst := range plan {
		responses[i] = *toInstallmentResponse(inst, time.Now())
	}
	return &PlanResponse{
		InvoiceID:    invoiceID,
		Count:        len(plan),
		TotalWeight:  total,
		Installments: responses,
	}
}

func toInstallmentResponse(i *ledger.Installment, asOf time.Time) *InstallmentResponse {
	return &InstallmentResponse{
		ID:                 i.ID,
		TenantID:           i.TenantID,
		InvoiceID:          i.InvoiceID,
		Sequence:           i.Sequence,
		Type:               string(i.Type),
		WeightDue:          i.WeightDue,
		WeightPaid:         i.WeightPaid,
		RemainingWeight:    i.RemainingWeight().Grams(),
		AmountPaid:         i.AmountPaid,
		PriceAtLastPayment: i.PriceAtLastPayment,
		DueDate:            i.DueDate,
		Status:             i.Status.String(),
		IsPartial:          i.IsPartial(),
		IsOverdue:          i.IsOverdueAt(asOf),
		DaysOverdue:        i.DaysOverdueAt(asOf),
		PaymentMethod:      i.PaymentMethod,
		PaymentReference:   i.PaymentReference,
		PaymentNotes:       i.PaymentNotes,
		PaidAt:             i.PaidAt,
		CreatedAt:          i.CreatedAt,
		UpdatedAt:          i.UpdatedAt,
		Version:            i.Version,
	}
}

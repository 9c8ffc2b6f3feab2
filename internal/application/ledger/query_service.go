package ledger

import (
	"context"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerQueryService provides read-side operations over the installment
// ledger. Derived classifications (partial, overdue) are computed here at
// read time; nothing in this service mutates state.
type LedgerQueryService struct {
	installmentRepo ledger.InstallmentRepository
	priceRepo       ledger.GoldPriceRepository
}

// NewLedgerQueryService creates a new LedgerQueryService
func NewLedgerQueryService(
	installmentRepo ledger.InstallmentRepository,
	priceRepo ledger.GoldPriceRepository,
) *LedgerQueryService {
	return &LedgerQueryService{
		installmentRepo: installmentRepo,
		priceRepo:       priceRepo,
	}
}

// InstallmentListFilter defines filtering options for installment list queries
type InstallmentListFilter struct {
	InvoiceID *uuid.UUID `form:"invoice_id"`
	Status    string     `form:"status"`
	DueFrom   *time.Time `form:"due_from"`
	DueTo     *time.Time `form:"due_to"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// OverdueInstallmentResponse is an installment with its overdue derivation
type OverdueInstallmentResponse struct {
	InstallmentResponse
	AsOf time.Time `json:"as_of"`
}

// InvoiceLedgerSummaryResponse is the per-invoice weight rollup
type InvoiceLedgerSummaryResponse struct {
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	TotalWeight       decimal.Decimal `json:"total_weight"`
	TotalWeightPaid   decimal.Decimal `json:"total_weight_paid"`
	RemainingWeight   decimal.Decimal `json:"remaining_weight"`
	TotalInstallments int             `json:"total_installments"`
	PendingCount      int             `json:"pending_count"`
	PaidCount         int             `json:"paid_count"`
	IsFullyPaid       bool            `json:"is_fully_paid"`
}

// LedgerStatisticsResponse is the tenant-wide ledger rollup
type LedgerStatisticsResponse struct {
	TotalInstallments   int64            `json:"total_installments"`
	PaidInstallments    int64            `json:"paid_installments"`
	PendingInstallments int64            `json:"pending_installments"`
	OverdueInstallments int64            `json:"overdue_installments"`
	InvoiceCount        int64            `json:"invoice_count"`
	TotalWeightDue      decimal.Decimal  `json:"total_weight_due"`
	TotalWeightPaid     decimal.Decimal  `json:"total_weight_paid"`
	OutstandingWeight   decimal.Decimal  `json:"outstanding_weight"`
	CollectionRate      decimal.Decimal  `json:"collection_rate"` // weight paid / weight due, 0..1
	CurrentPricePerGram *decimal.Decimal `json:"current_price_per_gram,omitempty"`
	OutstandingValue    *decimal.Decimal `json:"outstanding_value,omitempty"` // at current price
	AsOf                time.Time        `json:"as_of"`
}

// GetInstallment returns a single installment with derived state
func (s *LedgerQueryService) GetInstallment(ctx context.Context, tenantID, id uuid.UUID) (*InstallmentResponse, error) {
	installment, err := s.installmentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if installment == nil {
		return nil, shared.NewNotFoundError("installment not found")
	}
	return toInstallmentResponse(installment, time.Now()), nil
}

// ListInstallments lists installments with filtering
func (s *LedgerQueryService) ListInstallments(ctx context.Context, tenantID uuid.UUID, filter InstallmentListFilter) ([]InstallmentResponse, int64, error) {
	domainFilter := ledger.InstallmentFilter{
		InvoiceID: filter.InvoiceID,
		DueFrom:   filter.DueFrom,
		DueTo:     filter.DueTo,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Status != "" {
		status := ledger.InstallmentStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("unknown installment status")
		}
		domainFilter.Status = &status
	}

	installments, err := s.installmentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.installmentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]InstallmentResponse, len(installments))
	for i := range installments {
		responses[i] = *toInstallmentResponse(&installments[i], now)
	}

	return responses, total, nil
}

// GetInvoiceSummary rolls up the invoice's installments into remaining
// weight, paid and pending counts, and the completion flag. The rollup is
// computed from the latest committed installment rows on every call; nothing
// here is cached. Invoicing reads is_fully_paid from this summary to decide
// whether an invoice can be closed.
func (s *LedgerQueryService) GetInvoiceSummary(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceLedgerSummaryResponse, error) {
	installments, err := s.installmentRepo.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if len(installments) == 0 {
		return nil, shared.NewNotFoundError("invoice has no installment plan")
	}

	summary := ledger.Summarize(installments)

	return &InvoiceLedgerSummaryResponse{
		InvoiceID:         invoiceID,
		TotalWeight:       summary.TotalWeight,
		TotalWeightPaid:   summary.TotalPaid,
		RemainingWeight:   summary.RemainingWeight,
		TotalInstallments: summary.TotalCount,
		PendingCount:      summary.PendingCount,
		PaidCount:         summary.PaidCount,
		IsFullyPaid:       summary.IsFullyPaid,
	}, nil
}

// ListOverdue returns the installments that are overdue as of the given
// reference time, optionally scoped to one invoice. A zero asOf means now.
// Overdue is derived from the due date at query time; it is never stored,
// so an installment stops being overdue the moment it is settled in full.
func (s *LedgerQueryService) ListOverdue(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, asOf time.Time) ([]OverdueInstallmentResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	installments, err := s.installmentRepo.FindOverdue(ctx, tenantID, invoiceID, asOf)
	if err != nil {
		return nil, err
	}

	responses := make([]OverdueInstallmentResponse, len(installments))
	for i := range installments {
		responses[i] = OverdueInstallmentResponse{
			InstallmentResponse: *toInstallmentResponse(&installments[i], asOf),
			AsOf:                asOf,
		}
	}

	return responses, nil
}

// GetStatistics computes the tenant-wide ledger rollup. If the tenant has a
// current gold price, the outstanding weight is also valued in currency at
// that price; without one the valuation fields are omitted rather than
// guessed.
func (s *LedgerQueryService) GetStatistics(ctx context.Context, tenantID uuid.UUID) (*LedgerStatisticsResponse, error) {
	stats, err := s.installmentRepo.Statistics(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	overdue, err := s.installmentRepo.FindOverdue(ctx, tenantID, nil, now)
	if err != nil {
		return nil, err
	}

	resp := &LedgerStatisticsResponse{
		TotalInstallments:   stats.TotalInstallments,
		PaidInstallments:    stats.PaidInstallments,
		PendingInstallments: stats.PendingInstallments,
		OverdueInstallments: int64(len(overdue)),
		InvoiceCount:        stats.InvoiceCount,
		TotalWeightDue:      stats.TotalWeightDue,
		TotalWeightPaid:     stats.TotalWeightPaid,
		OutstandingWeight:   stats.OutstandingWeight,
		CollectionRate:      decimal.Zero,
		AsOf:                now,
	}

	if stats.TotalWeightDue.IsPositive() {
		resp.CollectionRate = stats.TotalWeightPaid.Div(stats.TotalWeightDue).Round(4)
	}

	current, err := s.priceRepo.FindCurrent(ctx, tenantID)
	if err != nil && !shared.IsNotFoundError(err) {
		return nil, err
	}
	if current != nil {
		price := current.PricePerGram
		value := stats.OutstandingWeight.Mul(price)
		resp.CurrentPricePerGram = &price
		resp.OutstandingValue = &value
	}

	return resp, nil
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/domain/shared/valueobject"
	"github.com/goldledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// settlementIdempotencyTTL bounds how long a payment reference is remembered.
const settlementIdempotencyTTL = 72 * time.Hour

// SettlementService settles currency payments against gold installments
type SettlementService struct {
	txScope          TransactionScope
	idempotencyStore shared.IdempotencyStore
}

// SettlementServiceOption is a functional option for configuring SettlementService
type SettlementServiceOption func(*SettlementService)

// WithIdempotencyStore enables payment-reference deduplication across retries
func WithIdempotencyStore(store shared.IdempotencyStore) SettlementServiceOption {
	return func(s *SettlementService) {
		s.idempotencyStore = store
	}
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(txScope TransactionScope, opts ...SettlementServiceOption) *SettlementService {
	s := &SettlementService{txScope: txScope}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SettlePaymentRequest represents a currency payment against an installment
type SettlePaymentRequest struct {
	InstallmentID uuid.UUID       `json:"installment_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency"`
	PaidAt        time.Time       `json:"paid_at" binding:"required"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
}

// SettlementResponse represents the outcome of a settlement
type SettlementResponse struct {
	Installment    InstallmentResponse `json:"installment"`
	WeightSettled  decimal.Decimal     `json:"weight_settled"`
	PricePerGram   decimal.Decimal     `json:"price_per_gram"`
	PriceRecordID  uuid.UUID           `json:"price_record_id"`
	PriceEffective time.Time           `json:"price_effective_at"`
}

// SettlePayment converts a currency payment into settled weight at the gold
// price in effect on the payment date and applies it to the installment.
//
// The installment row is locked for the duration of the transaction, so
// concurrent settlements of the same installment serialize and no update is
// lost. The price is captured by value at settlement time; later price
// records never change what was settled here.
func (s *SettlementService) SettlePayment(ctx context.Context, tenantID uuid.UUID, req SettlePaymentRequest) (*SettlementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "settle_payment")
	defer span.End()

	telemetry.SetAttribute(span, "tenant_id", tenantID.String())
	telemetry.SetAttribute(span, "installment_id", req.InstallmentID.String())
	telemetry.SetAttribute(span, "amount", req.Amount.String())

	currency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if req.PaidAt.IsZero() {
		return nil, shared.NewValidationError("payment date cannot be empty")
	}

	if s.idempotencyStore != nil && req.Reference != "" {
		key := settlementKey(tenantID, req.InstallmentID, req.Reference)
		processed, err := s.idempotencyStore.IsProcessed(ctx, key)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check payment reference: %w", err)
		}
		if processed {
			return nil, shared.NewConflictError(fmt.Sprintf(
				"payment reference %q has already been settled against this installment", req.Reference))
		}
	}

	var resp *SettlementResponse

	txErr := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Row lock first so concurrent settlements of this installment queue
		// up behind each other.
		installment, err := repos.InstallmentRepo().FindByIDForTenantLocked(ctx, tenantID, req.InstallmentID)
		if err != nil {
			return err
		}
		if installment == nil {
			return shared.NewNotFoundError("installment not found")
		}

		price, err := repos.PriceRepo().FindOn(ctx, tenantID, req.PaidAt)
		if err != nil {
			return err
		}
		if price == nil {
			return shared.NewNotFoundError("no gold price is in effect on the payment date")
		}

		settled, err := installment.ApplyPayment(amount, price.PricePerGram, req.PaidAt, req.Method, req.Reference, req.Notes)
		if err != nil {
			return err
		}

		if err := repos.InstallmentRepo().SaveWithLock(ctx, installment); err != nil {
			return err
		}

		// Recompute the invoice's cached remaining weight from the plan in
		// the same transaction. The rollup source of truth is always the
		// installments themselves.
		plan, err := repos.InstallmentRepo().FindByInvoice(ctx, tenantID, installment.InvoiceID)
		if err != nil {
			return err
		}
		remaining := decimal.Zero
		for i := range plan {
			if plan[i].ID == installment.ID {
				remaining = remaining.Add(installment.RemainingWeight().Grams())
				continue
			}
			remaining = remaining.Add(plan[i].RemainingWeight().Grams())
		}
		if err := repos.InvoiceService().UpdateRemainingWeight(ctx, tenantID, installment.InvoiceID, remaining); err != nil {
			return err
		}

		telemetry.AddEvent(span, "payment_settled",
			"weight_settled", settled.String(),
			"price_per_gram", price.PricePerGram.String(),
			"status", installment.Status.String(),
		)

		resp = &SettlementResponse{
			Installment:    *toInstallmentResponse(installment, req.PaidAt),
			WeightSettled:  settled.Grams(),
			PricePerGram:   price.PricePerGram,
			PriceRecordID:  price.ID,
			PriceEffective: price.EffectiveAt,
		}
		return nil
	})
	if txErr != nil {
		telemetry.RecordError(span, txErr)
		return nil, txErr
	}

	// Mark the reference only after the transaction commits; a settlement
	// that rolled back must stay retryable under the same reference.
	if s.idempotencyStore != nil && req.Reference != "" {
		key := settlementKey(tenantID, req.InstallmentID, req.Reference)
		if _, err := s.idempotencyStore.MarkProcessed(ctx, key, settlementIdempotencyTTL); err != nil {
			telemetry.RecordError(span, err)
		}
	}

	return resp, nil
}

func settlementKey(tenantID, installmentID uuid.UUID, reference string) string {
	return fmt.Sprintf("settlement:%s:%s:%s", tenantID, installmentID, reference)
}

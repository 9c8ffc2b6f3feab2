package acl

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService is the ledger's port into the invoicing context. It is
// defined in the ledger domain but implemented in the infrastructure layer,
// following the Dependency Inversion Principle.
//
// Implementations must scope every operation to the tenant; the ledger never
// reads or writes another tenant's invoices.
type InvoiceService interface {
	// GetInvoiceRef retrieves the obligation snapshot for an invoice.
	// Returns a not-found domain error if the invoice does not exist for
	// the tenant.
	GetInvoiceRef(ctx context.Context, tenantID, invoiceID uuid.UUID) (InvoiceRef, error)

	// MarkInstallmentBacked flags the invoice as installment-backed and
	// initializes its cached remaining weight to the total owed. Called
	// exactly once, inside the plan-creation transaction.
	MarkInstallmentBacked(ctx context.Context, tenantID, invoiceID uuid.UUID, totalWeight decimal.Decimal) error

	// UpdateRemainingWeight writes the invoice's cached remaining weight.
	// Called inside the settlement transaction so the cache can never be
	// observed out of sync with the installments.
	UpdateRemainingWeight(ctx context.Context, tenantID, invoiceID uuid.UUID, remaining decimal.Decimal) error
}

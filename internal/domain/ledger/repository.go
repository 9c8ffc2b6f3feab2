package ledger

import (
	"context"
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoldPriceFilter defines filtering options for price oracle queries
type GoldPriceFilter struct {
	shared.Filter
	Source     *PriceSource // Filter by price source
	From       *time.Time   // Filter by effective date range start
	To         *time.Time   // Filter by effective date range end
	ActiveOnly bool         // Exclude soft-deactivated records
}

// GoldPriceRepository defines the interface for price oracle persistence
type GoldPriceRepository interface {
	// FindByIDForTenant finds a price record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*GoldPrice, error)

	// FindCurrent returns the tenant's current price record, or a not-found
	// error if the tenant has never set a price
	FindCurrent(ctx context.Context, tenantID uuid.UUID) (*GoldPrice, error)

	// FindOn returns the active record with the latest effective_at that is
	// at or before target. Ties are broken by latest effective_at, then by
	// most recent insertion. No forward extrapolation: if no record exists
	// at or before target, a not-found error is returned.
	FindOn(ctx context.Context, tenantID uuid.UUID, target time.Time) (*GoldPrice, error)

	// FindAllForTenant lists price records for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter GoldPriceFilter) ([]GoldPrice, error)

	// CountForTenant counts price records for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter GoldPriceFilter) (int64, error)

	// SetCurrent persists a new price record and atomically clears the
	// is_current flag on the tenant's previous current record, within a
	// single transaction. At no point are zero or two records current.
	SetCurrent(ctx context.Context, price *GoldPrice) error

	// Save updates an existing price record
	Save(ctx context.Context, price *GoldPrice) error
}

// InstallmentFilter defines filtering options for installment queries
type InstallmentFilter struct {
	shared.Filter
	InvoiceID *uuid.UUID         // Scope to one invoice
	Status    *InstallmentStatus // Filter by stored status
	DueFrom   *time.Time         // Filter by due date range start
	DueTo     *time.Time         // Filter by due date range end
}

// LedgerStatistics is the tenant-wide rollup over the installment ledger
type LedgerStatistics struct {
	TotalInstallments   int64
	PaidInstallments    int64
	PendingInstallments int64
	InvoiceCount        int64
	TotalWeightDue      decimal.Decimal
	TotalWeightPaid     decimal.Decimal
	OutstandingWeight   decimal.Decimal
}

// InstallmentRepository defines the interface for installment persistence
type InstallmentRepository interface {
	// FindByIDForTenant finds an installment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)

	// FindByIDForTenantLocked finds an installment and takes a row-level
	// lock on it. Must be called inside a transaction; the lock serializes
	// concurrent settlements of the same installment so no update is lost.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)

	// FindByInvoice returns the invoice's installments ordered by sequence
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Installment, error)

	// FindAllForTenant lists installments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InstallmentFilter) ([]Installment, error)

	// FindOverdue returns installments whose due date is before asOf and
	// which are not fully paid, optionally scoped to one invoice. Overdue
	// is derived at query time; this never mutates stored state.
	FindOverdue(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, asOf time.Time) ([]Installment, error)

	// ExistsForInvoice checks whether the invoice already has a plan
	ExistsForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (bool, error)

	// CreateBatch inserts a full plan in one transaction. The uniqueness
	// constraint on (tenant, invoice, sequence) is the authoritative guard
	// against duplicate plans; violations surface as a conflict error.
	CreateBatch(ctx context.Context, installments []*Installment) error

	// SaveWithLock updates an installment with an optimistic version check
	SaveWithLock(ctx context.Context, installment *Installment) error

	// CountForTenant counts installments for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InstallmentFilter) (int64, error)

	// Statistics computes the tenant-wide ledger rollup
	Statistics(ctx context.Context, tenantID uuid.UUID) (*LedgerStatistics, error)
}

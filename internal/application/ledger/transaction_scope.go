package ledger

import (
	"context"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/ledger/acl"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// The invoice service is part of the scope because plan creation and
// settlement both write the invoice's cached remaining weight; doing that in
// the same transaction keeps the cache consistent with the installments.
type TransactionalRepositories interface {
	// InstallmentRepo returns the installment repository scoped to the current transaction
	InstallmentRepo() ledger.InstallmentRepository
	// PriceRepo returns the gold price repository scoped to the current transaction
	PriceRepo() ledger.GoldPriceRepository
	// InvoiceService returns the invoicing-context port scoped to the current transaction
	InvoiceService() acl.InvoiceService
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. It is useful for testing.
type NoOpTransactionScope struct {
	installmentRepo ledger.InstallmentRepository
	priceRepo       ledger.GoldPriceRepository
	invoiceService  acl.InvoiceService
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	installmentRepo ledger.InstallmentRepository,
	priceRepo ledger.GoldPriceRepository,
	invoiceService acl.InvoiceService,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		installmentRepo: installmentRepo,
		priceRepo:       priceRepo,
		invoiceService:  invoiceService,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InstallmentRepo returns the installment repository.
func (s *NoOpTransactionScope) InstallmentRepo() ledger.InstallmentRepository {
	return s.installmentRepo
}

// PriceRepo returns the gold price repository.
func (s *NoOpTransactionScope) PriceRepo() ledger.GoldPriceRepository {
	return s.priceRepo
}

// InvoiceService returns the invoicing-context port.
func (s *NoOpTransactionScope) InvoiceService() acl.InvoiceService {
	return s.invoiceService
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

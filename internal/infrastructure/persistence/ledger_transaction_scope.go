package persistence

import (
	"context"

	appledger "github.com/goldledger/backend/internal/application/ledger"
	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/ledger/acl"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InstallmentRepo returns the installment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InstallmentRepo() ledger.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

// PriceRepo returns the gold price repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PriceRepo() ledger.GoldPriceRepository {
	return NewGormGoldPriceRepository(r.tx)
}

// InvoiceService returns the invoicing port scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceService() acl.InvoiceService {
	return NewGormInvoiceService(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByIDForTenant finds an installment by ID for a specific tenant
func (r *GormInstallmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenantLocked finds an installment and takes a row-level lock.
// Must run inside a transaction; the lock serializes concurrent settlements
// of the same installment.
func (r *GormInstallmentRepository) FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the invoice's installments ordered by sequence
func (r *GormInstallmentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	installments := make([]ledger.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

// FindAllForTenant lists installments for a tenant with filtering
func (r *GormInstallmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) ([]ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyInstallmentFilter(query, filter)

	if err := query.Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	installments := make([]ledger.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

// FindOverdue returns installments due before asOf that are not fully paid.
// Overdue is derived at query time and never written back.
func (r *GormInstallmentRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, invoiceID *uuid.UUID, asOf time.Time) ([]ledger.Installment, error) {
	var installmentModels []models.InstallmentModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND due_date < ? AND status = ?", tenantID, asOf, ledger.InstallmentStatusPending)
	if invoiceID != nil {
		query = query.Where("invoice_id = ?", *invoiceID)
	}
	if err := query.
		Order("due_date ASC").
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	installments := make([]ledger.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

// ExistsForInvoice checks whether the invoice already has a plan
func (r *GormInstallmentRepository) ExistsForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBatch inserts a full plan in one transaction. A violation of the
// unique index on (tenant_id, invoice_id, sequence) means another request
// already created the plan and surfaces as a conflict error.
func (r *GormInstallmentRepository) CreateBatch(ctx context.Context, installments []*ledger.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i, installment := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(installment)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&installmentModels).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return shared.NewConflictError("invoice already has an installment plan")
		}
		return err
	}
	return nil
}

// SaveWithLock updates an installment with an optimistic version check
func (r *GormInstallmentRepository) SaveWithLock(ctx context.Context, installment *ledger.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", installment.ID, installment.Version-1).
		Select("*").
		Omit("id", "created_at", "tenant_id", "invoice_id", "sequence").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// CountForTenant counts installments for a tenant with filtering
func (r *GormInstallmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InstallmentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyInstallmentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Statistics computes the tenant-wide ledger rollup
func (r *GormInstallmentRepository) Statistics(ctx context.Context, tenantID uuid.UUID) (*ledger.LedgerStatistics, error) {
	var row struct {
		TotalInstallments   int64
		PaidInstallments    int64
		PendingInstallments int64
		InvoiceCount        int64
		TotalWeightDue      decimal.Decimal
		TotalWeightPaid     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Select(
			"COUNT(*) as total_installments, "+
				"COUNT(*) FILTER (WHERE status = ?) as paid_installments, "+
				"COUNT(*) FILTER (WHERE status = ?) as pending_installments, "+
				"COUNT(DISTINCT invoice_id) as invoice_count, "+
				"COALESCE(SUM(weight_due), 0) as total_weight_due, "+
				"COALESCE(SUM(weight_paid), 0) as total_weight_paid",
			ledger.InstallmentStatusPaid, ledger.InstallmentStatusPending).
		Where("tenant_id = ?", tenantID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	outstanding := row.TotalWeightDue.Sub(row.TotalWeightPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return &ledger.LedgerStatistics{
		TotalInstallments:   row.TotalInstallments,
		PaidInstallments:    row.PaidInstallments,
		PendingInstallments: row.PendingInstallments,
		InvoiceCount:        row.InvoiceCount,
		TotalWeightDue:      row.TotalWeightDue,
		TotalWeightPaid:     row.TotalWeightPaid,
		OutstandingWeight:   outstanding,
	}, nil
}

// applyInstallmentFilter applies filter options including pagination
func (r *GormInstallmentRepository) applyInstallmentFilter(query *gorm.DB, filter ledger.InstallmentFilter) *gorm.DB {
	query = r.applyInstallmentFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("due_date ASC").Order("sequence ASC")
	}

	return query
}

// applyInstallmentFilterWithoutPagination applies filter options without pagination
func (r *GormInstallmentRepository) applyInstallmentFilterWithoutPagination(query *gorm.DB, filter ledger.InstallmentFilter) *gorm.DB {
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	return query
}

// isUniqueViolation reports whether err is a unique constraint violation
// from the underlying driver. The postgres dialector surfaces pgconn errors
// with SQLSTATE 23505; the message check is a fallback for drivers that only
// return a plain error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

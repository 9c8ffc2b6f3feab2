package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger/acl"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/goldledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceService implements the ledger's invoicing port against the
// invoice snapshot table. It is the only piece of infrastructure that touches
// invoices on the ledger's behalf.
type GormInvoiceService struct {
	db *gorm.DB
}

// NewGormInvoiceService creates a new GormInvoiceService
func NewGormInvoiceService(db *gorm.DB) *GormInvoiceService {
	return &GormInvoiceService{db: db}
}

// GetInvoiceRef retrieves the obligation snapshot for an invoice
func (s *GormInvoiceService) GetInvoiceRef(ctx context.Context, tenantID, invoiceID uuid.UUID) (acl.InvoiceRef, error) {
	var model models.InvoiceModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return acl.InvoiceRef{}, shared.NewNotFoundError("invoice not found")
		}
		return acl.InvoiceRef{}, err
	}
	return model.ToRef(), nil
}

// MarkInstallmentBacked flags the invoice as installment-backed and
// initializes its cached remaining weight to the total owed
func (s *GormInvoiceService) MarkInstallmentBacked(ctx context.Context, tenantID, invoiceID uuid.UUID, totalWeight decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		Updates(map[string]interface{}{
			"has_installments": true,
			"remaining_weight": totalWeight,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("invoice not found")
	}
	return nil
}

// UpdateRemainingWeight writes the invoice's cached remaining weight
func (s *GormInvoiceService) UpdateRemainingWeight(ctx context.Context, tenantID, invoiceID uuid.UUID, remaining decimal.Decimal) error {
	result := s.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		Updates(map[string]interface{}{
			"remaining_weight": remaining,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("invoice not found")
	}
	return nil
}

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
	"gorm.io/gorm"
)

// GormGoldPriceRepository implements GoldPriceRepository using GORM
type GormGoldPriceRepository struct {
	db *gorm.DB
}

// NewGormGoldPriceRepository creates a new GormGoldPriceRepository
func NewGormGoldPriceRepository(db *gorm.DB) *GormGoldPriceRepository {
	return &GormGoldPriceRepository{db: db}
}

// FindByIDForTenant finds a price record by ID for a specific tenant
func (r *GormGoldPriceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.GoldPrice, error) {
	var model models.GoldPriceModel
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

// FindCurrent returns the tenant's current price record
func (r *GormGoldPriceRepository) FindCurrent(ctx context.Context, tenantID uuid.UUID) (*ledger.GoldPrice, error) {
	var model models.GoldPriceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_current = ? AND is_active = ?", tenantID, true, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOn returns the active record with the latest effective_at at or before
// target. Ties on effective_at are broken by most recent insertion. Records
// effective only after target never match; there is no forward extrapolation.
func (r *GormGoldPriceRepository) FindOn(ctx context.Context, tenantID uuid.UUID, target time.Time) (*ledger.GoldPrice, error) {
	var model models.GoldPriceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND effective_at <= ?", tenantID, true, target).
		Order("effective_at DESC").
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists price records for a tenant with filtering
func (r *GormGoldPriceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.GoldPriceFilter) ([]ledger.GoldPrice, error) {
	var priceModels []models.GoldPriceModel
	query := r.db.WithContext(ctx).Model(&models.GoldPriceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPriceFilter(query, filter)

	if err := query.Find(&priceModels).Error; err != nil {
		return nil, err
	}
	prices := make([]ledger.GoldPrice, len(priceModels))
	for i, model := range priceModels {
		prices[i] = *model.ToDomain()
	}
	return prices, nil
}

// CountForTenant counts price records for a tenant
func (r *GormGoldPriceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.GoldPriceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.GoldPriceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPriceFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SetCurrent persists a new price record and clears the is_current flag on
// the tenant's previous current record within a single transaction, so at no
// point are zero or two records current.
func (r *GormGoldPriceRepository) SetCurrent(ctx context.Context, price *ledger.GoldPrice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GoldPriceModel{}).
			Where("tenant_id = ? AND is_current = ? AND id <> ?", price.TenantID, true, price.ID).
			Updates(map[string]interface{}{
				"is_current": false,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		model := models.GoldPriceModelFromDomain(price)
		if err := tx.Create(model).Error; err != nil {
			// Two price-setters racing into the tenant's current-price
			// unique index report a conflict, not a raw driver error.
			if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
				return shared.NewConflictError("another price was set current for this tenant concurrently")
			}
			return err
		}
		return nil
	})
}

// Save updates an existing price record
func (r *GormGoldPriceRepository) Save(ctx context.Context, price *ledger.GoldPrice) error {
	model := models.GoldPriceModelFromDomain(price)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyPriceFilter applies filter options including pagination
func (r *GormGoldPriceRepository) applyPriceFilter(query *gorm.DB, filter ledger.GoldPriceFilter) *gorm.DB {
	query = r.applyPriceFilterWithoutPagination(query, filter)

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
		query = query.Order("effective_at DESC")
	}

	return query
}

// applyPriceFilterWithoutPagination applies filter options without pagination
func (r *GormGoldPriceRepository) applyPriceFilterWithoutPagination(query *gorm.DB, filter ledger.GoldPriceFilter) *gorm.DB {
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.From != nil {
		query = query.Where("effective_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("effective_at <= ?", *filter.To)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

package ledger

import (
	"context"
	"time"

	"github.com/goldledger/backend/internal/domain/ledger"
	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceService provides application-level price oracle operations
type PriceService struct {
	priceRepo ledger.GoldPriceRepository
}

// NewPriceService creates a new PriceService
func NewPriceService(priceRepo ledger.GoldPriceRepository) *PriceService {
	return &PriceService{priceRepo: priceRepo}
}

// SetGoldPriceRequest represents a request to record a new gold price
type SetGoldPriceRequest struct {
	PricePerGram decimal.Decimal  `json:"price_per_gram" binding:"required"`
	Purity       decimal.Decimal  `json:"purity" binding:"required"`
	EffectiveAt  time.Time        `json:"effective_at" binding:"required"`
	Source       string           `json:"source" binding:"required,oneof=MANUAL MARKET_FEED"`
	Market       string           `json:"market"`
	BuyPrice     *decimal.Decimal `json:"buy_price"`
	SellPrice    *decimal.Decimal `json:"sell_price"`
	Notes        string           `json:"notes"`
}

// GoldPriceResponse represents a gold price record in API responses
type GoldPriceResponse struct {
	ID           uuid.UUID        `json:"id"`
	TenantID     uuid.UUID        `json:"tenant_id"`
	PricePerGram decimal.Decimal  `json:"price_per_gram"`
	Purity       decimal.Decimal  `json:"purity"`
	EffectiveAt  time.Time        `json:"effective_at"`
	Source       string           `json:"source"`
	Market       string           `json:"market,omitempty"`
	BuyPrice     *decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice    *decimal.Decimal `json:"sell_price,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	IsCurrent    bool             `json:"is_current"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Version      int              `json:"version"`
}

// GoldPriceListFilter defines filtering options for price list queries
type GoldPriceListFilter struct {
	Source     string     `form:"source"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
	ActiveOnly bool       `form:"active_only"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// SetPrice records a new gold price and makes it the tenant's current price.
// The previous current record is superseded in the same transaction, so at
// no observable point does the tenant have zero or two current prices.
func (s *PriceService) SetPrice(ctx context.Context, tenantID uuid.UUID, req SetGoldPriceRequest) (*GoldPriceResponse, error) {
	price, err := ledger.NewGoldPrice(tenantID, req.PricePerGram, req.Purity, req.EffectiveAt, ledger.PriceSource(req.Source))
	if err != nil {
		return nil, err
	}
	if req.Market != "" {
		price.SetMarket(req.Market)
	}
	if err := price.SetQuotes(req.BuyPrice, req.SellPrice); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		price.SetNotes(req.Notes)
	}

	if err := s.priceRepo.SetCurrent(ctx, price); err != nil {
		return nil, err
	}

	return toGoldPriceResponse(price), nil
}

// GetCurrentPrice returns the tenant's current price record
func (s *PriceService) GetCurrentPrice(ctx context.Context, tenantID uuid.UUID) (*GoldPriceResponse, error) {
	price, err := s.priceRepo.FindCurrent(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, shared.NewNotFoundError("no gold price has been set for this tenant")
	}
	return toGoldPriceResponse(price), nil
}

// GetPriceOn returns the price in effect on the given date: the record with
// the latest effective date at or before it. There is no forward
// extrapolation; asking for a date before the first record is an error.
func (s *PriceService) GetPriceOn(ctx context.Context, tenantID uuid.UUID, target time.Time) (*GoldPriceResponse, error) {
	price, err := s.priceRepo.FindOn(ctx, tenantID, target)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, shared.NewNotFoundError("no gold price is in effect on the requested date")
	}
	return toGoldPriceResponse(price), nil
}

// ListPrices lists price history with filtering
func (s *PriceService) ListPrices(ctx context.Context, tenantID uuid.UUID, filter GoldPriceListFilter) ([]GoldPriceResponse, int64, error) {
	domainFilter := ledger.GoldPriceFilter{
		From:       filter.From,
		To:         filter.To,
		ActiveOnly: filter.ActiveOnly,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Source != "" {
		source := ledger.PriceSource(filter.Source)
		domainFilter.Source = &source
	}

	prices, err := s.priceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.priceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]GoldPriceResponse, len(prices))
	for i := range prices {
		responses[i] = *toGoldPriceResponse(&prices[i])
	}

	return responses, total, nil
}

// DeactivatePrice soft-deactivates a price record. The record is excluded
// from future point-in-time lookups but kept for audit; settlements that
// already captured its price are unaffected.
func (s *PriceService) DeactivatePrice(ctx context.Context, tenantID, id uuid.UUID) error {
	price, err := s.priceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if price == nil {
		return shared.NewNotFoundError("price record not found")
	}
	if price.IsCurrent {
		return shared.NewBusinessError("the current price record cannot be deactivated; set a new price first")
	}
	if err := price.Deactivate(); err != nil {
		return err
	}
	return s.priceRepo.Save(ctx, price)
}

func toGoldPriceResponse(p *ledger.GoldPrice) *GoldPriceResponse {
	return &GoldPriceResponse{
		ID:           p.ID,
		TenantID:     p.TenantID,
		PricePerGram: p.PricePerGram,
		Purity:       p.Purity,
		EffectiveAt:  p.EffectiveAt,
		Source:       p.Source.String(),
		Market:       p.Market,
		BuyPrice:     p.BuyPrice,
		SellPrice:    p.SellPrice,
		Notes:        p.Notes,
		IsCurrent:    p.IsCurrent,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

package ledger

import (
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource represents where a gold price quote came from
type PriceSource string

const (
	PriceSourceManual     PriceSource = "MANUAL"      // Entered by a tenant administrator
	PriceSourceMarketFeed PriceSource = "MARKET_FEED" // Pulled from an external market feed
)

// IsValid checks if the price source is valid
func (s PriceSource) IsValid() bool {
	return s == PriceSourceManual || s == PriceSourceMarketFeed
}

// String returns the string representation of PriceSource
func (s PriceSource) String() string {
	return string(s)
}

// GoldPrice is the price oracle record: a point-in-time gold price quote for
// one tenant. Records are never deleted, only superseded or soft-deactivated,
// so historical settlements stay auditable. Settlements capture the price
// per gram by value, never by reference, so editing later records can never
// retroactively change a past settlement.
type GoldPrice struct {
	shared.TenantAggregateRoot
	PricePerGram decimal.Decimal  `json:"price_per_gram"`
	Purity       decimal.Decimal  `json:"purity"` // carat grade, e.g. 18.000
	EffectiveAt  time.Time        `json:"effective_at"`
	Source       PriceSource      `json:"source"`
	Market       string           `json:"market,omitempty"`
	BuyPrice     *decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice    *decimal.Decimal `json:"sell_price,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	IsCurrent    bool             `json:"is_current"`
	IsActive     bool             `json:"is_active"`
}

// NewGoldPrice creates a new gold price record.
// The record is created current; the repository's SetCurrent is responsible
// for atomically unsetting the tenant's previous current record.
func NewGoldPrice(
	tenantID uuid.UUID,
	pricePerGram decimal.Decimal,
	purity decimal.Decimal,
	effectiveAt time.Time,
	source PriceSource,
) (*GoldPrice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant ID cannot be empty")
	}
	if pricePerGram.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("price per gram must be positive")
	}
	if purity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("purity must be positive")
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("price source is not valid")
	}
	if effectiveAt.IsZero() {
		return nil, shared.NewValidationError("effective date cannot be empty")
	}

	p := &GoldPrice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PricePerGram:        pricePerGram,
		Purity:              purity,
		EffectiveAt:         effectiveAt,
		Source:              source,
		IsCurrent:           true,
		IsActive:            true,
	}

	p.AddDomainEvent(NewGoldPriceSetEvent(p))

	return p, nil
}

// SetMarket sets the optional market name
func (p *GoldPrice) SetMarket(market string) {
	p.Market = market
}

// SetQuotes sets the optional buy/sell quotes
func (p *GoldPrice) SetQuotes(buy, sell *decimal.Decimal) error {
	if buy != nil && buy.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("buy price must be positive")
	}
	if sell != nil && sell.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("sell price must be positive")
	}
	p.BuyPrice = buy
	p.SellPrice = sell
	return nil
}

// SetNotes sets the free-text note
func (p *GoldPrice) SetNotes(notes string) {
	p.Notes = notes
}

// Supersede clears the current flag. Called when a newer record becomes
// current; the swap itself must happen inside one repository transaction.
func (p *GoldPrice) Supersede() {
	p.IsCurrent = false
	p.Touch()
	p.IncrementVersion()
}

// Deactivate soft-deactivates the record. Deactivated records are excluded
// from point-in-time lookups but kept as historical data.
func (p *GoldPrice) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Price record is already deactivated")
	}
	p.IsActive = false
	p.IsCurrent = false
	p.Touch()
	p.IncrementVersion()
	return nil
}

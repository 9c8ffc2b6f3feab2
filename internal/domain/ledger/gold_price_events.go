package ledger

import (
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoldPriceSetEvent is raised when a new gold price becomes the tenant's current price
type GoldPriceSetEvent struct {
	shared.BaseDomainEvent
	PriceID      uuid.UUID       `json:"price_id"`
	PricePerGram decimal.Decimal `json:"price_per_gram"`
	Purity       decimal.Decimal `json:"purity"`
	EffectiveAt  time.Time       `json:"effective_at"`
	Source       PriceSource     `json:"source"`
}

// EventType returns the event type name
func (e *GoldPriceSetEvent) EventType() string {
	return "GoldPriceSet"
}

// NewGoldPriceSetEvent creates a new GoldPriceSetEvent
func NewGoldPriceSetEvent(p *GoldPrice) *GoldPriceSetEvent {
	return &GoldPriceSetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("GoldPriceSet", "GoldPrice", p.ID, p.TenantID),
		PriceID:         p.ID,
		PricePerGram:    p.PricePerGram,
		Purity:          p.Purity,
		EffectiveAt:     p.EffectiveAt,
		Source:          p.Source,
	}
}

// GoldPriceDeactivatedEvent is raised when a price record is soft-deactivated
type GoldPriceDeactivatedEvent struct {
	shared.BaseDomainEvent
	PriceID uuid.UUID `json:"price_id"`
}

// EventType returns the event type name
func (e *GoldPriceDeactivatedEvent) EventType() string {
	return "GoldPriceDeactivated"
}

// NewGoldPriceDeactivatedEvent creates a new GoldPriceDeactivatedEvent
func NewGoldPriceDeactivatedEvent(p *GoldPrice) *GoldPriceDeactivatedEvent {
	return &GoldPriceDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("GoldPriceDeactivated", "GoldPrice", p.ID, p.TenantID),
		PriceID:         p.ID,
	}
}

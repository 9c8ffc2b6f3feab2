package ledger

import (
	"testing"
	"time"

	"github.com/goldledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoldPrice(t *testing.T) {
	tenantID := uuid.New()
	effectiveAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("2000000")
	purity := decimal.RequireFromString("18")

	t.Run("creates a current active record", func(t *testing.T) {
		p, err := NewGoldPrice(tenantID, price, purity, effectiveAt, PriceSourceManual)
		require.NoError(t, err)

		assert.Equal(t, tenantID, p.TenantID)
		assert.True(t, p.PricePerGram.Equal(price))
		assert.True(t, p.IsCurrent)
		assert.True(t, p.IsActive)
		assert.Equal(t, effectiveAt, p.EffectiveAt)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "GoldPriceSet", events[0].EventType())
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		for _, bad := range []string{"0", "-1"} {
			_, err := NewGoldPrice(tenantID, decimal.RequireFromString(bad), purity, effectiveAt, PriceSourceManual)
			assert.True(t, shared.IsValidationError(err), "price=%s", bad)
		}
	})

	t.Run("rejects non-positive purity", func(t *testing.T) {
		_, err := NewGoldPrice(tenantID, price, decimal.Zero, effectiveAt, PriceSourceManual)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewGoldPrice(uuid.Nil, price, purity, effectiveAt, PriceSourceManual)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		_, err := NewGoldPrice(tenantID, price, purity, effectiveAt, PriceSource("SCRAPED"))
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects zero effective date", func(t *testing.T) {
		_, err := NewGoldPrice(tenantID, price, purity, time.Time{}, PriceSourceManual)
		assert.True(t, shared.IsValidationError(err))
	})
}

func TestGoldPrice_Supersede(t *testing.T) {
	p, err := NewGoldPrice(uuid.New(),
		decimal.RequireFromString("2000000"),
		decimal.RequireFromString("18"),
		time.Now(), PriceSourceManual)
	require.NoError(t, err)
	require.True(t, p.IsCurrent)
	version := p.Version

	p.Supersede()

	assert.False(t, p.IsCurrent)
	assert.True(t, p.IsActive, "superseded records stay active for historical lookups")
	assert.Equal(t, version+1, p.Version)
}

func TestGoldPrice_Deactivate(t *testing.T) {
	p, err := NewGoldPrice(uuid.New(),
		decimal.RequireFromString("2000000"),
		decimal.RequireFromString("18"),
		time.Now(), PriceSourceMarketFeed)
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.False(t, p.IsCurrent)

	err = p.Deactivate()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestGoldPrice_SetQuotes(t *testing.T) {
	p, err := NewGoldPrice(uuid.New(),
		decimal.RequireFromString("2000000"),
		decimal.RequireFromString("18"),
		time.Now(), PriceSourceMarketFeed)
	require.NoError(t, err)

	buy := decimal.RequireFromString("1990000")
	sell := decimal.RequireFromString("2010000")
	require.NoError(t, p.SetQuotes(&buy, &sell))
	assert.True(t, p.BuyPrice.Equal(buy))
	assert.True(t, p.SellPrice.Equal(sell))

	negative := decimal.RequireFromString("-1")
	assert.Error(t, p.SetQuotes(&negative, nil))
	assert.Error(t, p.SetQuotes(nil, &negative))
}

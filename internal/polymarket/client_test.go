package polymarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arusso/matchbook/internal/markets"
)

func TestParseOutcomePrices(t *testing.T) {
	t.Run("both prices", func(t *testing.T) {
		yes, no := parseOutcomePrices(`["0.45", "0.55"]`)
		require.NotNil(t, yes)
		require.NotNil(t, no)
		assert.Equal(t, 0.45, *yes)
		assert.Equal(t, 0.55, *no)
	})

	t.Run("empty string", func(t *testing.T) {
		yes, no := parseOutcomePrices("")
		assert.Nil(t, yes)
		assert.Nil(t, no)
	})

	t.Run("malformed json", func(t *testing.T) {
		yes, no := parseOutcomePrices(`[0.45, 0.55]`)
		assert.Nil(t, yes)
		assert.Nil(t, no)
	})

	t.Run("out of range prices dropped", func(t *testing.T) {
		yes, no := parseOutcomePrices(`["1.5", "-0.5"]`)
		assert.Nil(t, yes)
		assert.Nil(t, no)
	})

	t.Run("single entry", func(t *testing.T) {
		yes, no := parseOutcomePrices(`["0.30"]`)
		require.NotNil(t, yes)
		assert.Equal(t, 0.30, *yes)
		assert.Nil(t, no)
	})
}

func TestNormalizeEvent(t *testing.T) {
	ev := &eventDetail{
		ID:       "ev1",
		Title:    "Bitcoin 2026",
		Category: "Crypto",
		Markets: []market{
			{
				ID:            "m1",
				Question:      "Will Bitcoin reach $100k by June?",
				OutcomePrices: `["0.45", "0.55"]`,
				LiquidityNum:  1200.5,
				EndDate:       "2026-06-30T00:00:00Z",
				Active:        true,
			},
			{ID: "m2", Question: "Closed market", Active: true, Closed: true},
			{ID: "m3", Question: "Inactive market", Active: false},
			{ID: "m4", Question: "   ", Active: true},
		},
	}

	out := normalizeEvent(ev)
	require.Len(t, out, 1)

	rec := out[0]
	assert.Equal(t, "m1", rec.ID)
	assert.Equal(t, markets.PlatformPolymarket, rec.Platform)
	assert.Equal(t, markets.StatusOpen, rec.Status)
	require.NotNil(t, rec.Category)
	assert.Equal(t, markets.CategoryCrypto, *rec.Category)
	require.NotNil(t, rec.YesPrice)
	assert.Equal(t, 0.45, *rec.YesPrice)
	require.NotNil(t, rec.NoPrice)
	assert.Equal(t, 0.55, *rec.NoPrice)
	require.NotNil(t, rec.Liquidity)
	assert.Equal(t, 1200.5, *rec.Liquidity)
	require.NotNil(t, rec.CloseTime)
	assert.Equal(t, "2026-06-30T00:00:00Z", rec.CloseTime.Format("2006-01-02T15:04:05Z07:00"))
}

func TestNormalizeMarketLastTradeFallback(t *testing.T) {
	m := &market{ID: "m1", Question: "q", LastTradePrice: 0.33, Active: true}

	rec := normalizeMarket(m, nil)
	require.NotNil(t, rec.YesPrice)
	assert.Equal(t, 0.33, *rec.YesPrice)
	assert.Nil(t, rec.NoPrice)
	assert.Nil(t, rec.Category)
	assert.Nil(t, rec.CloseTime)
	assert.Nil(t, rec.Liquidity)
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, shouldRetry(1, 0))
	assert.True(t, shouldRetry(1, 429))
	assert.True(t, shouldRetry(1, 503))
	assert.False(t, shouldRetry(1, 200))
	assert.False(t, shouldRetry(1, 404))
	assert.False(t, shouldRetry(5, 503))
}

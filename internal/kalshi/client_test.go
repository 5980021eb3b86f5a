package kalshi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arusso/matchbook/internal/markets"
)

func TestSidePrice(t *testing.T) {
	t.Run("last trade wins", func(t *testing.T) {
		p := sidePrice(47, 40, 50)
		require.NotNil(t, p)
		assert.Equal(t, 0.47, *p)
	})

	t.Run("bid ask mid", func(t *testing.T) {
		p := sidePrice(0, 40, 50)
		require.NotNil(t, p)
		assert.Equal(t, 0.45, *p)
	})

	t.Run("one sided quote", func(t *testing.T) {
		p := sidePrice(0, 40, 0)
		require.NotNil(t, p)
		assert.Equal(t, 0.40, *p)

		p = sidePrice(0, 0, 50)
		require.NotNil(t, p)
		assert.Equal(t, 0.50, *p)
	})

	t.Run("no quote at all", func(t *testing.T) {
		assert.Nil(t, sidePrice(0, 0, 0))
	})
}

func TestCentsToFloat(t *testing.T) {
	assert.Equal(t, 0.47, centsToFloat(47))
	assert.Equal(t, 1.0, centsToFloat(100))
	assert.Equal(t, 0.0, centsToFloat(0))
}

func TestNormalizeEvent(t *testing.T) {
	ev := &event{
		Ticker:   "BTC-100K",
		Title:    "Bitcoin above $100k?",
		Category: "Economics",
		Markets: []market{
			{
				Ticker:    "BTC-100K-JUN",
				Title:     "Bitcoin above $100k by June 30?",
				Status:    "active",
				LastPrice: 47,
				Liquidity: 150000,
				CloseTime: "2026-06-30T00:00:00Z",
			},
			{Ticker: "BTC-100K-SETTLED", Status: "settled"},
		},
	}

	out := normalizeEvent(ev)
	require.Len(t, out, 1)

	rec := out[0]
	assert.Equal(t, "BTC-100K-JUN", rec.ID)
	assert.Equal(t, markets.PlatformKalshi, rec.Platform)
	assert.Equal(t, "Bitcoin above $100k by June 30?", rec.Question)
	assert.Equal(t, markets.StatusOpen, rec.Status)
	require.NotNil(t, rec.Category)
	assert.Equal(t, markets.CategoryFinance, *rec.Category)
	require.NotNil(t, rec.YesPrice)
	assert.Equal(t, 0.47, *rec.YesPrice)
	require.NotNil(t, rec.Liquidity)
	assert.Equal(t, 1500.0, *rec.Liquidity)
	require.NotNil(t, rec.CloseTime)
}

func TestQuestionFallsBackToEventTitle(t *testing.T) {
	ev := &event{Title: "Bitcoin above $100k?"}
	m := &market{Ticker: "BTC-100K-JUN"}
	assert.Equal(t, "Bitcoin above $100k?", question(ev, m))

	m.Title = "Per-outcome phrasing"
	assert.Equal(t, "Per-outcome phrasing", question(ev, m))
}

package arb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matching"
)

func priced(platform markets.Platform, id string, yes float64) markets.Market {
	return markets.Market{
		ID:       id,
		Platform: platform,
		Question: "Will Bitcoin reach $100k by 2024?",
		YesPrice: &yes,
		Status:   markets.StatusOpen,
	}
}

func pair(src, tgt markets.Market, sim float64) matching.Result {
	return matching.Result{Source: src, Target: tgt, Similarity: sim}
}

func TestFindOpportunitiesSpreadAndProfit(t *testing.T) {
	results := []matching.Result{
		pair(priced(markets.PlatformPolymarket, "p1", 0.45), priced(markets.PlatformKalshi, "k1", 0.55), 0.85),
	}

	ops := FindOpportunities(results, 0.05)
	require.Len(t, ops, 1)
	assert.InDelta(t, 0.10, ops[0].Spread, 1e-12)
	assert.InDelta(t, 10.0, ops[0].EstimatedProfit, 1e-9)
	assert.Equal(t, 0.85, ops[0].Confidence)
	assert.Equal(t, "p1", ops[0].BuySide.ID)
	assert.Equal(t, "k1", ops[0].SellSide.ID)
}

func TestFindOpportunitiesBuysTheCheaperSide(t *testing.T) {
	// Source more expensive than target: the sides swap.
	results := []matching.Result{
		pair(priced(markets.PlatformPolymarket, "p1", 0.60), priced(markets.PlatformKalshi, "k1", 0.40), 0.9),
	}

	ops := FindOpportunities(results, 0)
	require.Len(t, ops, 1)
	assert.Equal(t, "k1", ops[0].BuySide.ID)
	assert.Equal(t, "p1", ops[0].SellSide.ID)
	assert.InDelta(t, 0.20, ops[0].Spread, 1e-12)
}

func TestFindOpportunitiesSkipsBelowMinSpread(t *testing.T) {
	results := []matching.Result{
		pair(priced(markets.PlatformPolymarket, "p1", 0.50), priced(markets.PlatformKalshi, "k1", 0.52), 0.9),
	}

	ops := FindOpportunities(results, 0.05)
	assert.Empty(t, ops)

	// minSpread <= 0 falls back to the default.
	ops = FindOpportunities(results, 0)
	require.Len(t, ops, 1)
	for _, op := range ops {
		assert.GreaterOrEqual(t, op.Spread, DefaultMinSpread)
	}
}

func TestFindOpportunitiesSkipsMissingPrices(t *testing.T) {
	noPrice := markets.Market{ID: "k1", Platform: markets.PlatformKalshi, Question: "q"}
	results := []matching.Result{
		pair(priced(markets.PlatformPolymarket, "p1", 0.45), noPrice, 0.9),
		pair(noPrice, priced(markets.PlatformPolymarket, "p2", 0.45), 0.9),
	}
	assert.Empty(t, FindOpportunities(results, 0.02))
}

func TestFindOpportunitiesSortedByProfitDesc(t *testing.T) {
	results := []matching.Result{
		pair(priced(markets.PlatformPolymarket, "p1", 0.45), priced(markets.PlatformKalshi, "k1", 0.50), 0.8),
		pair(priced(markets.PlatformPolymarket, "p2", 0.30), priced(markets.PlatformKalshi, "k2", 0.50), 0.8),
		pair(priced(markets.PlatformPolymarket, "p3", 0.40), priced(markets.PlatformKalshi, "k3", 0.50), 0.8),
	}

	ops := FindOpportunities(results, 0.02)
	require.Len(t, ops, 3)
	for i := 1; i < len(ops); i++ {
		assert.GreaterOrEqual(t, ops[i-1].EstimatedProfit, ops[i].EstimatedProfit)
	}
	assert.Equal(t, "p2", ops[0].BuySide.ID)
}

func TestFindOpportunitiesEmptyInput(t *testing.T) {
	assert.Empty(t, FindOpportunities(nil, 0.02))
}

func TestTradable(t *testing.T) {
	yes := func(p float64) *float64 { return &p }

	tests := []struct {
		name string
		m    markets.Market
		want bool
	}{
		{"mid price open", markets.Market{YesPrice: yes(0.5), Status: markets.StatusOpen}, true},
		{"no status still tradable", markets.Market{YesPrice: yes(0.5)}, true},
		{"missing price", markets.Market{Status: markets.StatusOpen}, false},
		{"zero price", markets.Market{YesPrice: yes(0), Status: markets.StatusOpen}, false},
		{"full price", markets.Market{YesPrice: yes(1), Status: markets.StatusOpen}, false},
		{"dust low", markets.Market{YesPrice: yes(0.01), Status: markets.StatusOpen}, false},
		{"dust high", markets.Market{YesPrice: yes(0.99), Status: markets.StatusOpen}, false},
		{"closed market", markets.Market{YesPrice: yes(0.5), Status: markets.StatusClosed}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tradable(&tt.m))
		})
	}
	assert.False(t, Tradable(nil))
}

func TestScreenResultsDropsUntradablePairs(t *testing.T) {
	good := pair(priced(markets.PlatformPolymarket, "p1", 0.45), priced(markets.PlatformKalshi, "k1", 0.55), 0.9)
	dust := pair(priced(markets.PlatformPolymarket, "p2", 0.01), priced(markets.PlatformKalshi, "k2", 0.55), 0.9)

	out := ScreenResults([]matching.Result{good, dust})
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].Source.ID)
}

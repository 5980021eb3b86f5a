package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func TestGroupByPlatform(t *testing.T) {
	list := []Market{
		{ID: "p1", Platform: PlatformPolymarket},
		{ID: "k1", Platform: PlatformKalshi},
		{ID: "p2", Platform: PlatformPolymarket},
		{ID: "k2", Platform: PlatformKalshi},
	}

	groups := GroupByPlatform(list)
	require.Len(t, groups, 2)

	// Relative order within each group is preserved.
	poly := groups[PlatformPolymarket]
	require.Len(t, poly, 2)
	assert.Equal(t, "p1", poly[0].ID)
	assert.Equal(t, "p2", poly[1].ID)

	kalshi := groups[PlatformKalshi]
	require.Len(t, kalshi, 2)
	assert.Equal(t, "k1", kalshi[0].ID)
	assert.Equal(t, "k2", kalshi[1].ID)
}

func TestGroupByPlatformEmpty(t *testing.T) {
	assert.Empty(t, GroupByPlatform(nil))
}

func TestFindBestPrice(t *testing.T) {
	list := []Market{
		{ID: "a", YesPrice: fptr(0.40)},
		{ID: "b", YesPrice: fptr(0.30), NoPrice: fptr(0.65)},
		{ID: "c", NoPrice: fptr(0.55)},
	}

	best := FindBestPrice(list, SideYes)
	require.NotNil(t, best)
	assert.Equal(t, "b", best.ID)

	best = FindBestPrice(list, SideNo)
	require.NotNil(t, best)
	assert.Equal(t, "c", best.ID)
}

func TestFindBestPriceNoneDefined(t *testing.T) {
	assert.Nil(t, FindBestPrice(nil, SideYes))
	assert.Nil(t, FindBestPrice([]Market{}, SideYes))
	assert.Nil(t, FindBestPrice([]Market{{ID: "a"}, {ID: "b"}}, SideYes))
}

func TestAggregateLiquidity(t *testing.T) {
	list := []Market{
		{ID: "a", Liquidity: fptr(100)},
		{ID: "b"},
		{ID: "c", Liquidity: fptr(250.5)},
	}
	assert.InDelta(t, 350.5, AggregateLiquidity(list), 1e-9)
	assert.Equal(t, 0.0, AggregateLiquidity(nil))
}

func TestMarketPrice(t *testing.T) {
	m := Market{YesPrice: fptr(0.4), NoPrice: fptr(0.6)}
	require.NotNil(t, m.Price(SideYes))
	assert.Equal(t, 0.4, *m.Price(SideYes))
	require.NotNil(t, m.Price(SideNo))
	assert.Equal(t, 0.6, *m.Price(SideNo))
	assert.Nil(t, m.Price("maybe"))

	var nilMarket *Market
	assert.Nil(t, nilMarket.Price(SideYes))
}

func TestMarketKey(t *testing.T) {
	m := Market{ID: "abc", Platform: PlatformKalshi}
	assert.Equal(t, "kalshi:abc", m.Key())

	var nilMarket *Market
	assert.Equal(t, "", nilMarket.Key())
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arusso/matchbook/internal/arb"
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matches"
	"github.com/arusso/matchbook/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

func sampleMarket(platform markets.Platform, id string, yes float64) markets.Market {
	crypto := markets.CategoryCrypto
	closeTime := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	liquidity := 1200.5
	return markets.Market{
		ID:        id,
		Platform:  platform,
		Question:  "Will Bitcoin reach $100k by June?",
		Category:  &crypto,
		CloseTime: &closeTime,
		YesPrice:  &yes,
		Liquidity: &liquidity,
		Status:    markets.StatusOpen,
	}
}

func TestUpsertAndListMarkets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m := sampleMarket(markets.PlatformPolymarket, "p1", 0.45)
	require.NoError(t, store.UpsertSnapshot(ctx, models.NewSnapshot(m, time.Now().UTC())))

	got, err := store.ListMarkets(ctx, markets.PlatformPolymarket)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, m.Question, got[0].Question)
	require.NotNil(t, got[0].Category)
	assert.Equal(t, markets.CategoryCrypto, *got[0].Category)
	require.NotNil(t, got[0].YesPrice)
	assert.Equal(t, 0.45, *got[0].YesPrice)
	assert.Nil(t, got[0].NoPrice)
	require.NotNil(t, got[0].CloseTime)
	assert.True(t, got[0].CloseTime.Equal(*m.CloseTime))
	assert.Equal(t, markets.StatusOpen, got[0].Status)

	// Upsert with new state replaces the row instead of duplicating it.
	updated := m
	newPrice := 0.50
	updated.YesPrice = &newPrice
	updated.Status = markets.StatusClosed
	require.NoError(t, store.UpsertSnapshot(ctx, models.NewSnapshot(updated, time.Now().UTC())))

	got, err = store.ListMarkets(ctx, markets.PlatformPolymarket)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.50, *got[0].YesPrice)
	assert.Equal(t, markets.StatusClosed, got[0].Status)
}

func TestGetMarketStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, found, err := store.GetMarketStatus(ctx, markets.PlatformKalshi, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	m := sampleMarket(markets.PlatformKalshi, "k1", 0.55)
	require.NoError(t, store.UpsertSnapshot(ctx, models.NewSnapshot(m, time.Now().UTC())))

	status, found, err := store.GetMarketStatus(ctx, markets.PlatformKalshi, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, markets.StatusOpen, status)
}

func TestUpsertSnapshotsBatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snaps := []models.MarketSnapshot{
		models.NewSnapshot(sampleMarket(markets.PlatformPolymarket, "p1", 0.45), time.Now().UTC()),
		models.NewSnapshot(sampleMarket(markets.PlatformPolymarket, "p2", 0.30), time.Now().UTC()),
		models.NewSnapshot(sampleMarket(markets.PlatformKalshi, "k1", 0.55), time.Now().UTC()),
	}
	require.NoError(t, store.UpsertSnapshots(ctx, snaps))

	poly, err := store.ListMarkets(ctx, markets.PlatformPolymarket)
	require.NoError(t, err)
	assert.Len(t, poly, 2)

	kalshi, err := store.ListMarkets(ctx, markets.PlatformKalshi)
	require.NoError(t, err)
	assert.Len(t, kalshi, 1)
}

func TestInsertOpportunityAndListPairIDs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	src := sampleMarket(markets.PlatformPolymarket, "p1", 0.45)
	tgt := sampleMarket(markets.PlatformKalshi, "k1", 0.55)

	payload := &matches.Payload{
		Version:    1,
		PairID:     matches.PairID(&src, &tgt),
		Similarity: 0.9,
		MatchedAt:  time.Now().UTC(),
		Source:     src,
		Target:     tgt,
		Verdict:    &matches.ResolutionVerdict{Valid: true, Reason: "same event"},
	}
	op := &arb.Opportunity{
		BuySide:         src,
		SellSide:        tgt,
		Spread:          0.10,
		EstimatedProfit: 10,
		Confidence:      0.9,
	}

	require.NoError(t, store.InsertOpportunity(ctx, payload, op))

	pairIDs, err := store.ListPairIDs(ctx, markets.PlatformPolymarket, "p1")
	require.NoError(t, err)
	require.Len(t, pairIDs, 1)
	assert.Equal(t, payload.PairID, pairIDs[0])

	// The sell side resolves to the same pair.
	pairIDs, err = store.ListPairIDs(ctx, markets.PlatformKalshi, "k1")
	require.NoError(t, err)
	require.Len(t, pairIDs, 1)

	pairIDs, err = store.ListPairIDs(ctx, markets.PlatformKalshi, "unrelated")
	require.NoError(t, err)
	assert.Empty(t, pairIDs)
}

func TestClearAndDropTables(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertSnapshot(ctx, models.NewSnapshot(sampleMarket(markets.PlatformPolymarket, "p1", 0.45), time.Now().UTC())))

	require.NoError(t, store.ClearTables(ctx))
	got, err := store.ListMarkets(ctx, markets.PlatformPolymarket)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.DropTables(ctx))
	_, err = store.ListMarkets(ctx, markets.PlatformPolymarket)
	assert.Error(t, err)
}

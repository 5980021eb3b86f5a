package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arusso/matchbook/internal/cache"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
	sqlstore "github.com/arusso/matchbook/internal/storage/sqlite"
)

// The poller watches for markets leaving the open state. When a live
// snapshot reports closed or resolved while the stored record still says
// open, every recorded opportunity involving that market is dropped from the
// alert cache so stale pairs cannot re-alert after one side settles.
func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	marketCache, err := cache.NewRedisMarketCache(
		envString("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		envInt("REDIS_DB", 0),
		envDuration("MARKET_CACHE_TTL", 30*time.Minute),
		"market",
	)
	if err != nil {
		logging.Fatalf("[resolution-poller] redis: %v", err)
	}
	defer marketCache.Close()

	oppCache, err := cache.NewRedisOpportunityCache(
		envString("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		envInt("REDIS_DB", 0),
		envDuration("OPPORTUNITY_CACHE_TTL", 240*time.Hour),
		"pair_best",
	)
	if err != nil {
		logging.Fatalf("[resolution-poller] opportunity cache: %v", err)
	}
	defer oppCache.Close()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[resolution-poller] open sqlite: %v", err)
	}
	defer store.Close()

	interval := envDuration("RESOLUTION_POLL_INTERVAL", 5*time.Minute)
	logging.Infof("[resolution-poller] checking status transitions every %s", interval)

	for {
		if err := runPass(ctx, marketCache, oppCache, store); err != nil {
			logging.Errorf("[resolution-poller] pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			logging.Infof("[resolution-poller] shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func runPass(ctx context.Context, marketCache cache.MarketCache, oppCache cache.OpportunityCache, store *sqlstore.Store) error {
	platforms, err := marketCache.Platforms(ctx)
	if err != nil {
		return err
	}

	transitions := 0
	for _, platform := range platforms {
		snaps, err := marketCache.ListPlatform(ctx, platform)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			m := snap.Market
			if m.Status == markets.StatusOpen || m.Status == "" {
				continue
			}
			stored, known, err := store.GetMarketStatus(ctx, m.Platform, m.ID)
			if err != nil {
				logging.Errorf("[resolution-poller] status lookup %s: %v", m.Key(), err)
				continue
			}
			if known && stored != markets.StatusOpen {
				continue
			}

			logging.Infof("[resolution-poller] %s transitioned %s -> %s", m.Key(), stored, m.Status)
			dropped, err := dropPairs(ctx, oppCache, store, &m)
			if err != nil {
				logging.Errorf("[resolution-poller] drop pairs for %s: %v", m.Key(), err)
				continue
			}
			if dropped > 0 {
				logging.Infof("[resolution-poller] dropped %d cached opportunity pair(s) for %s", dropped, m.Key())
			}
			// Record the new status so the transition is not re-reported
			// before the ingest worker catches up.
			if err := store.UpsertSnapshot(ctx, snap); err != nil {
				logging.Errorf("[resolution-poller] record status %s: %v", m.Key(), err)
			}
			transitions++
		}
	}
	logging.Debugf("[resolution-poller] pass complete, %d transition(s)", transitions)
	return nil
}

func dropPairs(ctx context.Context, oppCache cache.OpportunityCache, store *sqlstore.Store, m *markets.Market) (int, error) {
	pairIDs, err := store.ListPairIDs(ctx, m.Platform, m.ID)
	if err != nil {
		return 0, err
	}
	dropped := 0
	for _, pairID := range pairIDs {
		if err := oppCache.Delete(ctx, pairID); err != nil {
			logging.Errorf("[resolution-poller] delete pair %s: %v", pairID, err)
			continue
		}
		dropped++
	}
	return dropped, nil
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}

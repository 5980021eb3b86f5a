package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arusso/matchbook/internal/cache"
	kafkautil "github.com/arusso/matchbook/internal/kafka"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/models"
	sqlstore "github.com/arusso/matchbook/internal/storage/sqlite"
	"github.com/arusso/matchbook/internal/workers"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv("SNAPSHOT_KAFKA_TOPIC", kafkautil.DefaultSnapshotTopic)
	group := envString("SNAPSHOT_WORKER_GROUP", "snapshot-workers")
	workerCount := envInt("SNAPSHOT_WORKERS", 2)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[snapshot-worker] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafkautil.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[snapshot-worker] ensure topic warning: %v", err)
	}
	cancelEnsure()

	marketCache, err := cache.NewRedisMarketCache(
		envString("REDIS_ADDR", "localhost:6379"),
		os.Getenv("REDIS_PASSWORD"),
		envInt("REDIS_DB", 0),
		envDuration("MARKET_CACHE_TTL", 30*time.Minute),
		"market",
	)
	if err != nil {
		logging.Fatalf("[snapshot-worker] redis: %v", err)
	}
	defer marketCache.Close()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[snapshot-worker] open sqlite: %v", err)
	}
	defer store.Close()

	processor := workers.NewProcessor(marketCache, store)

	logging.Infof("[snapshot-worker] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, func(ctx context.Context, snap *models.MarketSnapshot) error {
		if err := processor.Handle(ctx, snap); err != nil {
			return err
		}
		logging.Debugf("[snapshot-worker] upserted %s", snap.Market.Key())
		return nil
	})
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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arusso/matchbook/internal/collectors"
	kafkautil "github.com/arusso/matchbook/internal/kafka"
	"github.com/arusso/matchbook/internal/kalshi"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/models"
	"github.com/arusso/matchbook/internal/queue"
	sqlstore "github.com/arusso/matchbook/internal/storage/sqlite"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[kalshi] open sqlite: %v", err)
	}
	defer store.Close()

	writer := setupWriter(ctx, "SNAPSHOT_KAFKA_TOPIC", kafkautil.DefaultSnapshotTopic)
	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	collector := kalshi.NewClient(kalshi.Config{})
	opts := collectors.FetchOptions{
		Pages:    envInt("KALSHI_PAGES", 1),
		PageSize: envInt("KALSHI_PAGE_SIZE", 100),
	}
	interval := envDuration("KALSHI_POLL_INTERVAL", 30*time.Second)

	collectors.RunLoop(ctx, collector, opts, interval, func(ctx context.Context, list []markets.Market) error {
		logging.Infof("[kalshi] fetched %d markets", len(list))
		if err := store.UpsertSnapshots(ctx, stampSnapshots(list)); err != nil {
			return err
		}
		if err := queue.PublishSnapshots(ctx, writer, list); err != nil {
			logging.Errorf("[kalshi] publish error: %v", err)
		}
		return nil
	})
}

func stampSnapshots(list []markets.Market) []models.MarketSnapshot {
	captured := time.Now().UTC()
	out := make([]models.MarketSnapshot, 0, len(list))
	for _, m := range list {
		out = append(out, models.NewSnapshot(m, captured))
	}
	return out
}

func setupWriter(ctx context.Context, envKey, fallbackTopic string) *kafkago.Writer {
	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv(envKey, fallbackTopic)
	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		log.Printf("[kalshi] kafka unavailable: %v", err)
		return nil
	}
	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafkautil.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		log.Printf("[kalshi] ensure topic warning: %v", err)
	}
	cancelEnsure()
	return kafkautil.NewWriter(brokers, topic)
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
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

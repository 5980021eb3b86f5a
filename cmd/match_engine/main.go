package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/arusso/matchbook/internal/cache"
	kafkautil "github.com/arusso/matchbook/internal/kafka"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matches"
	"github.com/arusso/matchbook/internal/matching"
	"github.com/arusso/matchbook/internal/models"
)

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
		logging.Fatalf("[match-engine] redis: %v", err)
	}
	defer marketCache.Close()

	writer, topic := setupWriter(ctx)
	defer writer.Close()

	matcher := matching.NewMatcher(matching.Config{
		MinSimilarity:        envFloat("MATCH_MIN_SIMILARITY", 0),
		MaxCloseDateDiffDays: envFloat("MATCH_CLOSE_WINDOW_DAYS", 0),
	})
	matchLog := matching.NewLogger(matching.ParseLogMode(os.Getenv("MATCH_LOG")))
	interval := envDuration("MATCH_INTERVAL", time.Minute)

	logging.Infof("[match-engine] scanning every %s, publishing to %s (threshold %.2f)",
		interval, topic, matcher.Config().MinSimilarity)

	for {
		if err := runPass(ctx, marketCache, matcher, matchLog, writer); err != nil {
			logging.Errorf("[match-engine] pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			logging.Infof("[match-engine] shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// runPass matches every ordered pair of distinct platforms currently in the
// cache and publishes the accepted pairings.
func runPass(ctx context.Context, marketCache cache.MarketCache, matcher *matching.Matcher, matchLog *matching.Logger, writer *kafkago.Writer) error {
	platforms, err := marketCache.Platforms(ctx)
	if err != nil {
		return err
	}
	if len(platforms) < 2 {
		logging.Debugf("[match-engine] %d platform(s) cached, nothing to match", len(platforms))
		return nil
	}

	listings := make(map[markets.Platform][]markets.Market, len(platforms))
	for _, p := range platforms {
		snaps, err := marketCache.ListPlatform(ctx, p)
		if err != nil {
			return err
		}
		listings[p] = snapshotMarkets(snaps)
	}

	total := 0
	for i, src := range platforms {
		for j, tgt := range platforms {
			if i == j {
				continue
			}
			set := matcher.FindMatches(listings[src], listings[tgt])
			for _, res := range set.Matches {
				matchLog.LogMatch(&res, matcher.Config().MinSimilarity)
				if err := publishMatch(ctx, writer, res); err != nil {
					logging.Errorf("[match-engine] publish %s/%s: %v", res.Source.Key(), res.Target.Key(), err)
					continue
				}
				total++
			}
			logging.Debugf("[match-engine] %s -> %s: %d matched, %d unmatched",
				src, tgt, len(set.Matches), len(set.Unmatched))
		}
	}
	logging.Infof("[match-engine] pass complete, %d pairings published", total)
	return nil
}

func snapshotMarkets(snaps []models.MarketSnapshot) []markets.Market {
	out := make([]markets.Market, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.Market)
	}
	return out
}

func publishMatch(ctx context.Context, writer *kafkago.Writer, res matching.Result) error {
	payload := matches.NewPayload(res)
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(payload.PairID),
		Value: value,
	})
}

func setupWriter(ctx context.Context) (*kafkago.Writer, string) {
	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv("MATCH_KAFKA_TOPIC", kafkautil.DefaultMatchTopic)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[match-engine] wait for broker: %v", err)
	}

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	defer cancelEnsure()
	if err := kafkautil.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[match-engine] ensure topic warning: %v", err)
	}

	return kafkautil.NewWriter(brokers, topic), topic
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
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

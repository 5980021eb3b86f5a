package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arusso/matchbook/internal/arb"
	"github.com/arusso/matchbook/internal/cache"
	kafkautil "github.com/arusso/matchbook/internal/kafka"
	"github.com/arusso/matchbook/internal/llm"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/matches"
	"github.com/arusso/matchbook/internal/matching"
	sqlstore "github.com/arusso/matchbook/internal/storage/sqlite"
	"github.com/arusso/matchbook/internal/validator"
	"github.com/arusso/matchbook/internal/workers"
)

// engine consumes matched pairs, screens and prices them, and records the
// surviving opportunities.
type engine struct {
	minSpread     float64
	opportunities cache.OpportunityCache
	verdicts      cache.VerdictCache
	validator     *validator.Service
	store         *sqlstore.Store
}

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	brokers := kafkautil.Brokers()
	topic := kafkautil.TopicFromEnv("MATCH_KAFKA_TOPIC", kafkautil.DefaultMatchTopic)
	group := envString("ARB_ENGINE_GROUP", "arb-engine")

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafkautil.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[arb-engine] wait for broker: %v", err)
	}
	cancel()

	redisAddr := envString("REDIS_ADDR", "localhost:6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := envInt("REDIS_DB", 0)

	oppCache, err := cache.NewRedisOpportunityCache(
		redisAddr, redisPassword, redisDB,
		envDuration("OPPORTUNITY_CACHE_TTL", 240*time.Hour), "pair_best")
	if err != nil {
		logging.Fatalf("[arb-engine] opportunity cache: %v", err)
	}
	defer oppCache.Close()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[arb-engine] open sqlite: %v", err)
	}
	defer store.Close()

	eng := &engine{
		minSpread:     envFloat("ARB_MIN_SPREAD", arb.DefaultMinSpread),
		opportunities: oppCache,
		store:         store,
	}

	// The resolution validator is optional: without an API key the engine
	// alerts on lexical similarity alone.
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		client, err := llm.New(llm.Config{
			APIKey:  apiKey,
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("OPENAI_MODEL"),
		})
		if err != nil {
			logging.Fatalf("[arb-engine] llm client: %v", err)
		}
		svc, err := validator.NewService(validator.Config{LLMClient: client})
		if err != nil {
			logging.Fatalf("[arb-engine] validator: %v", err)
		}
		verdictCache, err := cache.NewRedisVerdictCache(
			redisAddr, redisPassword, redisDB,
			envDuration("VERDICT_CACHE_TTL", 240*time.Hour), "pair_verdict")
		if err != nil {
			logging.Fatalf("[arb-engine] verdict cache: %v", err)
		}
		defer verdictCache.Close()
		eng.validator = svc
		eng.verdicts = verdictCache
		logging.Infof("[arb-engine] resolution validator enabled")
	} else {
		logging.Infof("[arb-engine] no OPENAI_API_KEY, resolution validator disabled")
	}

	logging.Infof("[arb-engine] consuming %s (min spread %.4f)", topic, eng.minSpread)
	workers.RunPayloads(ctx, brokers, topic, group, envInt("ARB_WORKERS", 1), eng.handle)
}

func (e *engine) handle(ctx context.Context, payload *matches.Payload) error {
	screened := arb.ScreenResults([]matching.Result{payload.Result()})
	ops := arb.FindOpportunities(screened, e.minSpread)
	if len(ops) == 0 {
		logging.Debugf("[arb-engine] pair %s: no opportunity", shortID(payload.PairID))
		return nil
	}
	op := ops[0]

	// Re-alert only when the pair's gap strictly improves on what was
	// already reported.
	prev, seen, err := e.opportunities.Get(ctx, payload.PairID)
	if err != nil {
		logging.Errorf("[arb-engine] opportunity cache get: %v", err)
	}
	if seen && op.EstimatedProfit <= prev.EstimatedProfit {
		logging.Debugf("[arb-engine] pair %s: profit %.2f not above recorded %.2f",
			shortID(payload.PairID), op.EstimatedProfit, prev.EstimatedProfit)
		return nil
	}

	if e.validator != nil {
		valid, err := e.checkResolution(ctx, payload)
		if err != nil {
			return err
		}
		if !valid {
			logging.Infof("[arb-engine] pair %s rejected by resolution validator", shortID(payload.PairID))
			return nil
		}
	}

	if err := e.opportunities.Set(ctx, payload.PairID, cache.OpportunityRecord{
		Spread:          op.Spread,
		EstimatedProfit: op.EstimatedProfit,
		Confidence:      op.Confidence,
		UpdatedAt:       time.Now().UTC(),
	}); err != nil {
		logging.Errorf("[arb-engine] opportunity cache set: %v", err)
	}

	payload.Opportunity = &op
	if err := e.store.InsertOpportunity(ctx, payload, &op); err != nil {
		logging.Errorf("[arb-engine] insert opportunity: %v", err)
	}

	logging.Infof("[arb-engine] ALERT %s: buy %s %q @ %.3f, sell %s %q @ %.3f, spread %.3f, est profit %.2f, confidence %.3f",
		shortID(payload.PairID),
		op.BuySide.Platform, op.BuySide.Question, deref(op.BuySide.YesPrice),
		op.SellSide.Platform, op.SellSide.Question, deref(op.SellSide.YesPrice),
		op.Spread, op.EstimatedProfit, op.Confidence)
	return nil
}

// checkResolution consults the verdict cache before spending an LLM call.
// Verdicts are keyed on both question texts, so a reworded listing gets
// re-checked.
func (e *engine) checkResolution(ctx context.Context, payload *matches.Payload) (bool, error) {
	key := matches.VerdictKey(&payload.Source, &payload.Target)
	if valid, found, err := e.verdicts.Get(ctx, key); err != nil {
		logging.Errorf("[arb-engine] verdict cache get: %v", err)
	} else if found {
		return valid, nil
	}

	verdict, err := e.validator.Validate(ctx, payload)
	if err != nil {
		return false, err
	}
	payload.Verdict = verdict
	if err := e.verdicts.Set(ctx, key, verdict.Valid); err != nil {
		logging.Errorf("[arb-engine] verdict cache set: %v", err)
	}
	if !verdict.Valid {
		logging.Debugf("[arb-engine] pair %s invalid: %s", shortID(payload.PairID), verdict.Reason)
	}
	return verdict.Valid, nil
}

func shortID(pairID string) string {
	if len(pairID) > 12 {
		return pairID[:12]
	}
	return pairID
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
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

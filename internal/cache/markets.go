package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/models"
)

// MarketCache holds the latest snapshot per market with a per-platform
// index, so the match engine can load a platform's full listing in one call.
// Snapshots carry a TTL: a market that stops being collected ages out.
type MarketCache interface {
	Put(ctx context.Context, snap models.MarketSnapshot) error
	Get(ctx context.Context, platform markets.Platform, id string) (*models.MarketSnapshot, bool, error)
	ListPlatform(ctx context.Context, platform markets.Platform) ([]models.MarketSnapshot, error)
	Platforms(ctx context.Context) ([]markets.Platform, error)
	Close() error
}

type redisMarketCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisMarketCache builds the cache. TTL defaults to 30 minutes, prefix
// to "market".
func NewRedisMarketCache(addr, password string, db int, ttl time.Duration, prefix string) (MarketCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if prefix == "" {
		prefix = "market"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisMarketCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisMarketCache) key(platform markets.Platform, id string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, platform, id)
}

func (c *redisMarketCache) indexKey(platform markets.Platform) string {
	return fmt.Sprintf("%s-index:%s", c.prefix, platform)
}

func (c *redisMarketCache) platformsKey() string {
	return fmt.Sprintf("%s-platforms", c.prefix)
}

func (c *redisMarketCache) Put(ctx context.Context, snap models.MarketSnapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	m := snap.Market
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(m.Platform, m.ID), payload, c.ttl)
	pipe.SAdd(ctx, c.indexKey(m.Platform), m.ID)
	pipe.SAdd(ctx, c.platformsKey(), string(m.Platform))
	_, err = pipe.Exec(ctx)
	return err
}

func (c *redisMarketCache) Get(ctx context.Context, platform markets.Platform, id string) (*models.MarketSnapshot, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(platform, id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snap models.MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

// ListPlatform returns the platform's live snapshots sorted by market ID.
// IDs whose snapshot has expired are pruned from the index as they are
// encountered. The deterministic order keeps greedy matching reproducible
// between runs over the same cache state.
func (c *redisMarketCache) ListPlatform(ctx context.Context, platform markets.Platform) ([]models.MarketSnapshot, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	ids, err := c.client.SMembers(ctx, c.indexKey(platform)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	out := make([]models.MarketSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, ok, err := c.Get(ctx, platform, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.client.SRem(ctx, c.indexKey(platform), id)
			continue
		}
		out = append(out, *snap)
	}
	return out, nil
}

func (c *redisMarketCache) Platforms(ctx context.Context) ([]markets.Platform, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	names, err := c.client.SMembers(ctx, c.platformsKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]markets.Platform, 0, len(names))
	for _, n := range names {
		out = append(out, markets.Platform(n))
	}
	return out, nil
}

func (c *redisMarketCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

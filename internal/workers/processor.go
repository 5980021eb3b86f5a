package workers

import (
	"context"
	"fmt"

	"github.com/arusso/matchbook/internal/cache"
	"github.com/arusso/matchbook/internal/models"
	"github.com/arusso/matchbook/internal/storage/sqlite"
)

// Processor ingests snapshots into the market cache and the SQLite store.
// Either destination may be nil; ingestion proceeds with whatever is wired.
type Processor struct {
	markets cache.MarketCache
	store   *sqlite.Store
}

func NewProcessor(markets cache.MarketCache, store *sqlite.Store) *Processor {
	return &Processor{markets: markets, store: store}
}

func (p *Processor) Handle(ctx context.Context, snap *models.MarketSnapshot) error {
	if snap == nil {
		return nil
	}
	if snap.Market.ID == "" || snap.Market.Platform == "" {
		return fmt.Errorf("snapshot missing market identity")
	}

	if p.markets != nil {
		if err := p.markets.Put(ctx, *snap); err != nil {
			return fmt.Errorf("market cache put %s: %w", snap.Market.Key(), err)
		}
	}
	if p.store != nil {
		if err := p.store.UpsertSnapshot(ctx, *snap); err != nil {
			return fmt.Errorf("sqlite upsert %s: %w", snap.Market.Key(), err)
		}
	}
	return nil
}

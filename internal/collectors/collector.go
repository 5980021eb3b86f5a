package collectors

import (
	"context"

	"github.com/arusso/matchbook/internal/markets"
)

// FetchOptions control how many pages/items a collector should fetch per
// poll.
type FetchOptions struct {
	Pages    int
	PageSize int
}

// Collector is implemented by platform-specific clients (Polymarket,
// Kalshi, ...). Each collector fetches its platform's listings and returns
// them normalized, so downstream consumers never see raw platform payloads.
type Collector interface {
	Name() string
	Fetch(ctx context.Context, opts FetchOptions) ([]markets.Market, error)
}

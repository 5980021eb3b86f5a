package collectors

import (
	"context"
	"time"

	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
)

// RunLoop polls a collector on the given interval and hands each batch to
// handleFn. A fetch or handler error is logged and the loop keeps going; the
// loop exits only when ctx is done. When interval is zero the loop re-polls
// immediately and rate limiting is left to the collector's HTTP client.
func RunLoop(ctx context.Context, collector Collector, opts FetchOptions, interval time.Duration, handleFn func(context.Context, []markets.Market) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		list, err := collector.Fetch(ctx, opts)
		if err != nil {
			logging.Errorf("[%s] fetch failed: %v", collector.Name(), err)
		} else if handleFn != nil && len(list) > 0 {
			if err := handleFn(ctx, list); err != nil {
				logging.Errorf("[%s] handler error: %v", collector.Name(), err)
			}
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}
}

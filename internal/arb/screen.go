package arb

import (
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matching"
)

const epsilon = 1e-9

// Quote thresholds for the dust screen. Prices hugging 0 or 1 are usually
// longshot dust or already-decided markets where the quoted gap is not
// executable.
const (
	dustLow  = 0.02
	dustHigh = 0.98
)

// Tradable reports whether a market's quotes look executable enough to feed
// the detector. It rejects missing or out-of-range yes prices and dust
// quotes; callers that want the raw detector behavior simply skip the
// screen.
func Tradable(m *markets.Market) bool {
	if m == nil || m.YesPrice == nil {
		return false
	}
	p := *m.YesPrice
	if p <= epsilon || p >= 1-epsilon {
		return false
	}
	if p < dustLow || p > dustHigh {
		return false
	}
	if m.Status != "" && m.Status != markets.StatusOpen {
		return false
	}
	return true
}

// ScreenResults drops matched pairs where either side fails the tradability
// screen.
func ScreenResults(results []matching.Result) []matching.Result {
	out := results[:0:0]
	for _, r := range results {
		if Tradable(&r.Source) && Tradable(&r.Target) {
			out = append(out, r)
		}
	}
	return out
}

package arb

import (
	"sort"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matching"
)

const (
	// DefaultMinSpread is the smallest absolute yes-price gap worth
	// reporting.
	DefaultMinSpread = 0.02
	// referenceNotional is the fixed position size the profit estimate is
	// quoted against. The estimate is illustrative: no fees, slippage, or
	// capital efficiency are modeled.
	referenceNotional = 100.0
)

// Opportunity is a price discrepancy between two matched markets.
type Opportunity struct {
	BuySide         markets.Market `json:"buy_side"`
	SellSide        markets.Market `json:"sell_side"`
	Spread          float64        `json:"spread"`
	EstimatedProfit float64        `json:"estimated_profit"`
	// Confidence is the similarity of the originating match, copied as is.
	Confidence float64 `json:"confidence"`
}

// FindOpportunities derives opportunities from matched pairs, highest
// estimated profit first. Pairs missing a yes price on either side or with a
// spread under minSpread (DefaultMinSpread when minSpread <= 0) are skipped.
func FindOpportunities(results []matching.Result, minSpread float64) []Opportunity {
	if minSpread <= 0 {
		minSpread = DefaultMinSpread
	}

	var ops []Opportunity
	for _, res := range results {
		src, tgt := res.Source, res.Target
		if src.YesPrice == nil || tgt.YesPrice == nil {
			continue
		}
		// Cheap side is the buy, expensive side the sell.
		spread := *tgt.YesPrice - *src.YesPrice
		buy, sell := src, tgt
		if spread < 0 {
			spread = -spread
			buy, sell = tgt, src
		}
		if spread < minSpread {
			continue
		}
		ops = append(ops, Opportunity{
			BuySide:         buy,
			SellSide:        sell,
			Spread:          spread,
			EstimatedProfit: spread * referenceNotional,
			Confidence:      res.Similarity,
		})
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].EstimatedProfit > ops[j].EstimatedProfit
	})
	return ops
}

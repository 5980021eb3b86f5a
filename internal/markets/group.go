package markets

// GroupByPlatform partitions markets by platform, preserving the relative
// order of records within each group.
func GroupByPlatform(list []Market) map[Platform][]Market {
	groups := make(map[Platform][]Market)
	for _, m := range list {
		groups[m.Platform] = append(groups[m.Platform], m)
	}
	return groups
}

// FindBestPrice returns the market with the lowest defined price for the
// given side. Markets without a price for that side are skipped; nil is
// returned when no market carries one.
func FindBestPrice(list []Market, side Side) *Market {
	var best *Market
	var bestPrice float64
	for i := range list {
		price := list[i].Price(side)
		if price == nil {
			continue
		}
		if best == nil || *price < bestPrice {
			best = &list[i]
			bestPrice = *price
		}
	}
	return best
}

// AggregateLiquidity sums liquidity across markets, counting missing
// liquidity as zero.
func AggregateLiquidity(list []Market) float64 {
	total := 0.0
	for _, m := range list {
		if m.Liquidity != nil {
			total += *m.Liquidity
		}
	}
	return total
}

package matching

import (
	"sort"

	"github.com/arusso/matchbook/internal/markets"
)

// Matcher scores and pairs markets with one immutable Config. It holds no
// other state, so a single Matcher may be used from multiple goroutines as
// long as each call receives its own input slices.
type Matcher struct {
	cfg Config
}

// NewMatcher builds a matcher, filling zero-valued Config fields with
// defaults.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Result is one accepted source/target pairing.
type Result struct {
	Source     markets.Market `json:"source"`
	Target     markets.Market `json:"target"`
	Similarity float64        `json:"similarity"`
	Scores     SubScores      `json:"scores"`
}

// ResultSet partitions the source list: every source market lands in exactly
// one of Matches or Unmatched.
type ResultSet struct {
	Matches   []Result         `json:"matches"`
	Unmatched []markets.Market `json:"unmatched"`
}

// FindMatches pairs each source market with its best cross-platform target.
//
// The pass is greedy and order dependent: sources are visited in input
// order, each scans the whole target list, a candidate replaces the current
// best only on strictly greater similarity (ties keep the earlier target),
// and an accepted target is consumed for the rest of the run. Same-platform
// candidates are never considered. This is deliberately not an optimal
// bipartite assignment.
func (m *Matcher) FindMatches(source, target []markets.Market) ResultSet {
	set := ResultSet{}
	consumed := make([]bool, len(target))

	for _, src := range source {
		bestIdx := -1
		bestSim := 0.0
		var bestScores SubScores

		for i := range target {
			if consumed[i] {
				continue
			}
			if target[i].Platform == src.Platform {
				continue
			}
			scores := m.Score(&src, &target[i])
			sim := m.Aggregate(scores)
			if bestIdx == -1 || sim > bestSim {
				bestIdx = i
				bestSim = sim
				bestScores = scores
			}
		}

		if bestIdx >= 0 && bestSim >= m.cfg.MinSimilarity {
			consumed[bestIdx] = true
			set.Matches = append(set.Matches, Result{
				Source:     src,
				Target:     target[bestIdx],
				Similarity: bestSim,
				Scores:     bestScores,
			})
		} else {
			set.Unmatched = append(set.Unmatched, src)
		}
	}
	return set
}

// FindMatchesFor ranks the candidates most similar to one market,
// best first, truncated to limit (DefaultMatchLimit when limit <= 0).
//
// Unlike FindMatches there is no platform exclusion and no consumption: the
// only skip is the market itself (same ID), and a candidate may appear in
// the results of any number of queries.
func (m *Matcher) FindMatchesFor(market markets.Market, candidates []markets.Market, limit int) []Result {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	var results []Result
	for i := range candidates {
		if candidates[i].ID == market.ID {
			continue
		}
		scores := m.Score(&market, &candidates[i])
		sim := m.Aggregate(scores)
		if sim < m.cfg.MinSimilarity {
			continue
		}
		results = append(results, Result{
			Source:     market,
			Target:     candidates[i],
			Similarity: sim,
			Scores:     scores,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

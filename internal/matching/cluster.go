package matching

import "github.com/arusso/matchbook/internal/markets"

const clusterKeyLen = 50

// Cluster partitions markets into same-topic groups, keyed by the first 50
// characters of the seed market's normalized question.
//
// The pass is eager and order dependent: each unassigned record in input
// order seeds a cluster and immediately claims every later-scanned
// unassigned record scoring at or above the similarity threshold. Clusters
// smaller than minSize (DefaultMinClusterSize when minSize <= 0) are
// discarded, and their members stay assigned for the rest of the run, so a
// record joins at most one cluster but may end up in none. Distinct clusters
// with identical truncated keys overwrite each other in the returned map;
// this sharp edge is accepted rather than disambiguated.
func (m *Matcher) Cluster(list []markets.Market, minSize int) map[string][]markets.Market {
	if minSize <= 0 {
		minSize = DefaultMinClusterSize
	}

	clusters := make(map[string][]markets.Market)
	assigned := make([]bool, len(list))

	for i := range list {
		if assigned[i] {
			continue
		}
		seed := &list[i]
		assigned[i] = true
		group := []markets.Market{list[i]}

		for j := range list {
			if j == i || assigned[j] {
				continue
			}
			sim := m.Aggregate(m.Score(seed, &list[j]))
			if sim >= m.cfg.MinSimilarity {
				assigned[j] = true
				group = append(group, list[j])
			}
		}

		if len(group) >= minSize {
			clusters[clusterKey(seed.Question)] = group
		}
	}
	return clusters
}

func clusterKey(question string) string {
	norm := normalizeQuestion(question)
	if len(norm) > clusterKeyLen {
		return norm[:clusterKeyLen]
	}
	return norm
}

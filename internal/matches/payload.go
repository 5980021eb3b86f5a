package matches

import (
	"time"

	"github.com/arusso/matchbook/internal/arb"
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matching"
)

// Payload is the envelope published by the match engine and consumed by the
// arb engine.
type Payload struct {
	Version     int                `json:"version"`
	PairID      string             `json:"pair_id"`
	Similarity  float64            `json:"similarity"`
	Scores      matching.SubScores `json:"scores"`
	MatchedAt   time.Time          `json:"matched_at"`
	Source      markets.Market     `json:"source"`
	Target      markets.Market     `json:"target"`
	Opportunity *arb.Opportunity   `json:"opportunity,omitempty"`
	Verdict     *ResolutionVerdict `json:"verdict,omitempty"`
}

const payloadVersion = 1

// NewPayload wraps a match result with its canonical pair ID.
func NewPayload(res matching.Result) Payload {
	return Payload{
		Version:    payloadVersion,
		PairID:     PairID(&res.Source, &res.Target),
		Similarity: res.Similarity,
		Scores:     res.Scores,
		MatchedAt:  time.Now().UTC(),
		Source:     res.Source,
		Target:     res.Target,
	}
}

// Result rebuilds the matching result carried by the payload.
func (p *Payload) Result() matching.Result {
	return matching.Result{
		Source:     p.Source,
		Target:     p.Target,
		Similarity: p.Similarity,
		Scores:     p.Scores,
	}
}

// ResolutionVerdict captures the validator's outcome for a pair of markets.
type ResolutionVerdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

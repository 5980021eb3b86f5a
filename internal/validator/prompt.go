package validator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matches"
)

type promptPayload struct {
	PairID         string        `json:"pair_id"`
	MatchedAtUTC   string        `json:"matched_at_utc"`
	GeneratedAtUTC string        `json:"generated_at_utc"`
	Similarity     float64       `json:"similarity"`
	SideA          marketPayload `json:"side_a"`
	SideB          marketPayload `json:"side_b"`
}

type marketPayload struct {
	Platform     string `json:"platform"`
	MarketID     string `json:"market_id"`
	Question     string `json:"question"`
	Category     string `json:"category,omitempty"`
	CloseTimeUTC string `json:"close_time_utc,omitempty"`
	Status       string `json:"status,omitempty"`
}

func buildPromptPayload(payload *matches.Payload) *promptPayload {
	return &promptPayload{
		PairID:         payload.PairID,
		MatchedAtUTC:   formatTime(&payload.MatchedAt),
		GeneratedAtUTC: formatTime(ptrTime(time.Now().UTC())),
		Similarity:     payload.Similarity,
		SideA:          buildMarketPayload(&payload.Source),
		SideB:          buildMarketPayload(&payload.Target),
	}
}

func buildMarketPayload(m *markets.Market) marketPayload {
	out := marketPayload{
		Platform:     string(m.Platform),
		MarketID:     m.ID,
		Question:     m.Question,
		CloseTimeUTC: formatTime(m.CloseTime),
		Status:       string(m.Status),
	}
	if m.Category != nil {
		out.Category = string(*m.Category)
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func parseVerdict(raw string) (*matches.ResolutionVerdict, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty llm response")
	}
	// Models occasionally wrap the JSON in prose or fences.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var verdict matches.ResolutionVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matches"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		valid  bool
		reason string
	}{
		{
			name:   "plain json",
			raw:    `{"valid": true, "reason": "same event and cutoff"}`,
			valid:  true,
			reason: "same event and cutoff",
		},
		{
			name:   "fenced json",
			raw:    "```json\n{\"valid\": false, \"reason\": \"different settlement sources\"}\n```",
			valid:  false,
			reason: "different settlement sources",
		},
		{
			name:   "prose around json",
			raw:    "Here is my answer:\n{\"valid\": true, \"reason\": \"identical\"}\nHope that helps.",
			valid:  true,
			reason: "identical",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := parseVerdict(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, verdict.Valid)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestParseVerdictErrors(t *testing.T) {
	_, err := parseVerdict("")
	assert.Error(t, err)

	_, err = parseVerdict("no json here at all")
	assert.Error(t, err)
}

func TestBuildPromptPayload(t *testing.T) {
	crypto := markets.CategoryCrypto
	closeTime := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	payload := &matches.Payload{
		PairID:     "abc123",
		Similarity: 0.91,
		MatchedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Source: markets.Market{
			ID:        "p1",
			Platform:  markets.PlatformPolymarket,
			Question:  "Will Bitcoin reach $100k by June?",
			Category:  &crypto,
			CloseTime: &closeTime,
			Status:    markets.StatusOpen,
		},
		Target: markets.Market{
			ID:       "k1",
			Platform: markets.PlatformKalshi,
			Question: "Bitcoin above $100k before July?",
		},
	}

	out := buildPromptPayload(payload)
	assert.Equal(t, "abc123", out.PairID)
	assert.Equal(t, 0.91, out.Similarity)
	assert.Equal(t, "polymarket", out.SideA.Platform)
	assert.Equal(t, "CRYPTO", out.SideA.Category)
	assert.Equal(t, "2026-06-30T00:00:00Z", out.SideA.CloseTimeUTC)
	assert.Equal(t, "kalshi", out.SideB.Platform)
	assert.Empty(t, out.SideB.Category)
	assert.Empty(t, out.SideB.CloseTimeUTC)
}

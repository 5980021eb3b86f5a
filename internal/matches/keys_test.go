package matches

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arusso/matchbook/internal/markets"
)

func TestPairIDOrderIndependent(t *testing.T) {
	a := &markets.Market{ID: "p1", Platform: markets.PlatformPolymarket}
	b := &markets.Market{ID: "k1", Platform: markets.PlatformKalshi}

	id := PairID(a, b)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, PairID(b, a))
}

func TestPairIDDistinguishesPairs(t *testing.T) {
	a := &markets.Market{ID: "p1", Platform: markets.PlatformPolymarket}
	b := &markets.Market{ID: "k1", Platform: markets.PlatformKalshi}
	c := &markets.Market{ID: "k2", Platform: markets.PlatformKalshi}

	assert.NotEqual(t, PairID(a, b), PairID(a, c))
	assert.Empty(t, PairID(nil, b))
	assert.Empty(t, PairID(a, nil))
}

func TestVerdictKeyChangesWithQuestionText(t *testing.T) {
	a := &markets.Market{ID: "p1", Platform: markets.PlatformPolymarket, Question: "Will Bitcoin reach $100k?"}
	b := &markets.Market{ID: "k1", Platform: markets.PlatformKalshi, Question: "Bitcoin above $100k?"}

	key := VerdictKey(a, b)
	assert.NotEmpty(t, key)
	assert.Equal(t, key, VerdictKey(b, a))

	reworded := *b
	reworded.Question = "Bitcoin at or above $100,000?"
	assert.NotEqual(t, key, VerdictKey(a, &reworded))
}

package matching

import (
	"math"
	"strings"
	"unicode"

	"github.com/arusso/matchbook/internal/markets"
)

// SubScores holds the three independent similarity measures for a pair of
// markets, each in [0,1]. Missing optional fields score a neutral 0.5 so an
// unknown category or close date neither helps nor hurts a match.
type SubScores struct {
	Question  float64 `json:"question"`
	Category  float64 `json:"category"`
	CloseDate float64 `json:"close_date"`
}

// Stop words removed before comparing question keywords. Short tokens
// (len <= 2) are dropped separately, so entries here are length 3+.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "will": {},
	"with": {}, "this": {}, "that": {}, "from": {}, "they": {}, "been": {},
	"than": {}, "them": {}, "then": {}, "there": {}, "their": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "who": {}, "whom": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "above": {},
	"after": {}, "again": {}, "before": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "does": {}, "doing": {}, "down": {},
	"during": {}, "each": {}, "more": {}, "most": {}, "other": {},
	"over": {}, "same": {}, "some": {}, "such": {}, "under": {},
	"until": {}, "into": {}, "because": {}, "through": {},
}

// normalizeQuestion lowercases the text, turns punctuation into spaces, and
// collapses runs of whitespace.
func normalizeQuestion(q string) string {
	lowered := strings.ToLower(q)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, lowered)
	return strings.Join(strings.Fields(mapped), " ")
}

// keywords extracts the comparable token set of a question: normalized
// tokens minus short tokens and stop words.
func keywords(q string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalizeQuestion(q)) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// QuestionSimilarity is the Jaccard index over the two questions' keyword
// sets. Two contentless questions are trivially equal (1); exactly one
// contentless question matches nothing (0).
func QuestionSimilarity(a, b string) float64 {
	ka, kb := keywords(a), keywords(b)
	if len(ka) == 0 && len(kb) == 0 {
		return 1
	}
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ka {
		if _, ok := kb[tok]; ok {
			inter++
		}
	}
	union := len(ka) + len(kb) - inter
	return float64(inter) / float64(union)
}

// CategorySimilarity treats category as a hard taxonomy: equal categories
// score 1, different ones 0, and a missing category on either side scores a
// neutral 0.5.
func CategorySimilarity(a, b *markets.Category) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	if *a == *b {
		return 1
	}
	return 0
}

// CloseDateSimilarity decays linearly from 1 at zero day difference to 0 at
// windowDays or beyond. A missing close time on either side scores a neutral
// 0.5.
func CloseDateSimilarity(a, b *markets.Market, windowDays float64) float64 {
	if a.CloseTime == nil || b.CloseTime == nil {
		return 0.5
	}
	diffDays := math.Abs(a.CloseTime.Sub(*b.CloseTime).Hours()) / 24
	if diffDays >= windowDays {
		return 0
	}
	return 1 - diffDays/windowDays
}

// Score computes the three sub-scores for a pair. It is pure and symmetric:
// Score(a, b) equals Score(b, a).
func (m *Matcher) Score(a, b *markets.Market) SubScores {
	return SubScores{
		Question:  QuestionSimilarity(a.Question, b.Question),
		Category:  CategorySimilarity(a.Category, b.Category),
		CloseDate: CloseDateSimilarity(a, b, m.cfg.MaxCloseDateDiffDays),
	}
}

// Aggregate linearly combines the sub-scores with the configured weights.
// No weight normalization is performed.
func (m *Matcher) Aggregate(s SubScores) float64 {
	return s.Question*m.cfg.QuestionWeight +
		s.Category*m.cfg.CategoryWeight +
		s.CloseDate*m.cfg.CloseDateWeight
}

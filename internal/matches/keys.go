package matches

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/arusso/matchbook/internal/markets"
)

// PairID is an order-independent identifier for a cross-platform pair,
// stable across runs so caches and stores key on it.
func PairID(a, b *markets.Market) string {
	if a == nil || b == nil {
		return ""
	}
	parts := []string{a.Key(), b.Key()}
	sort.Strings(parts)
	return digest(parts...)
}

// VerdictKey keys resolution verdicts on the pair plus both question texts,
// so a verdict is invalidated when either platform rewords its listing.
func VerdictKey(a, b *markets.Market) string {
	if a == nil || b == nil {
		return ""
	}
	left := a.Key() + ":" + digest(a.Question)
	right := b.Key() + ":" + digest(b.Question)
	parts := []string{left, right}
	sort.Strings(parts)
	return digest(parts...)
}

// digest hashes the parts with newline separators.
func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

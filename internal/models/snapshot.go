package models

import (
	"time"

	"github.com/arusso/matchbook/internal/markets"
)

// MarketSnapshot is the point-in-time payload placed on the snapshot Kafka
// topics by collectors and ingested by the workers.
type MarketSnapshot struct {
	Market     markets.Market `json:"market"`
	CapturedAt time.Time      `json:"captured_at"`
}

// NewSnapshot stamps a normalized market with its capture time.
func NewSnapshot(m markets.Market, capturedAt time.Time) MarketSnapshot {
	return MarketSnapshot{Market: m, CapturedAt: capturedAt}
}

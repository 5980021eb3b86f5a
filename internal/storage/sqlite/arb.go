package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arusso/matchbook/internal/arb"
	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/matches"
)

const opportunitiesSchemaSQL = `
CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	pair_id TEXT NOT NULL,
	buy_platform TEXT NOT NULL,
	buy_market_id TEXT NOT NULL,
	buy_question TEXT,
	buy_yes_price REAL,
	sell_platform TEXT NOT NULL,
	sell_market_id TEXT NOT NULL,
	sell_question TEXT,
	sell_yes_price REAL,
	spread REAL NOT NULL,
	estimated_profit REAL NOT NULL,
	confidence REAL NOT NULL,
	question_score REAL,
	category_score REAL,
	close_date_score REAL,
	verdict_valid INTEGER,
	verdict_reason TEXT,
	matched_at TEXT,
	detected_at TEXT NOT NULL,
	raw_payload_json TEXT
);
CREATE INDEX IF NOT EXISTS opportunities_pair_idx ON opportunities(pair_id, detected_at);
`

// InsertOpportunity stores one detected opportunity together with the match
// payload it came from.
func (s *Store) InsertOpportunity(ctx context.Context, payload *matches.Payload, op *arb.Opportunity) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	if payload == nil || op == nil {
		return fmt.Errorf("payload and opportunity are required")
	}

	rawJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var verdictValid any
	var verdictReason any
	if payload.Verdict != nil {
		verdictValid = payload.Verdict.Valid
		verdictReason = payload.Verdict.Reason
	}

	const query = `
INSERT INTO opportunities (
	id, pair_id,
	buy_platform, buy_market_id, buy_question, buy_yes_price,
	sell_platform, sell_market_id, sell_question, sell_yes_price,
	spread, estimated_profit, confidence,
	question_score, category_score, close_date_score,
	verdict_valid, verdict_reason,
	matched_at, detected_at, raw_payload_json
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
`
	_, err = s.db.ExecContext(
		ctx,
		query,
		uuid.NewString(),
		payload.PairID,
		string(op.BuySide.Platform),
		op.BuySide.ID,
		op.BuySide.Question,
		floatValue(op.BuySide.YesPrice),
		string(op.SellSide.Platform),
		op.SellSide.ID,
		op.SellSide.Question,
		floatValue(op.SellSide.YesPrice),
		op.Spread,
		op.EstimatedProfit,
		op.Confidence,
		payload.Scores.Question,
		payload.Scores.Category,
		payload.Scores.CloseDate,
		verdictValid,
		verdictReason,
		payload.MatchedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(rawJSON),
	)
	return err
}

// ListPairIDs returns the distinct pair IDs of recorded opportunities that
// involve the given market on either side.
func (s *Store) ListPairIDs(ctx context.Context, platform markets.Platform, id string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT pair_id FROM opportunities
WHERE (buy_platform = ? AND buy_market_id = ?)
   OR (sell_platform = ? AND sell_market_id = ?)`,
		string(platform), id, string(platform), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var pairID string
		if err := rows.Scan(&pairID); err != nil {
			return nil, err
		}
		out = append(out, pairID)
	}
	return out, rows.Err()
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/arusso/matchbook/internal/markets"
	"github.com/arusso/matchbook/internal/models"
)

// PublishSnapshots stamps each market with a shared capture time and writes
// one snapshot message per market. Messages are keyed by platform, market,
// and capture time so compaction never collapses distinct polls.
func PublishSnapshots(ctx context.Context, writer *kafka.Writer, list []markets.Market) error {
	if writer == nil || len(list) == 0 {
		return nil
	}

	captured := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(list))

	for _, m := range list {
		snapshot := models.NewSnapshot(m, captured)
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", m.Key(), err)
		}
		key := fmt.Sprintf("%s-%d", m.Key(), captured.UnixNano())
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}

	return writer.WriteMessages(ctx, msgs...)
}

package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/arusso/matchbook/internal/kafka"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/matches"
	"github.com/arusso/matchbook/internal/models"
)

type Handler func(context.Context, *models.MarketSnapshot) error

type PayloadHandler func(context.Context, *matches.Payload) error

// Run consumes the snapshot topic with workerCount readers in the same
// consumer group, calling handler for each decoded snapshot. It blocks until
// ctx is done.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			consume(ctx, reader, handler)
		}()
	}

	<-ctx.Done()
	wg.Wait()
}

// RunPayloads is the match-pair counterpart of Run: the same consumer-group
// pool, decoding matches.Payload instead of snapshots.
func RunPayloads(ctx context.Context, brokers []string, topic, group string, workerCount int, handler PayloadHandler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			consumePayloads(ctx, reader, handler)
		}()
	}

	<-ctx.Done()
	wg.Wait()
}

func consumePayloads(ctx context.Context, reader *kafkago.Reader, handler PayloadHandler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("worker read error: %v", err)
			continue
		}

		var payload matches.Payload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logging.Errorf("worker unmarshal error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &payload); err != nil {
				logging.Errorf("worker handler error: %v", err)
			}
		}
	}
}

func consume(ctx context.Context, reader *kafkago.Reader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("worker read error: %v", err)
			continue
		}

		var snapshot models.MarketSnapshot
		if err := json.Unmarshal(msg.Value, &snapshot); err != nil {
			logging.Errorf("worker unmarshal error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &snapshot); err != nil {
				logging.Errorf("worker handler error: %v", err)
			}
		}
	}
}

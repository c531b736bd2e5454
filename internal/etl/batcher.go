package etl

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Batcher bridges the event stream into the batch pipeline: it buffers
// events arriving from the Kafka consumer and flushes them as one batch
// when either the size threshold or the flush interval is reached.
type Batcher struct {
	mu  sync.Mutex
	buf []event.Raw

	pipeline *Pipeline
	size     int
	interval time.Duration
	logger   *zap.Logger
}

func NewBatcher(pipeline *Pipeline, size int, interval time.Duration, logger *zap.Logger) *Batcher {
	return &Batcher{
		buf:      make([]event.Raw, 0, size),
		pipeline: pipeline,
		size:     size,
		interval: interval,
		logger:   logger,
	}
}

// Handler returns the Kafka message handler feeding this batcher.
// Messages that do not decode into the event schema are logged and
// skipped: a poisoned message must not wedge the partition.
func (b *Batcher) Handler() func(ctx context.Context, key, value []byte) error {
	return func(ctx context.Context, key, value []byte) error {
		var e event.Raw
		if err := json.Unmarshal(value, &e); err != nil {
			b.logger.Error("Failed to unmarshal event",
				zap.Error(err),
				zap.String("key", string(key)),
			)
			return nil
		}

		if err := e.Validate(); err != nil {
			b.logger.Warn("Invalid event skipped",
				zap.Error(err),
				zap.String("event_id", e.EventID),
			)
			return nil
		}

		b.mu.Lock()
		b.buf = append(b.buf, e)
		full := len(b.buf) >= b.size
		b.mu.Unlock()

		if full {
			return b.Flush(ctx)
		}
		return nil
	}
}

// Start flushes on the configured interval until the context closes,
// then performs a final flush so buffered events are not lost on
// shutdown.
func (b *Batcher) Start(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := b.Flush(ctx); err != nil {
				b.logger.Error("Interval flush failed", zap.Error(err))
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := b.Flush(flushCtx); err != nil {
				b.logger.Error("Final flush failed", zap.Error(err))
			}
			cancel()
			return
		}
	}
}

// Flush hands the buffered events to the pipeline as one batch. An empty
// buffer is a no-op: a quiet interval is not an empty-batch error.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	batch := b.buf
	b.buf = make([]event.Raw, 0, b.size)
	b.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	b.logger.Debug("Flushing batch", zap.Int("records", len(batch)))
	return b.pipeline.Run(ctx, batch)
}

// Package etl wires the aggregation core to its collaborators: a batch
// source (file or Kafka), the warehouse repository and the quality gate.
package etl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/aggregate"
	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Pipeline runs validate -> enrich -> aggregate -> load over one batch.
// It holds no state between batches; collaborators are injected once at
// startup.
type Pipeline struct {
	repo   Repository
	logger *zap.Logger
}

func NewPipeline(repo Repository, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		repo:   repo,
		logger: logger,
	}
}

// Run processes one batch end to end. Structural problems (empty batch,
// malformed timestamps) reject the batch wholesale; nothing is loaded.
// A missing user_id is advisory: logged with its count, never fatal.
func (p *Pipeline) Run(ctx context.Context, batch []event.Raw) error {
	result, err := aggregate.ValidateBatch(batch)
	if err != nil {
		return fmt.Errorf("batch validation failed: %w", err)
	}

	if result.NullUserIDCount > 0 {
		p.logger.Warn("Records with null user_id",
			zap.Int64("count", result.NullUserIDCount),
			zap.Int64("total_records", result.TotalRecords),
		)
	}

	enriched, err := aggregate.Enrich(batch)
	if err != nil {
		return fmt.Errorf("batch rejected: %w", err)
	}

	sessions := aggregate.BySession(enriched)
	products := aggregate.ByProduct(enriched)

	if err := p.repo.AppendEvents(ctx, enriched); err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	if err := p.repo.AppendSessionMetrics(ctx, sessions); err != nil {
		return fmt.Errorf("failed to load session metrics: %w", err)
	}
	if err := p.repo.AppendProductMetrics(ctx, products); err != nil {
		return fmt.Errorf("failed to load product metrics: %w", err)
	}

	p.logger.Info("Batch processed",
		zap.Int64("records", result.TotalRecords),
		zap.Int("session_metrics", len(sessions)),
		zap.Int("product_metrics", len(products)),
	)

	return nil
}

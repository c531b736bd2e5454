package etl

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/aggregate"
)

// Repository loads the three derived views into the warehouse. All three
// tables are append-only: metric rows for a key window are never
// overwritten, new batches only add rows.
type Repository interface {
	AppendEvents(ctx context.Context, events []aggregate.Enriched) error
	AppendSessionMetrics(ctx context.Context, metrics []aggregate.SessionMetric) error
	AppendProductMetrics(ctx context.Context, metrics []aggregate.ProductMetric) error
}

type repository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRepository(db *sqlx.DB, logger *zap.Logger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

func (r *repository) AppendEvents(ctx context.Context, events []aggregate.Enriched) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO events (
			event_id, user_id, session_id, event_time, date, hour,
			event_type, product_id, category, price, device_type,
			ad_campaign_id, revenue, is_purchase, is_ad_driven
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (event_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(
			ctx,
			e.EventID,
			e.UserID,
			e.SessionID,
			e.EventTime,
			e.Date,
			e.Hour,
			e.EventType,
			e.ProductID,
			e.Category,
			e.Price,
			e.DeviceType,
			e.AdCampaignID,
			e.Revenue,
			e.IsPurchase,
			e.IsAdDriven,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Events loaded", zap.Int("records", len(events)))
	return nil
}

func (r *repository) AppendSessionMetrics(ctx context.Context, metrics []aggregate.SessionMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO session_metrics (
			user_id, session_id, date, total_events, purchases,
			session_revenue, unique_products_viewed, device_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range metrics {
		_, err := stmt.ExecContext(
			ctx,
			m.UserID,
			m.SessionID,
			m.Date,
			m.TotalEvents,
			m.Purchases,
			m.SessionRevenue,
			m.UniqueProductsViewed,
			m.DeviceType,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Session metrics loaded", zap.Int("records", len(metrics)))
	return nil
}

func (r *repository) AppendProductMetrics(ctx context.Context, metrics []aggregate.ProductMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO product_metrics (
			product_id, category, date, total_views, total_purchases,
			total_revenue, avg_price, conversion_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range metrics {
		_, err := stmt.ExecContext(
			ctx,
			m.ProductID,
			m.Category,
			m.Date,
			m.TotalViews,
			m.TotalPurchases,
			m.TotalRevenue,
			m.AvgPrice,
			m.ConversionRate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert product metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Product metrics loaded", zap.Int("records", len(metrics)))
	return nil
}

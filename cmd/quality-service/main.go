package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/config"
	"github.com/Wuchinator/shopper-analytics/internal/etl"
	"github.com/Wuchinator/shopper-analytics/internal/quality"
	"github.com/Wuchinator/shopper-analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log = logger.WithService(log, "quality-service")
	log.Info("Starting Quality Service",
		zap.String("input", cfg.Quality.InputFile),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	source := etl.NewFileSource(cfg.Quality.InputFile, log)
	events, err := source.Extract(ctx)
	if err != nil {
		log.Fatal("Extraction failed", zap.Error(err))
	}

	suite := quality.ShopperEventSuite()
	report := suite.Validate(events)

	log.Info("Validation completed",
		zap.Bool("success", report.Success),
		zap.Int("evaluated_expectations", report.EvaluatedExpectations),
		zap.Int("failed_expectations", report.FailedExpectations),
	)

	for _, r := range report.Results {
		if r.Success {
			continue
		}
		log.Warn("Expectation failed",
			zap.String("expectation", r.Expectation),
			zap.String("column", r.Column),
			zap.Int64("failed_count", r.FailedCount),
			zap.Int64("total_count", r.TotalCount),
		)
	}

	if cfg.Quality.ReferenceFile != "" {
		refSource := etl.NewFileSource(cfg.Quality.ReferenceFile, log)
		reference, err := refSource.Extract(ctx)
		if err != nil {
			log.Fatal("Reference extraction failed", zap.Error(err))
		}

		fields := make([]zap.Field, 0)
		for name, value := range quality.Drift(events, reference) {
			fields = append(fields, zap.Float64(name, value))
		}
		log.Info("Drift metrics", fields...)
	}

	if !report.Success {
		log.Sync()
		os.Exit(1)
	}
}

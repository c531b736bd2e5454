package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/config"
	"github.com/Wuchinator/shopper-analytics/internal/etl"
	"github.com/Wuchinator/shopper-analytics/pkg/kafka"
	"github.com/Wuchinator/shopper-analytics/pkg/logger"
	"github.com/Wuchinator/shopper-analytics/pkg/postgres"
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

	log = logger.WithService(log, "etl-service")
	log.Info("Starting ETL Service",
		zap.String("environment", cfg.Environment),
		zap.String("mode", cfg.ETL.Mode),
	)

	db, err := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.PostgresDSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	repo := etl.NewRepository(db.DB, log)
	pipeline := etl.NewPipeline(repo, log)

	if cfg.ETL.Mode == "file" {
		runFileBatch(cfg, pipeline, log)
		return
	}

	batcher := etl.NewBatcher(pipeline, cfg.ETL.BatchSize, cfg.ETL.FlushInterval, log)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:           cfg.Kafka.Brokers,
		Topics:            []string{cfg.Kafka.Topic},
		GroupID:           cfg.Kafka.GroupID,
		AutoCommit:        true,
		CommitInterval:    1 * time.Second,
		SessionTimeout:    10 * time.Second,
		RebalanceStrategy: "sticky",
	}, batcher.Handler(), log)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}()

	<-consumer.WaitReady()
	log.Info("Kafka consumer is ready and consuming messages")

	done := make(chan struct{})
	go func() {
		batcher.Start(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")
	cancel()

	// Batcher performs its final flush on shutdown; give it time.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	select {
	case <-done:
		log.Info("Final flush completed")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout, forcing stop")
	}

	log.Info("ETL Service stopped")
}

func runFileBatch(cfg *config.Config, pipeline *etl.Pipeline, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	source := etl.NewFileSource(cfg.ETL.InputFile, log)
	batch, err := source.Extract(ctx)
	if err != nil {
		log.Fatal("Extraction failed", zap.Error(err))
	}

	if err := pipeline.Run(ctx, batch); err != nil {
		log.Fatal("Pipeline failed", zap.Error(err))
	}

	log.Info("ETL batch completed successfully")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/config"
	"github.com/Wuchinator/shopper-analytics/internal/generator"
	"github.com/Wuchinator/shopper-analytics/pkg/kafka"
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

	log = logger.WithService(log, "event-generator")
	log.Info("Starting Event Generator",
		zap.String("environment", cfg.Environment),
		zap.String("mode", cfg.Generator.Mode),
	)

	// gofakeit.New(0) picks a random seed, so the config default just works
	gen := generator.New(gofakeit.New(cfg.Generator.Seed), log)

	if cfg.Generator.Mode == "file" {
		if _, err := gen.WriteSampleFile(cfg.Generator.SampleFile, cfg.Generator.SampleCount); err != nil {
			log.Fatal("Failed to write sample file", zap.Error(err))
		}
		return
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Kafka.Topic,
		Retries:          cfg.Kafka.ProducerRetries,
		Timeout:          cfg.Kafka.ProducerTimeout,
		RequiredAcks:     cfg.Kafka.RequiredAcks,
		Compression:      cfg.Kafka.CompressionType,
		IdempotentWrites: cfg.Kafka.IdempotentWrites,
		MaxMessageBytes:  cfg.Kafka.MaxMessageBytes,
	}, log)
	if err != nil {
		log.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down generator")
		cancel()
	}()

	if err := gen.Run(ctx, producer, cfg.Generator.Rate); err != nil {
		log.Fatal("Generator failed", zap.Error(err))
	}

	log.Info("Event Generator stopped")
}

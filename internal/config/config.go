package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogLevel    string
	Postgres    PostgresConfig
	Kafka       KafkaConfig
	Generator   GeneratorConfig
	ETL         ETLConfig
	Quality     QualityConfig
}

type PostgresConfig struct {
	Host            string
	Port            string
	Database        string
	Username        string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

type KafkaConfig struct {
	Brokers          []string
	Topic            string
	GroupID          string
	ProducerRetries  int
	ProducerTimeout  time.Duration
	RequiredAcks     int
	CompressionType  string
	MaxMessageBytes  int
	IdempotentWrites bool
}

type GeneratorConfig struct {
	// Mode is "stream" (push to Kafka) or "file" (write a sample batch).
	Mode        string
	Rate        float64
	SampleFile  string
	SampleCount int
	Seed        uint64
}

type ETLConfig struct {
	// Mode is "kafka" (consume and batch the stream) or "file" (one-shot).
	Mode          string
	InputFile     string
	BatchSize     int
	FlushInterval time.Duration
}

type QualityConfig struct {
	InputFile     string
	ReferenceFile string
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Postgres = PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            getEnv("POSTGRES_PORT", "5432"),
		Database:        getEnv("POSTGRES_DB", "analytics"),
		Username:        getEnv("POSTGRES_USER", "admin"),
		Password:        getEnv("POSTGRES_PASSWORD", "password"),
		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
	}

	brokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	topic := getEnv("KAFKA_TOPIC_EVENTS", "shopper-events")
	cfg.Kafka = KafkaConfig{
		Brokers:          strings.Split(brokers, ","),
		Topic:            topic,
		GroupID:          getEnv("KAFKA_GROUP_ID", topic+"-etl"),
		ProducerRetries:  getEnvAsInt("KAFKA_PRODUCER_RETRIES", 3),
		ProducerTimeout:  getEnvAsDuration("KAFKA_PRODUCER_TIMEOUT", 10*time.Second),
		RequiredAcks:     getEnvAsInt("KAFKA_REQUIRED_ACKS", -1), // -1 = all ISR replicas
		CompressionType:  getEnv("KAFKA_COMPRESSION", "snappy"),
		IdempotentWrites: getEnvAsBool("KAFKA_IDEMPOTENT", true),
		MaxMessageBytes:  getEnvAsInt("KAFKA_MAX_MESSAGE_BYTES", 1000000), // 1MB
	}

	cfg.Generator = GeneratorConfig{
		Mode:        getEnv("GENERATOR_MODE", "stream"),
		Rate:        getEnvAsFloat("GENERATOR_RATE", 10),
		SampleFile:  getEnv("GENERATOR_SAMPLE_FILE", "sample_events.json"),
		SampleCount: getEnvAsInt("GENERATOR_SAMPLE_COUNT", 1000),
		Seed:        uint64(getEnvAsInt("GENERATOR_SEED", 0)),
	}

	cfg.ETL = ETLConfig{
		Mode:          getEnv("ETL_MODE", "kafka"),
		InputFile:     getEnv("ETL_INPUT_FILE", "sample_events.json"),
		BatchSize:     getEnvAsInt("ETL_BATCH_SIZE", 500),
		FlushInterval: getEnvAsDuration("ETL_FLUSH_INTERVAL", 30*time.Second),
	}

	cfg.Quality = QualityConfig{
		InputFile:     getEnv("QUALITY_INPUT_FILE", "sample_events.json"),
		ReferenceFile: getEnv("QUALITY_REFERENCE_FILE", ""),
	}

	return cfg, nil
}

func (c *PostgresConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

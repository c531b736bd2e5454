// Package generator produces synthetic shopper events for exercising the
// pipeline end to end: either streamed to Kafka at a fixed rate or dumped
// to a sample file for batch runs.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Categories used for realistic simulation.
var Categories = []string{"Electronics", "Clothing", "Books", "Home", "Sports"}

// adCampaignRate is the share of events attributed to an ad campaign.
const adCampaignRate = 0.3

// Sink receives generated events keyed by user id, so one user's events
// land on one partition.
type Sink interface {
	SendMessage(ctx context.Context, key string, value any) error
}

type Generator struct {
	faker  *gofakeit.Faker
	logger *zap.Logger
}

// New builds a generator around an injected faker. Seed the faker for
// reproducible fixtures.
func New(faker *gofakeit.Faker, logger *zap.Logger) *Generator {
	return &Generator{
		faker:  faker,
		logger: logger,
	}
}

// Event generates one realistic shopper behavior event. Revenue is drawn
// only for purchase events, keeping the revenue-implies-purchase property
// intact.
func (g *Generator) Event() event.Raw {
	eventType := g.pick(event.Types())

	e := event.Raw{
		EventID:    uuid.New().String(),
		UserID:     fmt.Sprintf("user_%d", g.faker.Number(1000, 99999)),
		SessionID:  uuid.New().String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		EventType:  eventType,
		ProductID:  fmt.Sprintf("prod_%d", g.faker.Number(1, 10000)),
		Category:   g.pick(Categories),
		Price:      round2(g.faker.Float64Range(10, 500)),
		DeviceType: g.pick(event.DeviceTypes()),
		Location: &event.Location{
			Country:   g.faker.CountryAbr(),
			City:      g.faker.City(),
			IPAddress: g.faker.IPv4Address(),
		},
	}

	if g.faker.Float64Range(0, 1) < adCampaignRate {
		campaign := fmt.Sprintf("campaign_%d", g.faker.Number(1, 100))
		e.AdCampaignID = &campaign
	}

	if eventType == event.EventTypePurchase {
		e.Revenue = round2(g.faker.Float64Range(0, 500))
	}

	return e
}

// Batch generates count events.
func (g *Generator) Batch(count int) []event.Raw {
	events := make([]event.Raw, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, g.Event())
	}
	return events
}

// WriteSampleFile generates count events and writes them as an indented
// JSON array, the format the file-mode ETL extracts.
func (g *Generator) WriteSampleFile(path string, count int) ([]event.Raw, error) {
	events := g.Batch(count)

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write sample file: %w", err)
	}

	g.logger.Info("Sample events written",
		zap.String("path", path),
		zap.Int("count", count),
	)

	return events, nil
}

// Run streams events to the sink at rate events per second until the
// context is cancelled. Send failures are logged and skipped; the stream
// keeps going.
func (g *Generator) Run(ctx context.Context, sink Sink, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", rate)
	}

	interval := time.Duration(float64(time.Second) / rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sent, failed int64
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Generator stopped",
				zap.Int64("sent", sent),
				zap.Int64("failed", failed),
			)
			return nil
		case <-ticker.C:
			e := g.Event()
			if err := sink.SendMessage(ctx, e.UserID, e); err != nil {
				failed++
				g.logger.Error("Failed to send event",
					zap.Error(err),
					zap.String("event_id", e.EventID),
				)
				continue
			}
			sent++
			g.logger.Debug("Event sent",
				zap.String("event_id", e.EventID),
				zap.String("event_type", e.EventType),
			)
		}
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.faker.Number(0, len(values)-1)]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package generator_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/event"
	"github.com/Wuchinator/shopper-analytics/internal/generator"
)

type captureSink struct {
	mu     sync.Mutex
	keys   []string
	values []any
}

func (s *captureSink) SendMessage(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	s.values = append(s.values, value)
	return nil
}

func (s *captureSink) snapshot() ([]string, []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...), append([]any(nil), s.values...)
}

func TestGeneratorEvent(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := generator.New(gofakeit.New(42), zap.NewNop())

		Convey("When generating a batch of events", func() {
			events := g.Batch(200)

			Convey("Then every event is structurally valid", func() {
				for i := range events {
					So(events[i].Validate(), ShouldBeNil)
					So(events[i].UserID, ShouldNotBeEmpty)
					So(events[i].SessionID, ShouldNotBeEmpty)
					So(events[i].Location, ShouldNotBeNil)
				}
			})

			Convey("And prices stay within the simulated range", func() {
				for i := range events {
					So(events[i].Price, ShouldBeGreaterThanOrEqualTo, 10)
					So(events[i].Price, ShouldBeLessThan, 500)
				}
			})

			Convey("And revenue implies a purchase", func() {
				for i := range events {
					if events[i].Revenue > 0 {
						So(events[i].EventType, ShouldEqual, event.EventTypePurchase)
					}
					if events[i].EventType != event.EventTypePurchase {
						So(events[i].Revenue, ShouldEqual, 0)
					}
				}
			})

			Convey("And ad campaign ids are never empty when present", func() {
				var attributed int
				for i := range events {
					if events[i].AdCampaignID != nil {
						So(*events[i].AdCampaignID, ShouldNotBeEmpty)
						attributed++
					}
				}
				// p = 0.3 per event; 200 events make zero hits implausible
				So(attributed, ShouldBeGreaterThan, 0)
			})

			Convey("And timestamps parse under the pipeline's rules", func() {
				for i := range events {
					_, err := event.ParseTimestamp(events[i].Timestamp)
					So(err, ShouldBeNil)
				}
			})
		})
	})
}

func TestWriteSampleFile(t *testing.T) {
	Convey("Given a generator and a temp directory", t, func() {
		g := generator.New(gofakeit.New(7), zap.NewNop())
		path := filepath.Join(t.TempDir(), "sample_events.json")

		Convey("When writing a sample file", func() {
			written, err := g.WriteSampleFile(path, 25)
			So(err, ShouldBeNil)
			So(written, ShouldHaveLength, 25)

			Convey("Then the file round-trips through the wire schema", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)

				var decoded []event.Raw
				So(json.Unmarshal(data, &decoded), ShouldBeNil)
				So(decoded, ShouldHaveLength, 25)
				So(decoded[0].EventID, ShouldEqual, written[0].EventID)
				So(decoded[0].Price, ShouldEqual, written[0].Price)
			})
		})
	})
}

func TestGeneratorRun(t *testing.T) {
	Convey("Given a generator streaming into a capture sink", t, func() {
		g := generator.New(gofakeit.New(1), zap.NewNop())
		sink := &captureSink{}

		Convey("When the context is cancelled after a few sends", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- g.Run(ctx, sink, 1000)
			}()

			for {
				if keys, _ := sink.snapshot(); len(keys) > 0 {
					break
				}
				time.Sleep(time.Millisecond)
			}
			cancel()
			So(<-done, ShouldBeNil)

			Convey("Then events were keyed by user id", func() {
				keys, values := sink.snapshot()
				So(len(keys), ShouldBeGreaterThan, 0)
				first, ok := values[0].(event.Raw)
				So(ok, ShouldBeTrue)
				So(keys[0], ShouldEqual, first.UserID)
			})
		})

		Convey("When the rate is invalid", func() {
			err := g.Run(context.Background(), sink, 0)
			So(err, ShouldNotBeNil)
		})
	})
}

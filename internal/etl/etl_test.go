package etl_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"github.com/Wuchinator/shopper-analytics/internal/aggregate"
	"github.com/Wuchinator/shopper-analytics/internal/etl"
	"github.com/Wuchinator/shopper-analytics/internal/event"
)

type fakeRepo struct {
	events   []aggregate.Enriched
	sessions []aggregate.SessionMetric
	products []aggregate.ProductMetric
	fail     error
}

func (r *fakeRepo) AppendEvents(_ context.Context, events []aggregate.Enriched) error {
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeRepo) AppendSessionMetrics(_ context.Context, metrics []aggregate.SessionMetric) error {
	if r.fail != nil {
		return r.fail
	}
	r.sessions = append(r.sessions, metrics...)
	return nil
}

func (r *fakeRepo) AppendProductMetrics(_ context.Context, metrics []aggregate.ProductMetric) error {
	if r.fail != nil {
		return r.fail
	}
	r.products = append(r.products, metrics...)
	return nil
}

func sampleBatch() []event.Raw {
	return []event.Raw{
		{
			EventID: "e1", UserID: "u1", SessionID: "s1",
			Timestamp: "2024-06-01T10:00:00Z", EventType: event.EventTypePageView,
			ProductID: "p1", Category: "Electronics", Price: 40,
			DeviceType: event.DeviceTypeMobile,
		},
		{
			EventID: "e2", UserID: "u1", SessionID: "s1",
			Timestamp: "2024-06-01T10:05:00Z", EventType: event.EventTypePurchase,
			ProductID: "p1", Category: "Electronics", Price: 40,
			DeviceType: event.DeviceTypeMobile, Revenue: 40,
		},
		{
			EventID: "e3", UserID: "u2", SessionID: "s2",
			Timestamp: "2024-06-01T11:00:00Z", EventType: event.EventTypeSearch,
			ProductID: "p2", Category: "Books", Price: 12,
			DeviceType: event.DeviceTypeDesktop,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	Convey("Given a pipeline over a fake repository", t, func() {
		repo := &fakeRepo{}
		pipeline := etl.NewPipeline(repo, zap.NewNop())
		ctx := context.Background()

		Convey("When a clean batch is processed", func() {
			err := pipeline.Run(ctx, sampleBatch())

			Convey("Then all three views are loaded", func() {
				So(err, ShouldBeNil)
				So(repo.events, ShouldHaveLength, 3)
				So(repo.sessions, ShouldHaveLength, 2)
				So(repo.products, ShouldHaveLength, 2)
			})

			Convey("And the loaded metrics carry the aggregates", func() {
				So(repo.sessions[0].TotalEvents, ShouldEqual, 2)
				So(repo.sessions[0].SessionRevenue, ShouldEqual, 40.0)
				So(repo.products[0].ConversionRate, ShouldAlmostEqual, 0.5)
			})
		})

		Convey("When the batch is empty", func() {
			err := pipeline.Run(ctx, nil)

			Convey("Then it fails with the empty batch error and loads nothing", func() {
				So(errors.Is(err, event.ErrEmptyBatch), ShouldBeTrue)
				So(repo.events, ShouldBeEmpty)
			})
		})

		Convey("When one timestamp is malformed", func() {
			batch := sampleBatch()
			batch[1].Timestamp = "not-a-date"
			err := pipeline.Run(ctx, batch)

			Convey("Then the whole batch is rejected and nothing is loaded", func() {
				So(errors.Is(err, event.ErrMalformedTimestamp), ShouldBeTrue)
				So(repo.events, ShouldBeEmpty)
				So(repo.sessions, ShouldBeEmpty)
				So(repo.products, ShouldBeEmpty)
			})
		})

		Convey("When a record misses its user_id", func() {
			batch := sampleBatch()
			batch[2].UserID = ""
			err := pipeline.Run(ctx, batch)

			Convey("Then processing still succeeds", func() {
				So(err, ShouldBeNil)
				So(repo.events, ShouldHaveLength, 3)
			})
		})

		Convey("When the repository fails", func() {
			repo.fail = errors.New("connection refused")
			err := pipeline.Run(ctx, sampleBatch())

			Convey("Then the error is propagated", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

func TestFileSource(t *testing.T) {
	Convey("Given a JSON batch file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "events.json")
		data, err := json.Marshal(sampleBatch())
		So(err, ShouldBeNil)
		So(os.WriteFile(path, data, 0o644), ShouldBeNil)

		Convey("Then extraction returns the decoded events", func() {
			source := etl.NewFileSource(path, zap.NewNop())
			events, err := source.Extract(context.Background())
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 3)
			So(events[0].EventID, ShouldEqual, "e1")
		})

		Convey("And a missing file is an error", func() {
			source := etl.NewFileSource(filepath.Join(dir, "nope.json"), zap.NewNop())
			_, err := source.Extract(context.Background())
			So(err, ShouldNotBeNil)
		})

		Convey("And malformed JSON is an error", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{not json"), 0o644), ShouldBeNil)
			source := etl.NewFileSource(bad, zap.NewNop())
			_, err := source.Extract(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBatcher(t *testing.T) {
	Convey("Given a batcher flushing at three events", t, func() {
		repo := &fakeRepo{}
		pipeline := etl.NewPipeline(repo, zap.NewNop())
		batcher := etl.NewBatcher(pipeline, 3, time.Minute, zap.NewNop())
		handler := batcher.Handler()
		ctx := context.Background()

		push := func(e event.Raw) error {
			data, err := json.Marshal(e)
			So(err, ShouldBeNil)
			return handler(ctx, []byte(e.UserID), data)
		}

		Convey("When fewer events than the threshold arrive", func() {
			batch := sampleBatch()
			So(push(batch[0]), ShouldBeNil)
			So(push(batch[1]), ShouldBeNil)

			Convey("Then nothing is flushed yet", func() {
				So(repo.events, ShouldBeEmpty)
			})

			Convey("And an explicit flush drains the buffer", func() {
				So(batcher.Flush(ctx), ShouldBeNil)
				So(repo.events, ShouldHaveLength, 2)
			})
		})

		Convey("When the threshold is reached", func() {
			for _, e := range sampleBatch() {
				So(push(e), ShouldBeNil)
			}

			Convey("Then the batch is flushed through the pipeline", func() {
				So(repo.events, ShouldHaveLength, 3)
				So(repo.sessions, ShouldHaveLength, 2)
			})
		})

		Convey("When a message does not decode", func() {
			So(handler(ctx, []byte("k"), []byte("garbage")), ShouldBeNil)

			Convey("Then it is skipped without wedging the stream", func() {
				So(batcher.Flush(ctx), ShouldBeNil)
				So(repo.events, ShouldBeEmpty)
			})
		})

		Convey("When an event fails boundary validation", func() {
			bad := sampleBatch()[0]
			bad.EventType = "checkout"
			So(push(bad), ShouldBeNil)

			Convey("Then it is skipped", func() {
				So(batcher.Flush(ctx), ShouldBeNil)
				So(repo.events, ShouldBeEmpty)
			})
		})

		Convey("When flushing an empty buffer", func() {
			Convey("Then it is a no-op, not an empty batch error", func() {
				So(batcher.Flush(ctx), ShouldBeNil)
			})
		})
	})
}

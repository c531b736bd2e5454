package aggregate

import (
	"fmt"
	"time"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Enrich derives the analytics columns for every event in the batch.
// Output order matches input order. A single unparseable timestamp
// rejects the whole batch: dropping individual rows would silently skew
// the aggregates downstream.
func Enrich(events []event.Raw) ([]Enriched, error) {
	if len(events) == 0 {
		return nil, nil
	}

	enriched := make([]Enriched, 0, len(events))
	for _, e := range events {
		ts, err := event.ParseTimestamp(e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.EventID, err)
		}

		enriched = append(enriched, Enriched{
			Raw:        e,
			EventTime:  ts,
			Date:       dateOf(ts),
			Hour:       ts.Hour(),
			IsPurchase: e.EventType == event.EventTypePurchase,
			IsAdDriven: e.IsAdDriven(),
		})
	}

	return enriched, nil
}

// dateOf truncates an instant to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package quality implements advisory data-quality checks over event
// batches: a declarative expectation suite and a drift monitor comparing
// a batch against a reference dataset. Nothing here aborts processing;
// results are reported for the caller to act on.
package quality

import (
	"math"
	"time"

	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// Expectation is one column-level check. check returns true when the
// record passes.
type Expectation struct {
	Name   string
	Column string
	check  func(e *event.Raw) bool
}

type Suite struct {
	Name         string
	Expectations []Expectation
}

// ExpectationResult is the outcome of one expectation over a batch.
type ExpectationResult struct {
	Expectation string `json:"expectation"`
	Column      string `json:"column"`
	TotalCount  int64  `json:"total_count"`
	FailedCount int64  `json:"failed_count"`
	Success     bool   `json:"success"`
}

// Report is the outcome of a whole suite over a batch.
type Report struct {
	Success               bool                `json:"success"`
	EvaluatedExpectations int                 `json:"evaluated_expectations"`
	FailedExpectations    int                 `json:"failed_expectations"`
	Results               []ExpectationResult `json:"results"`
}

// NotNull expects the column to have a non-empty value in every record.
func NotNull(column string) Expectation {
	return Expectation{
		Name:   "values_not_null",
		Column: column,
		check: func(e *event.Raw) bool {
			v, ok := stringColumn(e, column)
			return ok && v != ""
		},
	}
}

// InSet expects the column value to be one of the given values.
func InSet(column string, values []string) Expectation {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return Expectation{
		Name:   "values_in_set",
		Column: column,
		check: func(e *event.Raw) bool {
			v, ok := stringColumn(e, column)
			if !ok {
				return false
			}
			_, found := set[v]
			return found
		},
	}
}

// Between expects a numeric column to lie in [min, max]. Use math.Inf(1)
// for an open upper bound.
func Between(column string, min, max float64) Expectation {
	return Expectation{
		Name:   "values_between",
		Column: column,
		check: func(e *event.Raw) bool {
			v, ok := numericColumn(e, column)
			return ok && v >= min && v <= max
		},
	}
}

// NotBefore expects the timestamp column to parse and to not precede t.
// Used as a freshness check.
func NotBefore(column string, t time.Time) Expectation {
	return Expectation{
		Name:   "values_not_before",
		Column: column,
		check: func(e *event.Raw) bool {
			v, ok := stringColumn(e, column)
			if !ok {
				return false
			}
			ts, err := event.ParseTimestamp(v)
			if err != nil {
				return false
			}
			return !ts.Before(t)
		},
	}
}

// Validate runs every expectation over the batch. The report succeeds
// only when no expectation recorded a failure.
func (s *Suite) Validate(events []event.Raw) Report {
	report := Report{
		Success:               true,
		EvaluatedExpectations: len(s.Expectations),
		Results:               make([]ExpectationResult, 0, len(s.Expectations)),
	}

	for _, exp := range s.Expectations {
		result := ExpectationResult{
			Expectation: exp.Name,
			Column:      exp.Column,
			TotalCount:  int64(len(events)),
			Success:     true,
		}

		for i := range events {
			if !exp.check(&events[i]) {
				result.FailedCount++
			}
		}

		if result.FailedCount > 0 {
			result.Success = false
			report.Success = false
			report.FailedExpectations++
		}

		report.Results = append(report.Results, result)
	}

	return report
}

// ShopperEventSuite builds the expectations for shopper event batches:
// required identifiers, enum membership, sane monetary bounds and a
// freshness floor.
func ShopperEventSuite() *Suite {
	return &Suite{
		Name: "shopper_events_suite",
		Expectations: []Expectation{
			NotNull("event_id"),
			NotNull("user_id"),
			NotNull("timestamp"),
			InSet("event_type", event.Types()),
			Between("price", 0, 10000),
			Between("revenue", 0, math.Inf(1)),
			InSet("device_type", event.DeviceTypes()),
			NotBefore("timestamp", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
}

func stringColumn(e *event.Raw, column string) (string, bool) {
	switch column {
	case "event_id":
		return e.EventID, true
	case "user_id":
		return e.UserID, true
	case "session_id":
		return e.SessionID, true
	case "timestamp":
		return e.Timestamp, true
	case "event_type":
		return e.EventType, true
	case "product_id":
		return e.ProductID, true
	case "category":
		return e.Category, true
	case "device_type":
		return e.DeviceType, true
	}
	return "", false
}

func numericColumn(e *event.Raw, column string) (float64, bool) {
	switch column {
	case "price":
		return e.Price, true
	case "revenue":
		return e.Revenue, true
	}
	return 0, false
}

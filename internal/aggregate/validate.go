package aggregate

import (
	"github.com/Wuchinator/shopper-analytics/internal/event"
)

// ValidateBatch runs the batch-level quality gate. An empty batch is
// fatal and returns event.ErrEmptyBatch alongside the zeroed counters.
// Records with a missing user_id are counted but tolerated: the caller
// decides whether the count warrants action.
func ValidateBatch(events []event.Raw) (ValidationResult, error) {
	result := ValidationResult{TotalRecords: int64(len(events))}

	if len(events) == 0 {
		return result, event.ErrEmptyBatch
	}

	for _, e := range events {
		if e.UserID == "" {
			result.NullUserIDCount++
		}
	}

	return result, nil
}

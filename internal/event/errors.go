package event

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch = errors.New("empty batch")

	ErrMalformedTimestamp = errors.New("malformed timestamp")

	ErrMissingEventID = errors.New("missing event id")

	ErrInvalidEventType = errors.New("invalid event type")

	ErrInvalidDeviceType = errors.New("invalid device type")

	ErrNegativePrice = errors.New("negative price")

	ErrNegativeRevenue = errors.New("negative revenue")
)

// MalformedTimestampError carries the value that failed to parse.
// It matches ErrMalformedTimestamp under errors.Is.
type MalformedTimestampError struct {
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q", e.Value)
}

func (e *MalformedTimestampError) Is(target error) bool {
	return target == ErrMalformedTimestamp
}

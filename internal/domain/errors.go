package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a review id has no record in the store.
var ErrNotFound = errors.New("review not found")

// ValidationError rejects a normalized record whose rating falls outside the
// [0,10] range. Field names the offending value, e.g. "overallRating" or
// "categoryRatings[cleanliness]".
type ValidationError struct {
	ReviewID int64
	Field    string
	Value    float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("review %d: %s=%g out of range [0,10]", e.ReviewID, e.Field, e.Value)
}

// IngestionError marks a hard failure of an ingestion batch: missing or
// unreadable payload, malformed JSON, or a non-success upstream status.
type IngestionError struct {
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed: %s: %v", e.Reason, e.Err)
	}
	return "ingestion failed: " + e.Reason
}

func (e *IngestionError) Unwrap() error { return e.Err }

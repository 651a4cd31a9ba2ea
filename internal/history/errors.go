package history

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingSeries is returned when a body has no recorded samples.
	ErrMissingSeries = errors.New("missing series")

	// ErrGapUnfillable is returned when the interpolator cannot supply a value.
	ErrGapUnfillable = errors.New("gap cannot be filled")

	// ErrDuplicateSample is returned under CollisionReject for a repeated instant.
	ErrDuplicateSample = errors.New("duplicate sample")

	// ErrInvalidSample is returned for NaN or infinite longitudes.
	ErrInvalidSample = errors.New("invalid sample")
)

// GapError reports the first axis instant a series could not be filled at.
type GapError struct {
	Body string
	Time time.Time
}

func (e *GapError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Body, e.Time.Format(time.RFC3339), ErrGapUnfillable)
}

// Unwrap makes errors.Is(err, ErrGapUnfillable) true.
func (e *GapError) Unwrap() error {
	return ErrGapUnfillable
}

package trip

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when the caller's start date is after the
	// end date. It is the only error fatal to a whole search.
	ErrInvalidRange = errors.New("invalid date range: start date is after end date")

	// ErrInsufficientData is returned when zero observations exist for a
	// requested month. Downgraded by the engine to a missing sub-result.
	ErrInsufficientData = errors.New("no observations for requested month")
)

// ProviderError wraps a failed external call, identifying the provider so
// the failure can be isolated to its weekend and category.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError marks a single malformed record within a batch. The
// record is dropped and counted; the batch continues.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid quote: " + e.Reason
}

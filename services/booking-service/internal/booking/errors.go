package booking

import (
	"fmt"
	"time"
)

// ValidationError rejects a request before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError means the interval overlaps a confirmed booking on the bay.
// Callers should offer another time rather than retry.
type ConflictError struct {
	BayID string
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s-%s on bay %s is no longer available",
		e.Start.UTC().Format(time.RFC3339), e.End.UTC().Format(time.RFC3339), e.BayID)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

type TransitionError struct {
	BookingID string
	Err       error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %s: %v", e.BookingID, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// ServerError wraps an infrastructure failure.
type ServerError struct {
	Op  string
	Err error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error { return e.Err }

// Package service holds the booking engine: availability search,
// the reservation transaction, the sail lifecycle and the
// late-booking rebalancer.  Services consume the repository.Store
// interface and publish change notifications through a Notifier;
// they never touch the database handle directly.
package service

import "fmt"

// ValidationError rejects malformed input before any store access,
// so a bad request can never be partially applied.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientSeatsError reports a failed capacity re-check with
// enough per-pool detail for the caller to re-search: how many seats
// each pool had left against how many were requested.  An activity
// pool without a ceiling reports model.Unbounded.
type InsufficientSeatsError struct {
	ActivityAvailable int
	ActivityRequested int
	SailAvailable     int
	SailRequested     int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: activity %d/%d, sail %d/%d",
		e.ActivityAvailable, e.ActivityRequested, e.SailAvailable, e.SailRequested)
}

// Package repository implements the MySQL query surface of the
// booking engine.  This file defines sentinel error values reused
// across repositories so that the service layer can distinguish
// failure scenarios with errors.Is instead of inspecting driver
// errors or SQL state.
package repository

import "errors"

// ErrSailNotFound is returned when a sail id does not resolve to a
// row, including inside the reservation transaction when the sail
// vanished between search and lock.
var ErrSailNotFound = errors.New("sail not found")

// ErrInvalidCombination is returned when a boat cannot run the
// requested activity (no boat_activities link exists).
var ErrInvalidCombination = errors.New("boat cannot run this activity")

// ErrAlreadyStarted is returned when starting a sail whose
// actual_start_time is already set.
var ErrAlreadyStarted = errors.New("sail has already started")

// ErrNotStarted is returned when ending a sail that never departed.
var ErrNotStarted = errors.New("sail has not started")

// ErrAlreadyEnded is returned when ending a sail whose end_time is
// already set.
var ErrAlreadyEnded = errors.New("sail has already ended")

// ErrNotTransferable is returned when reverting a sail that is not in
// transferred_late state or has no transfer target recorded.
var ErrNotTransferable = errors.New("sail is not in a transferred late state")

// ErrRetryable wraps transient store failures (lock wait timeouts,
// deadlocks).  The transaction has been rolled back; the caller may
// simply retry.
var ErrRetryable = errors.New("transient store failure, retry")

// ErrEmailExists is returned when registering a staff account with a
// taken email address.
var ErrEmailExists = errors.New("email already exists")

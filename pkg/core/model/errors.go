// Package model holds the domain error taxonomy shared by services and stores.
package model

import "errors"

// Domain errors are client-visible and non-fatal. Callers distinguish them
// with errors.Is; anything else is treated as a datastore failure and rolls
// back the enclosing transaction.
var (
	// ErrNotFound indicates the referenced shift, registration or account
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates the attempted status change is not legal
	// from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrShiftFull indicates a join or approval on a capped shift with no
	// available slots.
	ErrShiftFull = errors.New("shift is full")

	// ErrTemporalConflict indicates the shift has already started or ended
	// when the operation requires it not to have.
	ErrTemporalConflict = errors.New("shift time window does not permit this operation")

	// ErrShiftOverlapping indicates the operation would double-book the
	// volunteer across overlapping shift windows.
	ErrShiftOverlapping = errors.New("shift overlaps an existing registration")
)

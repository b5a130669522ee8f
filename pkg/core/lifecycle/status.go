// Package lifecycle defines the volunteer registration state machine and the
// time-derived shift status.
//
// Registration status graph:
//
//	PENDING ──► APPROVED ──► REMOVED ──► APPROVED (re-approval)
//	    │            │             ▲
//	    │            └──► LEFT     │
//	    ├──► CANCELLED             │
//	    └──► REJECTED ─────────────┘ (re-approval)
//
// CANCELLED, LEFT and (absent re-approval) REJECTED/REMOVED are terminal.
package lifecycle

import (
	"fmt"
	"time"
)

// Status is the state of a volunteer's registration to a shift.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCancelled Status = "CANCELLED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusRemoved   Status = "REMOVED"
	StatusLeft      Status = "LEFT"
)

// validTransitions lists every allowed (from → to) pair.
// REJECTED/REMOVED → APPROVED is the explicit re-approval path; every entry
// into APPROVED re-validates capacity and overlap regardless of origin.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusCancelled, StatusApproved, StatusRejected, StatusRemoved, StatusLeft},
	StatusApproved: {StatusRemoved, StatusLeft},
	StatusRejected: {StatusApproved},
	StatusRemoved:  {StatusApproved},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusCancelled, StatusApproved, StatusRejected, StatusRemoved, StatusLeft:
		return st, nil
	}
	return "", fmt.Errorf("unknown registration status %q", s)
}

// CanTransition returns true when moving from → to is permitted by the
// state machine.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsLive returns true for statuses that count as a live registration:
// a volunteer cannot hold two live registrations to the same shift.
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusApproved
}

// RequiresRejectionReason returns true for statuses that must carry a
// rejection reason. All other statuses must not.
func (s Status) RequiresRejectionReason() bool {
	return s == StatusRejected || s == StatusRemoved
}

// ShiftStatus is the state of a shift relative to its time window.
type ShiftStatus string

const (
	ShiftPending   ShiftStatus = "PENDING"
	ShiftOngoing   ShiftStatus = "ONGOING"
	ShiftCompleted ShiftStatus = "COMPLETED"
)

// DeriveShiftStatus computes the status a shift should hold at the given
// instant. The window is half-open: [start, end).
func DeriveShiftStatus(now, start, end time.Time) ShiftStatus {
	switch {
	case now.Before(start):
		return ShiftPending
	case now.Before(end):
		return ShiftOngoing
	default:
		return ShiftCompleted
	}
}

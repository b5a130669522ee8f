// Package services implements the volunteer registration lifecycle: joining,
// approval and rejection, removal, leaving, check-in/out, post-shift review
// and the skill-requirement evaluation that follows it. Every mutating flow
// runs its read, validation and write inside a single store transaction.
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/core/feasibility"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// BatchItemError pairs a failed id with its error in a bulk operation.
type BatchItemError struct {
	ID  uuid.UUID
	Err error
}

// BatchResult accumulates per-id outcomes of a bulk operation. One invalid
// id never blocks sibling ids from transitioning; successful items commit
// independently.
type BatchResult struct {
	Success []uuid.UUID
	Errors  []BatchItemError
}

func (r *BatchResult) record(id uuid.UUID, err error) {
	if err != nil {
		r.Errors = append(r.Errors, BatchItemError{ID: id, Err: err})
		return
	}
	r.Success = append(r.Success, id)
}

// effectiveShiftStatus returns the status the shift holds at now: derived
// from its time window when automatic updates are enabled, the stored status
// otherwise.
func effectiveShiftStatus(shift *db.Shift, now time.Time) lifecycle.ShiftStatus {
	if shift.AutomaticStatusUpdate {
		return lifecycle.DeriveShiftStatus(now, shift.StartTime, shift.EndTime)
	}
	return shift.Status
}

// shiftWindow builds the feasibility window for a shift.
func shiftWindow(shift *db.Shift) feasibility.Window {
	return feasibility.Window{Start: shift.StartTime, End: shift.EndTime}
}

// approvedWindows collects the time windows of the given registrations,
// excluding any registration for excludeShiftID.
func registrationWindows(regs []db.RegistrationWithShift, excludeShiftID uuid.UUID) []feasibility.Window {
	windows := make([]feasibility.Window, 0, len(regs))
	for _, reg := range regs {
		if reg.ShiftID == excludeShiftID {
			continue
		}
		windows = append(windows, feasibility.Window{Start: reg.ShiftStart, End: reg.ShiftEnd})
	}
	return windows
}

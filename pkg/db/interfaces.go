package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
)

// ShiftStore defines shift read/write operations.
type ShiftStore interface {
	GetShift(ctx context.Context, id uuid.UUID) (*Shift, error)

	// GetShiftForUpdate reads a shift with a row lock so concurrent
	// registration mutations against the same shift serialise. Only
	// meaningful inside WithTx.
	GetShiftForUpdate(ctx context.Context, id uuid.UUID) (*Shift, error)

	InsertShift(ctx context.Context, shift *Shift) error

	// IncrementJoined atomically takes one slot on the shift. Fails with
	// model.ErrShiftFull when the shift is capped and no slots remain.
	IncrementJoined(ctx context.Context, shiftID uuid.UUID) error

	// DecrementJoined atomically releases one slot. Counters clamp at zero.
	DecrementJoined(ctx context.Context, shiftID uuid.UUID) error

	// RecomputeShiftRating refreshes the shift's average rating from
	// submitted reviews.
	RecomputeShiftRating(ctx context.Context, shiftID uuid.UUID) error
}

// RegistrationStore defines registration read/write operations.
type RegistrationStore interface {
	GetRegistration(ctx context.Context, id uuid.UUID) (*Registration, error)

	// GetActiveLiveRegistration returns the active registration with a live
	// status (Pending/Approved) for the pair, or nil when none exists.
	GetActiveLiveRegistration(ctx context.Context, accountID, shiftID uuid.UUID) (*Registration, error)

	// ListAccountRegistrations returns the account's active registrations in
	// any of the given statuses, joined with their shift windows.
	ListAccountRegistrations(ctx context.Context, accountID uuid.UUID, statuses ...lifecycle.Status) ([]RegistrationWithShift, error)

	// DeactivateRegistrations clears the active flag on all of the pair's
	// registrations, making room for a fresh attempt.
	DeactivateRegistrations(ctx context.Context, accountID, shiftID uuid.UUID) error

	InsertRegistration(ctx context.Context, reg *Registration) error
	UpdateRegistration(ctx context.Context, reg *Registration) error

	SetMeetSkillRequirements(ctx context.Context, registrationID uuid.UUID, meets bool) error

	// GetByShiftID returns all active registrations for a shift.
	GetByShiftID(ctx context.Context, shiftID uuid.UUID) ([]Registration, error)

	// GetApprovedByActivityID returns approved registrations across all
	// shifts of an activity, for reporting.
	GetApprovedByActivityID(ctx context.Context, activityID uuid.UUID) ([]RegistrationWithShift, error)
}

// SkillStore defines skill requirement lookups.
type SkillStore interface {
	GetShiftSkills(ctx context.Context, shiftID uuid.UUID) ([]ShiftSkill, error)

	// GetAccountSkillHours returns the account's accumulated skill hours:
	// the sum of approved, completed shift-skill hours weighted by each
	// registration's completion ratio, keyed by skill id.
	GetAccountSkillHours(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]float64, error)
}

// SweepStore defines the bounded-page reads and bulk writes used by the
// periodic sweeps. Pages are keyset-paginated on primary key so no sweep
// holds locks over a full table scan.
type SweepStore interface {
	// ListShiftsNeedingStatusUpdate returns up to limit shifts with
	// automatic status updates enabled whose stored status differs from the
	// status derived at now, with id > afterID, ordered by id.
	ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]Shift, error)

	// BulkUpdateShiftStatus sets the status on all given shifts, returning
	// the number of rows changed.
	BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error)

	// ListStalePendingRegistrations returns up to limit active Pending
	// registrations whose shift started at or before now, with
	// id > afterID, ordered by id.
	ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]Registration, error)

	// BulkRejectRegistrations rejects the given registrations with the
	// supplied reason, returning the number of rows changed.
	BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error)
}

// Store is the full datastore surface. WithTx runs fn against a Store bound
// to a single transaction; fn returning an error rolls everything back.
type Store interface {
	ShiftStore
	RegistrationStore
	SkillStore
	SweepStore

	WithTx(ctx context.Context, fn func(Store) error) error
}

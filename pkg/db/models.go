package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
)

// Shift represents a time-boxed volunteering opportunity with optional
// capacity. AvailableSlots is derived: max(0, NumberOfParticipants -
// JoinedParticipants) when the cap is set, nil when uncapped.
type Shift struct {
	ID                    uuid.UUID
	ActivityID            uuid.UUID
	Name                  string
	Description           string
	StartTime             time.Time
	EndTime               time.Time
	Status                lifecycle.ShiftStatus
	NumberOfParticipants  *int
	AvailableSlots        *int
	JoinedParticipants    int
	AutomaticStatusUpdate bool
	CheckInLimitMinutes   *int
	CheckOutLimitMinutes  *int
	Rating                float64
	Lat                   *float64
	Lng                   *float64
}

// Registration represents a single volunteer's registration attempt for a
// shift. A volunteer may accumulate several attempts for the same shift over
// time; the most recent one carries Active=true.
type Registration struct {
	ID                    uuid.UUID
	ShiftID               uuid.UUID
	AccountID             uuid.UUID
	Status                lifecycle.Status
	Active                bool
	Attendant             bool
	CheckedIn             bool
	CheckInAt             *time.Time
	CheckedOut            bool
	CheckOutAt            *time.Time
	VerifierID            *uuid.UUID
	Completion            float64
	MeetSkillRequirements bool
	CensorID              *uuid.UUID
	RejectionReason       *string
	ShiftRating           *float64
	ShiftRatingComment    *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RegistrationWithShift joins a registration with the time window and
// location of its shift, for overlap and travel checks.
type RegistrationWithShift struct {
	Registration
	ShiftStart  time.Time
	ShiftEnd    time.Time
	ShiftStatus lifecycle.ShiftStatus
	ShiftLat    *float64
	ShiftLng    *float64
}

// ShiftSkill declares the minimum accumulated hours of a skill a volunteer
// must have logged to be considered as meeting requirements for a shift.
// Informational only; it never blocks joining.
type ShiftSkill struct {
	ShiftID uuid.UUID
	SkillID uuid.UUID
	Hours   float64
}

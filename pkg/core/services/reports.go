package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/core/feasibility"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// PendingReview is a Pending registration annotated with the advisory flags
// a moderator sees when deciding whether to approve it.
type PendingReview struct {
	Registration db.Registration

	// HasTravelingConstrainedShift warns that the volunteer holds an
	// approved shift they likely cannot travel from/to in time. Advisory;
	// approval is never blocked on it.
	HasTravelingConstrainedShift bool
}

// ListPendingReviews returns the shift's Pending registrations with travel
// feasibility computed against each volunteer's approved shifts. The flag is
// only raised when both shifts have known locations.
func ListPendingReviews(ctx context.Context, store db.Store, logger *zap.Logger, shiftID uuid.UUID) ([]PendingReview, error) {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift: %w", err)
	}

	regs, err := store.GetByShiftID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift registrations: %w", err)
	}

	reviews := make([]PendingReview, 0)
	for _, reg := range regs {
		if reg.Status != lifecycle.StatusPending {
			continue
		}

		constrained := false
		if shift.Lat != nil && shift.Lng != nil {
			approved, err := store.ListAccountRegistrations(ctx, reg.AccountID, lifecycle.StatusApproved)
			if err != nil {
				return nil, fmt.Errorf("failed to list approved registrations: %w", err)
			}
			constrained = hasTravelConstrainedShift(shift, approved)
		}

		reviews = append(reviews, PendingReview{
			Registration:                 reg,
			HasTravelingConstrainedShift: constrained,
		})
	}

	logger.Debug("Listed pending reviews",
		zap.String("shift_id", shiftID.String()),
		zap.Int("count", len(reviews)))
	return reviews, nil
}

// hasTravelConstrainedShift checks the target shift against each approved
// registration with a known location.
func hasTravelConstrainedShift(shift *db.Shift, approved []db.RegistrationWithShift) bool {
	target := shiftWindow(shift)
	targetLoc := feasibility.Location{Lat: *shift.Lat, Lng: *shift.Lng}

	for _, other := range approved {
		if other.ShiftID == shift.ID || other.ShiftLat == nil || other.ShiftLng == nil {
			continue
		}
		otherWindow := feasibility.Window{Start: other.ShiftStart, End: other.ShiftEnd}
		otherLoc := feasibility.Location{Lat: *other.ShiftLat, Lng: *other.ShiftLng}
		if feasibility.TravelConstrained(target, otherWindow, targetLoc, otherLoc) {
			return true
		}
	}
	return false
}

// GetApprovedByActivityID is the reporting read path for an activity's
// approved registrations across all its shifts.
func GetApprovedByActivityID(ctx context.Context, store db.Store, activityID uuid.UUID) ([]db.RegistrationWithShift, error) {
	regs, err := store.GetApprovedByActivityID(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved registrations: %w", err)
	}
	return regs, nil
}

// GetByShiftID is the reporting read path for a shift's registrations,
// including historical (rejected, removed, left) attempts still active.
func GetByShiftID(ctx context.Context, store db.Store, shiftID uuid.UUID) ([]db.Registration, error) {
	regs, err := store.GetByShiftID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift registrations: %w", err)
	}
	return regs, nil
}

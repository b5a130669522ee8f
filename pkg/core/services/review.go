package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
	"github.com/hackneyvolunteers/shifthub/pkg/events"
)

// ReviewShift records a volunteer's post-shift feedback. Only permitted on
// the volunteer's own Approved registration once the shift has completed.
// The shift's average rating is refreshed in the same transaction; the
// reviewed event is published after commit so listeners observe committed
// state.
func ReviewShift(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, publisher events.Publisher, accountID, registrationID uuid.UUID, rating float64, comment string) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5: %w", model.ErrInvalidTransition)
	}

	var shiftID uuid.UUID
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg.AccountID != accountID {
			return fmt.Errorf("registration %s does not belong to account: %w", registrationID, model.ErrNotFound)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("only approved registrations can be reviewed: %w", model.ErrInvalidTransition)
		}

		shift, err := tx.GetShift(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}
		if effectiveShiftStatus(shift, clk.Now()) != lifecycle.ShiftCompleted {
			return fmt.Errorf("shift must be completed before review: %w", model.ErrTemporalConflict)
		}
		shiftID = shift.ID

		reg.ShiftRating = &rating
		if comment != "" {
			reg.ShiftRatingComment = &comment
		}
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}

		return tx.RecomputeShiftRating(ctx, reg.ShiftID)
	})
	if err != nil {
		return err
	}

	evt := events.ShiftVolunteerReviewedEvent{
		AccountID:      accountID,
		ShiftID:        shiftID,
		PreviousStatus: string(lifecycle.StatusApproved),
		NextStatus:     string(lifecycle.StatusApproved),
		Rating:         rating,
	}
	if err := publisher.Publish(ctx, events.SubjectShiftVolunteerReviewed, evt); err != nil {
		// The review is committed; a lost event only delays the advisory
		// skill recomputation until the next one.
		logger.Warn("Failed to publish reviewed event",
			zap.String("registration_id", registrationID.String()),
			zap.Error(err))
	}

	logger.Info("Shift reviewed",
		zap.String("registration_id", registrationID.String()),
		zap.String("shift_id", shiftID.String()),
		zap.Float64("rating", rating))
	return nil
}

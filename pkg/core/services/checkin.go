package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// CheckIn records an approved volunteer's arrival. When the shift declares a
// check-in limit the volunteer may check in no earlier than that many
// minutes before the shift starts; check-in closes when the shift ends.
func CheckIn(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, accountID, registrationID uuid.UUID) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg.AccountID != accountID {
			return fmt.Errorf("registration %s does not belong to account: %w", registrationID, model.ErrNotFound)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("only approved volunteers can check in: %w", model.ErrInvalidTransition)
		}
		if reg.CheckedIn {
			return fmt.Errorf("already checked in: %w", model.ErrInvalidTransition)
		}

		shift, err := tx.GetShift(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}

		now := clk.Now()
		if now.After(shift.EndTime) || now.Equal(shift.EndTime) {
			return fmt.Errorf("shift has ended: %w", model.ErrTemporalConflict)
		}
		if shift.CheckInLimitMinutes != nil {
			earliest := shift.StartTime.Add(-time.Duration(*shift.CheckInLimitMinutes) * time.Minute)
			if now.Before(earliest) {
				return fmt.Errorf("check-in opens %d minutes before the shift: %w",
					*shift.CheckInLimitMinutes, model.ErrTemporalConflict)
			}
		}

		reg.CheckedIn = true
		reg.CheckInAt = &now
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Volunteer checked in",
		zap.String("registration_id", registrationID.String()),
		zap.String("account_id", accountID.String()))
	return nil
}

// CheckOut records the volunteer's departure and credits completion as the
// attended fraction of the shift window, clamped to [0, 1]. When the shift
// declares a check-out limit the volunteer may check out no later than that
// many minutes after the shift ends.
func CheckOut(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, accountID, registrationID uuid.UUID) error {
	var completion float64
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg.AccountID != accountID {
			return fmt.Errorf("registration %s does not belong to account: %w", registrationID, model.ErrNotFound)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("only approved volunteers can check out: %w", model.ErrInvalidTransition)
		}
		if !reg.CheckedIn || reg.CheckInAt == nil {
			return fmt.Errorf("cannot check out before checking in: %w", model.ErrInvalidTransition)
		}
		if reg.CheckedOut {
			return fmt.Errorf("already checked out: %w", model.ErrInvalidTransition)
		}

		shift, err := tx.GetShift(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}

		now := clk.Now()
		if shift.CheckOutLimitMinutes != nil {
			latest := shift.EndTime.Add(time.Duration(*shift.CheckOutLimitMinutes) * time.Minute)
			if now.After(latest) {
				return fmt.Errorf("check-out closed %d minutes after the shift: %w",
					*shift.CheckOutLimitMinutes, model.ErrTemporalConflict)
			}
		}

		completion = attendedFraction(shift.StartTime, shift.EndTime, *reg.CheckInAt, now)
		reg.CheckedOut = true
		reg.CheckOutAt = &now
		reg.Completion = completion
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Volunteer checked out",
		zap.String("registration_id", registrationID.String()),
		zap.Float64("completion", completion))
	return nil
}

// attendedFraction computes the portion of the shift window covered by the
// volunteer's presence, clamped to [0, 1].
func attendedFraction(shiftStart, shiftEnd, checkIn, checkOut time.Time) float64 {
	window := shiftEnd.Sub(shiftStart)
	if window <= 0 {
		return 0
	}

	from := checkIn
	if from.Before(shiftStart) {
		from = shiftStart
	}
	to := checkOut
	if to.After(shiftEnd) {
		to = shiftEnd
	}

	attended := to.Sub(from)
	if attended <= 0 {
		return 0
	}

	fraction := attended.Seconds() / window.Seconds()
	if fraction > 1 {
		return 1
	}
	return fraction
}

// VerifyCheckIn confirms a volunteer's attendance, stamping the verifier.
func VerifyCheckIn(ctx context.Context, store db.Store, logger *zap.Logger, verifierID, registrationID uuid.UUID) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("only approved registrations can be verified: %w", model.ErrInvalidTransition)
		}
		if !reg.CheckedIn {
			return fmt.Errorf("volunteer has not checked in: %w", model.ErrInvalidTransition)
		}

		reg.Attendant = true
		reg.VerifierID = &verifierID
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Check-in verified",
		zap.String("registration_id", registrationID.String()),
		zap.String("verifier_id", verifierID.String()))
	return nil
}

// VerifyCheckInMany applies VerifyCheckIn to each id independently.
func VerifyCheckInMany(ctx context.Context, store db.Store, logger *zap.Logger, verifierID uuid.UUID, registrationIDs []uuid.UUID) BatchResult {
	var result BatchResult
	for _, id := range registrationIDs {
		result.record(id, VerifyCheckIn(ctx, store, logger, verifierID, id))
	}
	return result
}

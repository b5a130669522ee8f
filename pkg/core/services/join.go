package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/feasibility"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// JoinShift registers a volunteer for a shift, creating a fresh Pending
// registration. The shift must still be Pending, have a free slot when
// capped, and must not overlap any of the account's Approved shifts. Earlier
// attempts for the pair are retained but marked inactive.
func JoinShift(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, accountID, shiftID uuid.UUID) (*db.Registration, error) {
	logger.Debug("Joining shift",
		zap.String("account_id", accountID.String()),
		zap.String("shift_id", shiftID.String()))

	var reg *db.Registration
	err := store.WithTx(ctx, func(tx db.Store) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}

		now := clk.Now()
		if effectiveShiftStatus(shift, now) != lifecycle.ShiftPending {
			return fmt.Errorf("cannot join a shift that has started: %w", model.ErrTemporalConflict)
		}

		if shift.AvailableSlots != nil && *shift.AvailableSlots <= 0 {
			return fmt.Errorf("shift %s: %w", shiftID, model.ErrShiftFull)
		}

		existing, err := tx.GetActiveLiveRegistration(ctx, accountID, shiftID)
		if err != nil {
			return fmt.Errorf("failed to check existing registration: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("account already holds a live registration for this shift: %w", model.ErrInvalidTransition)
		}

		approved, err := tx.ListAccountRegistrations(ctx, accountID, lifecycle.StatusApproved)
		if err != nil {
			return fmt.Errorf("failed to list approved registrations: %w", err)
		}
		if feasibility.OverlapsAny(shiftWindow(shift), registrationWindows(approved, shiftID)) {
			return fmt.Errorf("shift %s: %w", shiftID, model.ErrShiftOverlapping)
		}

		// Retire earlier attempts for this pair before inserting the new one.
		if err := tx.DeactivateRegistrations(ctx, accountID, shiftID); err != nil {
			return fmt.Errorf("failed to deactivate prior registrations: %w", err)
		}

		meets, err := ComputeMeetsRequirements(ctx, tx, accountID, shiftID)
		if err != nil {
			return fmt.Errorf("failed to compute skill requirements: %w", err)
		}

		reg = &db.Registration{
			ID:                    uuid.New(),
			ShiftID:               shiftID,
			AccountID:             accountID,
			Status:                lifecycle.StatusPending,
			Active:                true,
			MeetSkillRequirements: meets,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := tx.InsertRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to insert registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Volunteer joined shift",
		zap.String("registration_id", reg.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("shift_id", shiftID.String()),
		zap.Bool("meets_skill_requirements", reg.MeetSkillRequirements))

	return reg, nil
}

// CancelJoin withdraws the volunteer's own Pending registration.
func CancelJoin(ctx context.Context, store db.Store, logger *zap.Logger, accountID, registrationID uuid.UUID) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg.AccountID != accountID {
			return fmt.Errorf("registration %s does not belong to account: %w", registrationID, model.ErrNotFound)
		}
		if !reg.Active || reg.Status != lifecycle.StatusPending {
			return fmt.Errorf("only an active pending registration can be cancelled: %w", model.ErrInvalidTransition)
		}

		reg.Status = lifecycle.StatusCancelled
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Volunteer cancelled pending registration",
		zap.String("registration_id", registrationID.String()),
		zap.String("account_id", accountID.String()))
	return nil
}

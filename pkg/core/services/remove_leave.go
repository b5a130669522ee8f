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
)

// RemoveVolunteer moves an Approved registration to Removed, releasing the
// shift slot. Moderator-initiated; the shift must not be completed.
func RemoveVolunteer(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID, registrationID uuid.UUID, reason string) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("cannot remove a %s registration: %w", reg.Status, model.ErrInvalidTransition)
		}

		shift, err := tx.GetShiftForUpdate(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}
		if effectiveShiftStatus(shift, clk.Now()) == lifecycle.ShiftCompleted {
			return fmt.Errorf("cannot remove a volunteer from a completed shift: %w", model.ErrTemporalConflict)
		}

		if err := tx.DecrementJoined(ctx, reg.ShiftID); err != nil {
			return err
		}

		reg.Status = lifecycle.StatusRemoved
		reg.RejectionReason = &reason
		reg.CensorID = &censorID
		reg.Completion = 0
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Volunteer removed from shift",
		zap.String("registration_id", registrationID.String()),
		zap.String("censor_id", censorID.String()))
	return nil
}

// RemoveMany applies RemoveVolunteer to each id independently.
func RemoveMany(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID uuid.UUID, registrationIDs []uuid.UUID, reason string) BatchResult {
	var result BatchResult
	for _, id := range registrationIDs {
		result.record(id, RemoveVolunteer(ctx, store, clk, logger, censorID, id, reason))
	}
	return result
}

// LeaveShift lets a volunteer walk away from an Approved registration,
// releasing the slot. Only permitted while the shift is still Pending.
func LeaveShift(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, accountID, registrationID uuid.UUID) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg.AccountID != accountID {
			return fmt.Errorf("registration %s does not belong to account: %w", registrationID, model.ErrNotFound)
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			return fmt.Errorf("cannot leave a %s registration: %w", reg.Status, model.ErrInvalidTransition)
		}

		shift, err := tx.GetShiftForUpdate(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}
		if effectiveShiftStatus(shift, clk.Now()) != lifecycle.ShiftPending {
			return fmt.Errorf("volunteers may not leave once the shift has started: %w", model.ErrTemporalConflict)
		}

		if err := tx.DecrementJoined(ctx, reg.ShiftID); err != nil {
			return err
		}

		reg.Status = lifecycle.StatusLeft
		reg.Completion = 0
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Volunteer left shift",
		zap.String("registration_id", registrationID.String()),
		zap.String("account_id", accountID.String()))
	return nil
}

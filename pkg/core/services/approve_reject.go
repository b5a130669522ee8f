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

// ApproveRegistration moves a registration into Approved, taking a slot on
// the shift. The transition is legal from Pending and, as the explicit
// re-approval path, from Rejected or Removed; capacity and overlap are
// re-validated on every entry into Approved. Approving also cancels the
// account's other Pending registrations whose shifts overlap this one.
func ApproveRegistration(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID, registrationID uuid.UUID) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if !reg.Active {
			return fmt.Errorf("registration %s is not the active attempt: %w", registrationID, model.ErrInvalidTransition)
		}
		if !lifecycle.CanTransition(reg.Status, lifecycle.StatusApproved) {
			return fmt.Errorf("cannot approve a %s registration: %w", reg.Status, model.ErrInvalidTransition)
		}

		shift, err := tx.GetShiftForUpdate(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}

		now := clk.Now()
		if effectiveShiftStatus(shift, now) == lifecycle.ShiftCompleted {
			return fmt.Errorf("cannot approve a registration for a completed shift: %w", model.ErrTemporalConflict)
		}

		approved, err := tx.ListAccountRegistrations(ctx, reg.AccountID, lifecycle.StatusApproved)
		if err != nil {
			return fmt.Errorf("failed to list approved registrations: %w", err)
		}
		if feasibility.OverlapsAny(shiftWindow(shift), registrationWindows(approved, reg.ShiftID)) {
			return fmt.Errorf("approval would double-book the volunteer: %w", model.ErrShiftOverlapping)
		}

		// Take the slot in the same transaction as the status write.
		if err := tx.IncrementJoined(ctx, reg.ShiftID); err != nil {
			return err
		}

		reg.Status = lifecycle.StatusApproved
		reg.CensorID = &censorID
		reg.RejectionReason = nil
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}

		return cancelOverlappingPending(ctx, tx, logger, reg.AccountID, reg.ShiftID, shiftWindow(shift))
	})
	if err != nil {
		return err
	}

	logger.Info("Registration approved",
		zap.String("registration_id", registrationID.String()),
		zap.String("censor_id", censorID.String()))
	return nil
}

// cancelOverlappingPending cancels the account's other Pending registrations
// whose shift windows overlap the newly approved shift.
func cancelOverlappingPending(ctx context.Context, tx db.Store, logger *zap.Logger, accountID, approvedShiftID uuid.UUID, window feasibility.Window) error {
	pending, err := tx.ListAccountRegistrations(ctx, accountID, lifecycle.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending registrations: %w", err)
	}

	for i := range pending {
		p := &pending[i]
		if p.ShiftID == approvedShiftID {
			continue
		}
		if !feasibility.Overlaps(window, feasibility.Window{Start: p.ShiftStart, End: p.ShiftEnd}) {
			continue
		}

		p.Status = lifecycle.StatusCancelled
		if err := tx.UpdateRegistration(ctx, &p.Registration); err != nil {
			return fmt.Errorf("failed to cancel overlapping pending registration: %w", err)
		}
		logger.Debug("Cancelled overlapping pending registration",
			zap.String("registration_id", p.ID.String()),
			zap.String("shift_id", p.ShiftID.String()))
	}
	return nil
}

// RejectRegistration moves a Pending registration to Rejected with a reason.
func RejectRegistration(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID, registrationID uuid.UUID, reason string) error {
	err := store.WithTx(ctx, func(tx db.Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if !reg.Active || !lifecycle.CanTransition(reg.Status, lifecycle.StatusRejected) {
			return fmt.Errorf("cannot reject a %s registration: %w", reg.Status, model.ErrInvalidTransition)
		}

		shift, err := tx.GetShift(ctx, reg.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to fetch shift: %w", err)
		}
		if effectiveShiftStatus(shift, clk.Now()) == lifecycle.ShiftCompleted {
			return fmt.Errorf("cannot reject a registration for a completed shift: %w", model.ErrTemporalConflict)
		}

		reg.Status = lifecycle.StatusRejected
		reg.RejectionReason = &reason
		reg.CensorID = &censorID
		if err := tx.UpdateRegistration(ctx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Registration rejected",
		zap.String("registration_id", registrationID.String()),
		zap.String("censor_id", censorID.String()))
	return nil
}

// ApproveMany applies ApproveRegistration to each id independently,
// collecting per-id outcomes. Each approval commits in its own transaction.
func ApproveMany(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID uuid.UUID, registrationIDs []uuid.UUID) BatchResult {
	var result BatchResult
	for _, id := range registrationIDs {
		result.record(id, ApproveRegistration(ctx, store, clk, logger, censorID, id))
	}
	return result
}

// RejectMany applies RejectRegistration to each id independently.
func RejectMany(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, censorID uuid.UUID, registrationIDs []uuid.UUID, reason string) BatchResult {
	var result BatchResult
	for _, id := range registrationIDs {
		result.record(id, RejectRegistration(ctx, store, clk, logger, censorID, id, reason))
	}
	return result
}

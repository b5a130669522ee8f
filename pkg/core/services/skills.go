package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
	"github.com/hackneyvolunteers/shifthub/pkg/events"
)

// ComputeMeetsRequirements reports whether the account's accumulated skill
// hours satisfy every skill-hour requirement the shift declares. A shift
// with no requirements is always met. Advisory only; never a gate on
// joining.
func ComputeMeetsRequirements(ctx context.Context, store db.Store, accountID, shiftID uuid.UUID) (bool, error) {
	required, err := store.GetShiftSkills(ctx, shiftID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch shift skills: %w", err)
	}
	if len(required) == 0 {
		return true, nil
	}

	hours, err := store.GetAccountSkillHours(ctx, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch account skill hours: %w", err)
	}

	for _, req := range required {
		if hours[req.SkillID] < req.Hours {
			return false, nil
		}
	}
	return true, nil
}

// ReevaluateSkillRequirements recomputes meetSkillRequirements for every
// live registration of the account whose shift has not completed. Run after
// a review changes the account's skill hours; idempotent, so duplicate event
// deliveries are harmless.
func ReevaluateSkillRequirements(ctx context.Context, store db.Store, logger *zap.Logger, accountID uuid.UUID) error {
	regs, err := store.ListAccountRegistrations(ctx, accountID, lifecycle.StatusPending, lifecycle.StatusApproved)
	if err != nil {
		return fmt.Errorf("failed to list live registrations: %w", err)
	}

	for _, reg := range regs {
		if reg.ShiftStatus == lifecycle.ShiftCompleted {
			continue
		}

		meets, err := ComputeMeetsRequirements(ctx, store, accountID, reg.ShiftID)
		if err != nil {
			return err
		}
		if meets == reg.MeetSkillRequirements {
			continue
		}

		if err := store.SetMeetSkillRequirements(ctx, reg.ID, meets); err != nil {
			return err
		}
		logger.Debug("Updated skill requirement flag",
			zap.String("registration_id", reg.ID.String()),
			zap.Bool("meets", meets))
	}
	return nil
}

// NewReviewedEventHandler returns an event handler that re-evaluates skill
// requirements for the reviewing account. Subscribe it to
// events.SubjectShiftVolunteerReviewed.
func NewReviewedEventHandler(store db.Store, logger *zap.Logger) events.Handler {
	return func(ctx context.Context, data []byte) error {
		var evt events.ShiftVolunteerReviewedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return fmt.Errorf("failed to decode reviewed event: %w", err)
		}
		return ReevaluateSkillRequirements(ctx, store, logger, evt.AccountID)
	}
}

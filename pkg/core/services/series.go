package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// seriesHorizon bounds how far ahead a series is expanded.
const seriesHorizon = 365 * 24 * time.Hour

// ShiftSeriesParams describes a recurring set of shifts sharing a template.
type ShiftSeriesParams struct {
	ActivityID            uuid.UUID
	Name                  string
	Description           string
	RRule                 string
	Duration              time.Duration
	MaxOccurrences        int
	NumberOfParticipants  *int
	AutomaticStatusUpdate bool
	CheckInLimitMinutes   *int
	CheckOutLimitMinutes  *int
	Lat                   *float64
	Lng                   *float64
}

// DefineShiftSeries expands an RRULE into concrete shift rows, all created
// in one transaction. Occurrences are taken from now up to one year out,
// capped at MaxOccurrences.
func DefineShiftSeries(ctx context.Context, store db.Store, clk clock.Clock, logger *zap.Logger, params ShiftSeriesParams) ([]db.Shift, error) {
	if params.Duration <= 0 {
		return nil, fmt.Errorf("shift duration must be positive, got %s", params.Duration)
	}
	if params.MaxOccurrences <= 0 {
		return nil, fmt.Errorf("max occurrences must be positive, got %d", params.MaxOccurrences)
	}
	if params.NumberOfParticipants != nil && *params.NumberOfParticipants <= 0 {
		return nil, fmt.Errorf("participant cap must be positive, got %d", *params.NumberOfParticipants)
	}

	rule, err := rrule.StrToRRule(params.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}

	now := clk.Now()
	// An explicit DTSTART in the rule wins; otherwise anchor at now.
	if rule.OrigOptions.Dtstart.IsZero() {
		rule.DTStart(now)
	}
	occurrences := rule.Between(now, now.Add(seriesHorizon), true)
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("rrule %q yields no occurrences within a year", params.RRule)
	}
	if len(occurrences) > params.MaxOccurrences {
		occurrences = occurrences[:params.MaxOccurrences]
	}

	logger.Debug("Expanding shift series",
		zap.String("rrule", params.RRule),
		zap.Int("occurrences", len(occurrences)))

	shifts := make([]db.Shift, 0, len(occurrences))
	for _, start := range occurrences {
		var availableSlots *int
		if params.NumberOfParticipants != nil {
			slots := *params.NumberOfParticipants
			availableSlots = &slots
		}

		shifts = append(shifts, db.Shift{
			ID:                    uuid.New(),
			ActivityID:            params.ActivityID,
			Name:                  params.Name,
			Description:           params.Description,
			StartTime:             start,
			EndTime:               start.Add(params.Duration),
			Status:                lifecycle.DeriveShiftStatus(now, start, start.Add(params.Duration)),
			NumberOfParticipants:  params.NumberOfParticipants,
			AvailableSlots:        availableSlots,
			AutomaticStatusUpdate: params.AutomaticStatusUpdate,
			CheckInLimitMinutes:   params.CheckInLimitMinutes,
			CheckOutLimitMinutes:  params.CheckOutLimitMinutes,
			Lat:                   params.Lat,
			Lng:                   params.Lng,
		})
	}

	err = store.WithTx(ctx, func(tx db.Store) error {
		for i := range shifts {
			if err := tx.InsertShift(ctx, &shifts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert shift series: %w", err)
	}

	logger.Info("Shift series created",
		zap.String("activity_id", params.ActivityID.String()),
		zap.String("name", params.Name),
		zap.Int("shift_count", len(shifts)),
		zap.Time("first_shift", shifts[0].StartTime),
		zap.Time("last_shift", shifts[len(shifts)-1].StartTime))

	return shifts, nil
}

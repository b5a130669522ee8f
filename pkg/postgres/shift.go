package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

const shiftColumns = `id, activity_id, name, description, start_time, end_time, status,
	number_of_participants, available_slots, joined_participants, automatic_status_update,
	check_in_limit_minutes, check_out_limit_minutes, rating, lat, lng`

func scanShift(row pgx.Row) (*db.Shift, error) {
	var s db.Shift
	var status string
	err := row.Scan(&s.ID, &s.ActivityID, &s.Name, &s.Description, &s.StartTime, &s.EndTime,
		&status, &s.NumberOfParticipants, &s.AvailableSlots, &s.JoinedParticipants,
		&s.AutomaticStatusUpdate, &s.CheckInLimitMinutes, &s.CheckOutLimitMinutes,
		&s.Rating, &s.Lat, &s.Lng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("shift: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan shift: %w", err)
	}
	s.Status = lifecycle.ShiftStatus(status)
	return &s, nil
}

// GetShift retrieves a shift by id.
func (d *DB) GetShift(ctx context.Context, id uuid.UUID) (*db.Shift, error) {
	row := d.q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift WHERE id = $1`, id)
	return scanShift(row)
}

// GetShiftForUpdate retrieves a shift by id with a row lock. Only meaningful
// inside WithTx.
func (d *DB) GetShiftForUpdate(ctx context.Context, id uuid.UUID) (*db.Shift, error) {
	row := d.q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shift WHERE id = $1 FOR UPDATE`, id)
	return scanShift(row)
}

// InsertShift inserts a new shift record.
func (d *DB) InsertShift(ctx context.Context, shift *db.Shift) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO shift (`+shiftColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, shift.ID, shift.ActivityID, shift.Name, shift.Description, shift.StartTime, shift.EndTime,
		string(shift.Status), shift.NumberOfParticipants, shift.AvailableSlots,
		shift.JoinedParticipants, shift.AutomaticStatusUpdate,
		shift.CheckInLimitMinutes, shift.CheckOutLimitMinutes, shift.Rating, shift.Lat, shift.Lng)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// IncrementJoined atomically takes one slot. The guard keeps
// joined_participants within the cap; zero rows updated on a capped shift
// means the shift is full.
func (d *DB) IncrementJoined(ctx context.Context, shiftID uuid.UUID) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE shift SET
			joined_participants = joined_participants + 1,
			available_slots = CASE WHEN number_of_participants IS NULL THEN NULL
				ELSE GREATEST(number_of_participants - (joined_participants + 1), 0) END
		WHERE id = $1
		  AND (number_of_participants IS NULL OR joined_participants < number_of_participants)
	`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to increment joined participants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := d.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shift WHERE id = $1)`, shiftID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check shift existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("shift %s: %w", shiftID, model.ErrNotFound)
		}
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrShiftFull)
	}
	return nil
}

// DecrementJoined atomically releases one slot; counters clamp at zero.
func (d *DB) DecrementJoined(ctx context.Context, shiftID uuid.UUID) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE shift SET
			joined_participants = GREATEST(joined_participants - 1, 0),
			available_slots = CASE WHEN number_of_participants IS NULL THEN NULL
				ELSE GREATEST(number_of_participants - GREATEST(joined_participants - 1, 0), 0) END
		WHERE id = $1
	`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to decrement joined participants: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrNotFound)
	}
	return nil
}

// RecomputeShiftRating refreshes the shift's average rating from submitted
// reviews.
func (d *DB) RecomputeShiftRating(ctx context.Context, shiftID uuid.UUID) error {
	_, err := d.q.Exec(ctx, `
		UPDATE shift SET rating = COALESCE((
			SELECT AVG(shift_rating) FROM volunteer_shift
			WHERE shift_id = $1 AND active AND status = 'APPROVED' AND shift_rating IS NOT NULL
		), 0)
		WHERE id = $1
	`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to recompute shift rating: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// ListShiftsNeedingStatusUpdate returns a keyset page of shifts whose stored
// status differs from the status derived at now. Only shifts with automatic
// status updates enabled are considered.
func (d *DB) ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Shift, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+shiftColumns+` FROM shift
		WHERE automatic_status_update
		  AND id > $2
		  AND status <> CASE
			WHEN $1 < start_time THEN 'PENDING'
			WHEN $1 < end_time THEN 'ONGOING'
			ELSE 'COMPLETED' END
		ORDER BY id
		LIMIT $3
	`, now, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts needing status update: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}
	return shifts, nil
}

// BulkUpdateShiftStatus sets the status on all given shifts.
func (d *DB) BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := d.q.Exec(ctx, `
		UPDATE shift SET status = $2 WHERE id = ANY($1) AND status <> $2
	`, ids, string(status))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update shift status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListStalePendingRegistrations returns a keyset page of active Pending
// registrations whose shift started at or before now.
func (d *DB) ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Registration, error) {
	rows, err := d.q.Query(ctx, `
		SELECT vs.`+joinedRegistrationColumns()+`
		FROM volunteer_shift vs
		JOIN shift s ON s.id = vs.shift_id
		WHERE vs.active AND vs.status = 'PENDING'
		  AND s.start_time <= $1
		  AND vs.id > $2
		ORDER BY vs.id
		LIMIT $3
	`, now, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending registrations: %w", err)
	}
	return collectRegistrations(rows)
}

// BulkRejectRegistrations rejects the given registrations with the supplied
// reason. Only Pending registrations are touched, so re-running is a no-op.
func (d *DB) BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := d.q.Exec(ctx, `
		UPDATE volunteer_shift SET
			status = 'REJECTED', rejection_reason = $2, updated_at = NOW()
		WHERE id = ANY($1) AND status = 'PENDING' AND active
	`, ids, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk reject registrations: %w", err)
	}
	return tag.RowsAffected(), nil
}

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

const registrationColumns = `id, shift_id, account_id, status, active, attendant,
	checked_in, check_in_at, checked_out, check_out_at, verifier_id, completion,
	meet_skill_requirements, censor_id, rejection_reason, shift_rating,
	shift_rating_comment, created_at, updated_at`

func scanRegistration(row pgx.Row) (*db.Registration, error) {
	var r db.Registration
	var status string
	err := row.Scan(&r.ID, &r.ShiftID, &r.AccountID, &status, &r.Active, &r.Attendant,
		&r.CheckedIn, &r.CheckInAt, &r.CheckedOut, &r.CheckOutAt, &r.VerifierID, &r.Completion,
		&r.MeetSkillRequirements, &r.CensorID, &r.RejectionReason, &r.ShiftRating,
		&r.ShiftRatingComment, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("registration: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	r.Status = lifecycle.Status(status)
	return &r, nil
}

func collectRegistrations(rows pgx.Rows) ([]db.Registration, error) {
	defer rows.Close()

	var regs []db.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}
	return regs, nil
}

// GetRegistration retrieves a registration by id.
func (d *DB) GetRegistration(ctx context.Context, id uuid.UUID) (*db.Registration, error) {
	row := d.q.QueryRow(ctx, `SELECT `+registrationColumns+` FROM volunteer_shift WHERE id = $1`, id)
	return scanRegistration(row)
}

// GetActiveLiveRegistration returns the active Pending/Approved registration
// for the pair, or nil when none exists.
func (d *DB) GetActiveLiveRegistration(ctx context.Context, accountID, shiftID uuid.UUID) (*db.Registration, error) {
	row := d.q.QueryRow(ctx, `
		SELECT `+registrationColumns+` FROM volunteer_shift
		WHERE account_id = $1 AND shift_id = $2 AND active AND status IN ('PENDING', 'APPROVED')
	`, accountID, shiftID)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

// ListAccountRegistrations returns the account's active registrations in any
// of the given statuses, joined with their shift windows.
func (d *DB) ListAccountRegistrations(ctx context.Context, accountID uuid.UUID, statuses ...lifecycle.Status) ([]db.RegistrationWithShift, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := d.q.Query(ctx, `
		SELECT vs.`+joinedRegistrationColumns()+`,
			s.start_time, s.end_time, s.status, s.lat, s.lng
		FROM volunteer_shift vs
		JOIN shift s ON s.id = vs.shift_id
		WHERE vs.account_id = $1 AND vs.active AND vs.status = ANY($2)
		ORDER BY s.start_time
	`, accountID, statusStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query account registrations: %w", err)
	}
	return collectRegistrationsWithShift(rows)
}

// DeactivateRegistrations clears the active flag on all of the pair's
// registrations.
func (d *DB) DeactivateRegistrations(ctx context.Context, accountID, shiftID uuid.UUID) error {
	_, err := d.q.Exec(ctx, `
		UPDATE volunteer_shift SET active = FALSE, updated_at = NOW()
		WHERE account_id = $1 AND shift_id = $2 AND active
	`, accountID, shiftID)
	if err != nil {
		return fmt.Errorf("failed to deactivate registrations: %w", err)
	}
	return nil
}

// InsertRegistration inserts a new registration record.
func (d *DB) InsertRegistration(ctx context.Context, reg *db.Registration) error {
	_, err := d.q.Exec(ctx, `
		INSERT INTO volunteer_shift (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, reg.ID, reg.ShiftID, reg.AccountID, string(reg.Status), reg.Active, reg.Attendant,
		reg.CheckedIn, reg.CheckInAt, reg.CheckedOut, reg.CheckOutAt, reg.VerifierID, reg.Completion,
		reg.MeetSkillRequirements, reg.CensorID, reg.RejectionReason, reg.ShiftRating,
		reg.ShiftRatingComment, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

// UpdateRegistration writes all mutable registration fields.
func (d *DB) UpdateRegistration(ctx context.Context, reg *db.Registration) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE volunteer_shift SET
			status = $2, active = $3, attendant = $4, checked_in = $5, check_in_at = $6,
			checked_out = $7, check_out_at = $8, verifier_id = $9, completion = $10,
			meet_skill_requirements = $11, censor_id = $12, rejection_reason = $13,
			shift_rating = $14, shift_rating_comment = $15, updated_at = NOW()
		WHERE id = $1
	`, reg.ID, string(reg.Status), reg.Active, reg.Attendant, reg.CheckedIn, reg.CheckInAt,
		reg.CheckedOut, reg.CheckOutAt, reg.VerifierID, reg.Completion,
		reg.MeetSkillRequirements, reg.CensorID, reg.RejectionReason,
		reg.ShiftRating, reg.ShiftRatingComment)
	if err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("registration %s: %w", reg.ID, model.ErrNotFound)
	}
	return nil
}

// SetMeetSkillRequirements updates the advisory skill flag.
func (d *DB) SetMeetSkillRequirements(ctx context.Context, registrationID uuid.UUID, meets bool) error {
	_, err := d.q.Exec(ctx, `
		UPDATE volunteer_shift SET meet_skill_requirements = $2, updated_at = NOW()
		WHERE id = $1
	`, registrationID, meets)
	if err != nil {
		return fmt.Errorf("failed to set meet_skill_requirements: %w", err)
	}
	return nil
}

// GetByShiftID returns all active registrations for a shift.
func (d *DB) GetByShiftID(ctx context.Context, shiftID uuid.UUID) ([]db.Registration, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+registrationColumns+` FROM volunteer_shift
		WHERE shift_id = $1 AND active
		ORDER BY created_at
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations by shift: %w", err)
	}
	return collectRegistrations(rows)
}

// GetApprovedByActivityID returns approved registrations across all shifts of
// an activity, joined with their shift windows, for reporting.
func (d *DB) GetApprovedByActivityID(ctx context.Context, activityID uuid.UUID) ([]db.RegistrationWithShift, error) {
	rows, err := d.q.Query(ctx, `
		SELECT vs.`+joinedRegistrationColumns()+`,
			s.start_time, s.end_time, s.status, s.lat, s.lng
		FROM volunteer_shift vs
		JOIN shift s ON s.id = vs.shift_id
		WHERE s.activity_id = $1 AND vs.active AND vs.status = 'APPROVED'
		ORDER BY s.start_time
	`, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved registrations by activity: %w", err)
	}
	return collectRegistrationsWithShift(rows)
}

func joinedRegistrationColumns() string {
	// Prefix every registration column with the volunteer_shift alias.
	cols := ""
	for i, col := range []string{
		"id", "shift_id", "account_id", "status", "active", "attendant",
		"checked_in", "check_in_at", "checked_out", "check_out_at", "verifier_id", "completion",
		"meet_skill_requirements", "censor_id", "rejection_reason", "shift_rating",
		"shift_rating_comment", "created_at", "updated_at",
	} {
		if i > 0 {
			cols += ", vs."
		}
		cols += col
	}
	return cols
}

func collectRegistrationsWithShift(rows pgx.Rows) ([]db.RegistrationWithShift, error) {
	defer rows.Close()

	var regs []db.RegistrationWithShift
	for rows.Next() {
		var r db.RegistrationWithShift
		var status, shiftStatus string
		err := rows.Scan(&r.ID, &r.ShiftID, &r.AccountID, &status, &r.Active, &r.Attendant,
			&r.CheckedIn, &r.CheckInAt, &r.CheckedOut, &r.CheckOutAt, &r.VerifierID, &r.Completion,
			&r.MeetSkillRequirements, &r.CensorID, &r.RejectionReason, &r.ShiftRating,
			&r.ShiftRatingComment, &r.CreatedAt, &r.UpdatedAt,
			&r.ShiftStart, &r.ShiftEnd, &shiftStatus, &r.ShiftLat, &r.ShiftLng)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration with shift: %w", err)
		}
		r.Status = lifecycle.Status(status)
		r.ShiftStatus = lifecycle.ShiftStatus(shiftStatus)
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}
	return regs, nil
}

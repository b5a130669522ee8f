package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// GetShiftSkills returns a shift's declared skill-hour requirements.
func (d *DB) GetShiftSkills(ctx context.Context, shiftID uuid.UUID) ([]db.ShiftSkill, error) {
	rows, err := d.q.Query(ctx, `
		SELECT shift_id, skill_id, hours FROM shift_skill WHERE shift_id = $1
	`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift skills: %w", err)
	}
	defer rows.Close()

	var skills []db.ShiftSkill
	for rows.Next() {
		var s db.ShiftSkill
		if err := rows.Scan(&s.ShiftID, &s.SkillID, &s.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan shift skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift skills: %w", err)
	}
	return skills, nil
}

// GetAccountSkillHours accumulates the account's skill hours from approved
// registrations on completed shifts, weighted by each registration's
// completion ratio.
func (d *DB) GetAccountSkillHours(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]float64, error) {
	rows, err := d.q.Query(ctx, `
		SELECT ss.skill_id, SUM(ss.hours * vs.completion)
		FROM volunteer_shift vs
		JOIN shift s ON s.id = vs.shift_id
		JOIN shift_skill ss ON ss.shift_id = vs.shift_id
		WHERE vs.account_id = $1 AND vs.active AND vs.status = 'APPROVED' AND s.status = 'COMPLETED'
		GROUP BY ss.skill_id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account skill hours: %w", err)
	}
	defer rows.Close()

	hours := make(map[uuid.UUID]float64)
	for rows.Next() {
		var skillID uuid.UUID
		var total float64
		if err := rows.Scan(&skillID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan skill hours: %w", err)
		}
		hours[skillID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skill hours: %w", err)
	}
	return hours, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// mockStore is an in-memory db.Store for service tests. WithTx runs the
// callback against the store itself; tests that need rollback semantics
// assert on the returned error instead.
type mockStore struct {
	shifts map[uuid.UUID]*db.Shift
	regs   map[uuid.UUID]*db.Registration
	skills map[uuid.UUID][]db.ShiftSkill
	hours  map[uuid.UUID]map[uuid.UUID]float64
}

func newMockStore() *mockStore {
	return &mockStore{
		shifts: make(map[uuid.UUID]*db.Shift),
		regs:   make(map[uuid.UUID]*db.Registration),
		skills: make(map[uuid.UUID][]db.ShiftSkill),
		hours:  make(map[uuid.UUID]map[uuid.UUID]float64),
	}
}

func (m *mockStore) addShift(shift db.Shift) {
	m.recomputeSlots(&shift)
	m.shifts[shift.ID] = &shift
}

func (m *mockStore) addRegistration(reg db.Registration) {
	r := reg
	m.regs[reg.ID] = &r
}

func regWithStatus(id, shiftID, accountID uuid.UUID, status lifecycle.Status) db.Registration {
	return db.Registration{
		ID:        id,
		ShiftID:   shiftID,
		AccountID: accountID,
		Status:    status,
		Active:    true,
	}
}

func (m *mockStore) recomputeSlots(shift *db.Shift) {
	if shift.NumberOfParticipants == nil {
		shift.AvailableSlots = nil
		return
	}
	slots := *shift.NumberOfParticipants - shift.JoinedParticipants
	if slots < 0 {
		slots = 0
	}
	shift.AvailableSlots = &slots
}

func (m *mockStore) WithTx(ctx context.Context, fn func(db.Store) error) error {
	return fn(m)
}

func (m *mockStore) GetShift(ctx context.Context, id uuid.UUID) (*db.Shift, error) {
	shift, ok := m.shifts[id]
	if !ok {
		return nil, fmt.Errorf("shift %s: %w", id, model.ErrNotFound)
	}
	cp := *shift
	return &cp, nil
}

func (m *mockStore) GetShiftForUpdate(ctx context.Context, id uuid.UUID) (*db.Shift, error) {
	return m.GetShift(ctx, id)
}

func (m *mockStore) InsertShift(ctx context.Context, shift *db.Shift) error {
	cp := *shift
	m.shifts[shift.ID] = &cp
	return nil
}

func (m *mockStore) IncrementJoined(ctx context.Context, shiftID uuid.UUID) error {
	shift, ok := m.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrNotFound)
	}
	if shift.NumberOfParticipants != nil && shift.JoinedParticipants >= *shift.NumberOfParticipants {
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrShiftFull)
	}
	shift.JoinedParticipants++
	m.recomputeSlots(shift)
	return nil
}

func (m *mockStore) DecrementJoined(ctx context.Context, shiftID uuid.UUID) error {
	shift, ok := m.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrNotFound)
	}
	if shift.JoinedParticipants > 0 {
		shift.JoinedParticipants--
	}
	m.recomputeSlots(shift)
	return nil
}

func (m *mockStore) RecomputeShiftRating(ctx context.Context, shiftID uuid.UUID) error {
	shift, ok := m.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift %s: %w", shiftID, model.ErrNotFound)
	}
	var sum float64
	var count int
	for _, reg := range m.regs {
		if reg.ShiftID == shiftID && reg.ShiftRating != nil {
			sum += *reg.ShiftRating
			count++
		}
	}
	if count > 0 {
		shift.Rating = sum / float64(count)
	}
	return nil
}

func (m *mockStore) GetRegistration(ctx context.Context, id uuid.UUID) (*db.Registration, error) {
	reg, ok := m.regs[id]
	if !ok {
		return nil, fmt.Errorf("registration %s: %w", id, model.ErrNotFound)
	}
	cp := *reg
	return &cp, nil
}

func (m *mockStore) GetActiveLiveRegistration(ctx context.Context, accountID, shiftID uuid.UUID) (*db.Registration, error) {
	for _, reg := range m.regs {
		if reg.AccountID == accountID && reg.ShiftID == shiftID && reg.Active && reg.Status.IsLive() {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListAccountRegistrations(ctx context.Context, accountID uuid.UUID, statuses ...lifecycle.Status) ([]db.RegistrationWithShift, error) {
	var out []db.RegistrationWithShift
	for _, reg := range m.regs {
		if reg.AccountID != accountID || !reg.Active {
			continue
		}
		matched := false
		for _, status := range statuses {
			if reg.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		shift, ok := m.shifts[reg.ShiftID]
		if !ok {
			continue
		}
		out = append(out, db.RegistrationWithShift{
			Registration: *reg,
			ShiftStart:   shift.StartTime,
			ShiftEnd:     shift.EndTime,
			ShiftStatus:  shift.Status,
			ShiftLat:     shift.Lat,
			ShiftLng:     shift.Lng,
		})
	}
	return out, nil
}

func (m *mockStore) DeactivateRegistrations(ctx context.Context, accountID, shiftID uuid.UUID) error {
	for _, reg := range m.regs {
		if reg.AccountID == accountID && reg.ShiftID == shiftID {
			reg.Active = false
		}
	}
	return nil
}

func (m *mockStore) InsertRegistration(ctx context.Context, reg *db.Registration) error {
	cp := *reg
	m.regs[reg.ID] = &cp
	return nil
}

func (m *mockStore) UpdateRegistration(ctx context.Context, reg *db.Registration) error {
	if _, ok := m.regs[reg.ID]; !ok {
		return fmt.Errorf("registration %s: %w", reg.ID, model.ErrNotFound)
	}
	cp := *reg
	m.regs[reg.ID] = &cp
	return nil
}

func (m *mockStore) SetMeetSkillRequirements(ctx context.Context, registrationID uuid.UUID, meets bool) error {
	reg, ok := m.regs[registrationID]
	if !ok {
		return fmt.Errorf("registration %s: %w", registrationID, model.ErrNotFound)
	}
	reg.MeetSkillRequirements = meets
	return nil
}

func (m *mockStore) GetByShiftID(ctx context.Context, shiftID uuid.UUID) ([]db.Registration, error) {
	var out []db.Registration
	for _, reg := range m.regs {
		if reg.ShiftID == shiftID && reg.Active {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m *mockStore) GetApprovedByActivityID(ctx context.Context, activityID uuid.UUID) ([]db.RegistrationWithShift, error) {
	var out []db.RegistrationWithShift
	for _, reg := range m.regs {
		shift, ok := m.shifts[reg.ShiftID]
		if !ok || shift.ActivityID != activityID {
			continue
		}
		if !reg.Active || reg.Status != lifecycle.StatusApproved {
			continue
		}
		out = append(out, db.RegistrationWithShift{
			Registration: *reg,
			ShiftStart:   shift.StartTime,
			ShiftEnd:     shift.EndTime,
			ShiftStatus:  shift.Status,
			ShiftLat:     shift.Lat,
			ShiftLng:     shift.Lng,
		})
	}
	return out, nil
}

func (m *mockStore) GetShiftSkills(ctx context.Context, shiftID uuid.UUID) ([]db.ShiftSkill, error) {
	return m.skills[shiftID], nil
}

func (m *mockStore) GetAccountSkillHours(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]float64, error) {
	hours, ok := m.hours[accountID]
	if !ok {
		return map[uuid.UUID]float64{}, nil
	}
	return hours, nil
}

func (m *mockStore) ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Shift, error) {
	return nil, nil
}

func (m *mockStore) BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error) {
	return 0, nil
}

func (m *mockStore) ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Registration, error) {
	return nil, nil
}

func (m *mockStore) BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error) {
	return 0, nil
}

var _ db.Store = (*mockStore)(nil)

package sweeper

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

var sweepNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// sweepMock is an in-memory Store tracking how many list and bulk calls the
// sweeps issue.
type sweepMock struct {
	shifts map[uuid.UUID]*db.Shift
	regs   map[uuid.UUID]*db.Registration

	listShiftCalls int
	bulkWrites     int
}

func newSweepMock() *sweepMock {
	return &sweepMock{
		shifts: make(map[uuid.UUID]*db.Shift),
		regs:   make(map[uuid.UUID]*db.Registration),
	}
}

func (m *sweepMock) addShift(start, end time.Time, status lifecycle.ShiftStatus, auto bool) uuid.UUID {
	id := uuid.New()
	m.shifts[id] = &db.Shift{
		ID:                    id,
		StartTime:             start,
		EndTime:               end,
		Status:                status,
		AutomaticStatusUpdate: auto,
	}
	return id
}

func (m *sweepMock) addPendingReg(shiftID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.regs[id] = &db.Registration{
		ID:      id,
		ShiftID: shiftID,
		Status:  lifecycle.StatusPending,
		Active:  true,
	}
	return id
}

func idLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func (m *sweepMock) ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Shift, error) {
	m.listShiftCalls++
	var out []db.Shift
	for _, shift := range m.shifts {
		if !shift.AutomaticStatusUpdate {
			continue
		}
		if lifecycle.DeriveShiftStatus(now, shift.StartTime, shift.EndTime) == shift.Status {
			continue
		}
		if !idLess(afterID, shift.ID) {
			continue
		}
		out = append(out, *shift)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *sweepMock) BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error) {
	m.bulkWrites++
	var updated int64
	for _, id := range ids {
		shift, ok := m.shifts[id]
		if !ok || shift.Status == status {
			continue
		}
		shift.Status = status
		updated++
	}
	return updated, nil
}

func (m *sweepMock) ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Registration, error) {
	var out []db.Registration
	for _, reg := range m.regs {
		if !reg.Active || reg.Status != lifecycle.StatusPending {
			continue
		}
		shift, ok := m.shifts[reg.ShiftID]
		if !ok || shift.StartTime.After(now) {
			continue
		}
		if !idLess(afterID, reg.ID) {
			continue
		}
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *sweepMock) BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error) {
	m.bulkWrites++
	var rejected int64
	for _, id := range ids {
		reg, ok := m.regs[id]
		if !ok || !reg.Active || reg.Status != lifecycle.StatusPending {
			continue
		}
		reg.Status = lifecycle.StatusRejected
		reg.RejectionReason = &reason
		rejected++
	}
	return rejected, nil
}

var _ Store = (*sweepMock)(nil)

func TestSweepShiftStatuses_PromotesByWindow(t *testing.T) {
	store := newSweepMock()
	startedID := store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftPending, true)
	endedID := store.addShift(sweepNow.Add(-3*time.Hour), sweepNow.Add(-time.Hour), lifecycle.ShiftOngoing, true)
	futureID := store.addShift(sweepNow.Add(time.Hour), sweepNow.Add(2*time.Hour), lifecycle.ShiftPending, true)

	s := New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0)
	stats, err := s.SweepShiftStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.BecameOngoing)
	assert.Equal(t, int64(1), stats.BecameCompleted)
	assert.Equal(t, int64(0), stats.BecamePending)

	assert.Equal(t, lifecycle.ShiftOngoing, store.shifts[startedID].Status)
	assert.Equal(t, lifecycle.ShiftCompleted, store.shifts[endedID].Status)
	assert.Equal(t, lifecycle.ShiftPending, store.shifts[futureID].Status)
}

func TestSweepShiftStatuses_SkipsManualShifts(t *testing.T) {
	store := newSweepMock()
	manualID := store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftPending, false)

	s := New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0)
	stats, err := s.SweepShiftStatuses(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Total())
	assert.Equal(t, lifecycle.ShiftPending, store.shifts[manualID].Status)
}

func TestSweepShiftStatuses_Idempotent(t *testing.T) {
	store := newSweepMock()
	for i := 0; i < 5; i++ {
		store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftPending, true)
	}

	s := New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0)

	stats, err := s.SweepShiftStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total())

	writesAfterFirst := store.bulkWrites
	stats, err = s.SweepShiftStatuses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total())
	assert.Equal(t, writesAfterFirst, store.bulkWrites)
}

func TestSweepShiftStatuses_Paginates(t *testing.T) {
	store := newSweepMock()
	for i := 0; i < 5; i++ {
		store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftPending, true)
	}

	s := New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 2)
	stats, err := s.SweepShiftStatuses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.BecameOngoing)
	// 5 rows at page size 2: pages of 2, 2, 1.
	assert.Equal(t, 3, store.listShiftCalls)
}

func TestSweepStalePending_RejectsStartedShiftRegistrations(t *testing.T) {
	store := newSweepMock()
	startedShift := store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftOngoing, true)
	futureShift := store.addShift(sweepNow.Add(time.Hour), sweepNow.Add(2*time.Hour), lifecycle.ShiftPending, true)

	staleID := store.addPendingReg(startedShift)
	freshID := store.addPendingReg(futureShift)

	s := New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0)
	rejected, err := s.SweepStalePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rejected)

	stale := store.regs[staleID]
	assert.Equal(t, lifecycle.StatusRejected, stale.Status)
	require.NotNil(t, stale.RejectionReason)
	assert.Equal(t, AutoRejectReason, *stale.RejectionReason)

	assert.Equal(t, lifecycle.StatusPending, store.regs[freshID].Status)

	// Re-running finds nothing left to reject.
	rejected, err = s.SweepStalePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rejected)
}

package sweeper

import (
	"context"
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

// blockingStore parks the first list call until released, so a test can hold
// a sweep in flight.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Shift, error) {
	b.entered <- struct{}{}
	<-b.release
	return nil, nil
}

func (b *blockingStore) BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error) {
	return 0, nil
}

func (b *blockingStore) ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Registration, error) {
	return nil, nil
}

func (b *blockingStore) BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error) {
	return 0, nil
}

func TestRunOnce_Executes(t *testing.T) {
	store := newSweepMock()
	store.addShift(sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour), lifecycle.ShiftPending, true)

	runner := NewRunner(New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0), time.Minute, zap.NewNop())
	assert.True(t, runner.RunOnce(context.Background()))
}

func TestRunOnce_SkipsWhileInFlight(t *testing.T) {
	store := &blockingStore{
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	runner := NewRunner(New(store, clock.Fixed{T: sweepNow}, zap.NewNop(), 0), time.Minute, zap.NewNop())

	done := make(chan bool)
	go func() {
		done <- runner.RunOnce(context.Background())
	}()

	// Wait until the first run is inside the sweep, then try a second run.
	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached the store")
	}

	assert.False(t, runner.RunOnce(context.Background()))

	close(store.release)
	select {
	case executed := <-done:
		assert.True(t, executed)
	case <-time.After(5 * time.Second):
		t.Fatal("first run never finished")
	}

	// With the first run finished the guard is clear again.
	require.True(t, runner.RunOnce(context.Background()))
}

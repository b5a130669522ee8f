package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
)

func TestRemoveVolunteer_RestoresSlot(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	store.addShift(shift)
	censorID := uuid.New()
	accountID := uuid.New()

	reg, err := JoinShift(context.Background(), store, testClock(), zap.NewNop(), accountID, shift.ID)
	require.NoError(t, err)
	require.NoError(t, ApproveRegistration(context.Background(), store, testClock(), zap.NewNop(), censorID, reg.ID))

	stored, err := store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.JoinedParticipants)

	err = RemoveVolunteer(context.Background(), store, testClock(), zap.NewNop(), censorID, reg.ID, "Repeated no-shows")
	require.NoError(t, err)

	stored, err = store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.JoinedParticipants)
	assert.Equal(t, 2, *stored.AvailableSlots)

	removed, err := store.GetRegistration(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusRemoved, removed.Status)
	require.NotNil(t, removed.RejectionReason)
	assert.Equal(t, "Repeated no-shows", *removed.RejectionReason)
	assert.Zero(t, removed.Completion)
}

func TestRemoveVolunteer_PendingRegistration(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	store.addShift(shift)
	regID := addPendingRegistration(store, uuid.New(), shift.ID)

	err := RemoveVolunteer(context.Background(), store, testClock(), zap.NewNop(), uuid.New(), regID, "reason")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestRemoveVolunteer_CompletedShift(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	shift.StartTime = testNow.Add(-3 * time.Hour)
	shift.EndTime = testNow.Add(-time.Hour)
	shift.JoinedParticipants = 1
	store.addShift(shift)
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, uuid.New(), lifecycle.StatusApproved))

	err := RemoveVolunteer(context.Background(), store, testClock(), zap.NewNop(), uuid.New(), regID, "reason")
	assert.ErrorIs(t, err, model.ErrTemporalConflict)
}

func TestLeaveShift_RestoresSlot(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	store.addShift(shift)
	accountID := uuid.New()

	reg, err := JoinShift(context.Background(), store, testClock(), zap.NewNop(), accountID, shift.ID)
	require.NoError(t, err)
	require.NoError(t, ApproveRegistration(context.Background(), store, testClock(), zap.NewNop(), uuid.New(), reg.ID))

	err = LeaveShift(context.Background(), store, testClock(), zap.NewNop(), accountID, reg.ID)
	require.NoError(t, err)

	left, err := store.GetRegistration(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusLeft, left.Status)

	stored, err := store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.JoinedParticipants)
}

func TestLeaveShift_AfterStart(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	shift.StartTime = testNow.Add(-30 * time.Minute)
	shift.JoinedParticipants = 1
	store.addShift(shift)
	accountID := uuid.New()
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, accountID, lifecycle.StatusApproved))

	err := LeaveShift(context.Background(), store, testClock(), zap.NewNop(), accountID, regID)
	assert.ErrorIs(t, err, model.ErrTemporalConflict)
}

func TestLeaveShift_NotOwner(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(2)
	shift.JoinedParticipants = 1
	store.addShift(shift)
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, uuid.New(), lifecycle.StatusApproved))

	err := LeaveShift(context.Background(), store, testClock(), zap.NewNop(), uuid.New(), regID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

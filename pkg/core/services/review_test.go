package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/core/model"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
	"github.com/hackneyvolunteers/shifthub/pkg/events"
)

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, subject string, event any) error {
	if p.err != nil {
		return p.err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

// completedShift returns a shift that ended an hour ago.
func completedShift() db.Shift {
	return db.Shift{
		ID:                    uuid.New(),
		ActivityID:            uuid.New(),
		Name:                  "Night shelter",
		StartTime:             testNow.Add(-4 * time.Hour),
		EndTime:               testNow.Add(-time.Hour),
		Status:                lifecycle.ShiftCompleted,
		AutomaticStatusUpdate: true,
	}
}

func TestReviewShift_RecordsRatingAndPublishes(t *testing.T) {
	store := newMockStore()
	shift := completedShift()
	store.addShift(shift)
	accountID := uuid.New()
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, accountID, lifecycle.StatusApproved))

	pub := &capturingPublisher{}
	err := ReviewShift(context.Background(), store, testClock(), zap.NewNop(), pub, accountID, regID, 4.5, "Great team")
	require.NoError(t, err)

	reg, err := store.GetRegistration(context.Background(), regID)
	require.NoError(t, err)
	require.NotNil(t, reg.ShiftRating)
	assert.Equal(t, 4.5, *reg.ShiftRating)
	require.NotNil(t, reg.ShiftRatingComment)
	assert.Equal(t, "Great team", *reg.ShiftRatingComment)

	stored, err := store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, stored.Rating)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, events.SubjectShiftVolunteerReviewed, pub.subjects[0])

	var evt events.ShiftVolunteerReviewedEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &evt))
	assert.Equal(t, accountID, evt.AccountID)
	assert.Equal(t, shift.ID, evt.ShiftID)
	assert.Equal(t, 4.5, evt.Rating)
}

func TestReviewShift_AveragesAcrossReviews(t *testing.T) {
	store := newMockStore()
	shift := completedShift()
	store.addShift(shift)

	firstAccount := uuid.New()
	firstID := uuid.New()
	store.addRegistration(regWithStatus(firstID, shift.ID, firstAccount, lifecycle.StatusApproved))

	secondAccount := uuid.New()
	secondID := uuid.New()
	store.addRegistration(regWithStatus(secondID, shift.ID, secondAccount, lifecycle.StatusApproved))

	pub := &capturingPublisher{}
	require.NoError(t, ReviewShift(context.Background(), store, testClock(), zap.NewNop(), pub, firstAccount, firstID, 5, ""))
	require.NoError(t, ReviewShift(context.Background(), store, testClock(), zap.NewNop(), pub, secondAccount, secondID, 3, ""))

	stored, err := store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, stored.Rating, 1e-9)
}

func TestReviewShift_ShiftNotCompleted(t *testing.T) {
	store := newMockStore()
	shift := pendingShift(3)
	store.addShift(shift)
	accountID := uuid.New()
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, accountID, lifecycle.StatusApproved))

	err := ReviewShift(context.Background(), store, testClock(), zap.NewNop(), &capturingPublisher{}, accountID, regID, 4, "")
	assert.ErrorIs(t, err, model.ErrTemporalConflict)
}

func TestReviewShift_RatingOutOfRange(t *testing.T) {
	store := newMockStore()
	err := ReviewShift(context.Background(), store, testClock(), zap.NewNop(), &capturingPublisher{}, uuid.New(), uuid.New(), 5.5, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	err = ReviewShift(context.Background(), store, testClock(), zap.NewNop(), &capturingPublisher{}, uuid.New(), uuid.New(), -1, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestReviewShift_PublishFailureDoesNotFailReview(t *testing.T) {
	store := newMockStore()
	shift := completedShift()
	store.addShift(shift)
	accountID := uuid.New()
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, accountID, lifecycle.StatusApproved))

	pub := &capturingPublisher{err: errors.New("broker unavailable")}
	err := ReviewShift(context.Background(), store, testClock(), zap.NewNop(), pub, accountID, regID, 4, "")
	require.NoError(t, err)

	// The review itself is committed regardless of the publish failure.
	reg, err := store.GetRegistration(context.Background(), regID)
	require.NoError(t, err)
	require.NotNil(t, reg.ShiftRating)
}

func TestReviewShift_NotOwnRegistration(t *testing.T) {
	store := newMockStore()
	shift := completedShift()
	store.addShift(shift)
	regID := uuid.New()
	store.addRegistration(regWithStatus(regID, shift.ID, uuid.New(), lifecycle.StatusApproved))

	err := ReviewShift(context.Background(), store, testClock(), zap.NewNop(), &capturingPublisher{}, uuid.New(), regID, 4, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to removed", StatusPending, StatusRemoved, true},
		{"pending to left", StatusPending, StatusLeft, true},
		{"approved to removed", StatusApproved, StatusRemoved, true},
		{"approved to left", StatusApproved, StatusLeft, true},
		{"rejected re-approval", StatusRejected, StatusApproved, true},
		{"removed re-approval", StatusRemoved, StatusApproved, true},
		{"approved to approved", StatusApproved, StatusApproved, false},
		{"approved to rejected", StatusApproved, StatusRejected, false},
		{"approved to cancelled", StatusApproved, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
		{"left is terminal", StatusLeft, StatusApproved, false},
		{"rejected to pending", StatusRejected, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("WAITLISTED")
	assert.Error(t, err)
}

func TestRequiresRejectionReason(t *testing.T) {
	assert.True(t, StatusRejected.RequiresRejectionReason())
	assert.True(t, StatusRemoved.RequiresRejectionReason())
	assert.False(t, StatusPending.RequiresRejectionReason())
	assert.False(t, StatusApproved.RequiresRejectionReason())
	assert.False(t, StatusCancelled.RequiresRejectionReason())
	assert.False(t, StatusLeft.RequiresRejectionReason())
}

func TestDeriveShiftStatus(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, ShiftPending, DeriveShiftStatus(start.Add(-time.Hour), start, end))
	assert.Equal(t, ShiftOngoing, DeriveShiftStatus(start, start, end))
	assert.Equal(t, ShiftOngoing, DeriveShiftStatus(end.Add(-time.Minute), start, end))
	assert.Equal(t, ShiftCompleted, DeriveShiftStatus(end, start, end))
	assert.Equal(t, ShiftCompleted, DeriveShiftStatus(end.Add(time.Hour), start, end))
}

package coaching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/coaching"
	derrors "convoy/pkg/domain-errors"
)

var transitionNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func pendingWeeks(n int) []coaching.CheckIn {
	out := make([]coaching.CheckIn, 0, n)
	for week := 1; week <= n; week++ {
		out = append(out, coaching.CheckIn{Week: week, Status: coaching.CheckInPending})
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestApplyTransition_PendingToMissedToComplete(t *testing.T) {
	checkIns := pendingWeeks(2)

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInMissed, nil, "mgr-1", transitionNow)
	require.NoError(t, err)

	later := transitionNow.Add(24 * time.Hour)
	final, err := coaching.ApplyTransition(after, 1, coaching.CheckInComplete, nil, "mgr-1", later)
	require.NoError(t, err)

	c := final[0]
	assert.Equal(t, coaching.CheckInComplete, c.Status)
	require.NotNil(t, c.CompletedDate)
	assert.Equal(t, later, *c.CompletedDate)

	require.Len(t, c.Audit, 2)
	assert.Equal(t, "status", c.Audit[0].Field)
	assert.Equal(t, "pending", c.Audit[0].From)
	assert.Equal(t, "missed", c.Audit[0].To)
	assert.Equal(t, "status", c.Audit[1].Field)
	assert.Equal(t, "missed", c.Audit[1].From)
	assert.Equal(t, "complete", c.Audit[1].To)

	assert.Equal(t, coaching.CheckInPending, final[1].Status, "other weeks untouched")
}

func TestApplyTransition_CompleteToMissedRejected(t *testing.T) {
	checkIns := []coaching.CheckIn{{Week: 1, Status: coaching.CheckInComplete}}

	_, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInMissed, nil, "mgr-1", transitionNow)
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
	assert.Contains(t, err.Error(), "complete")
	assert.Contains(t, err.Error(), "missed")

	assert.Equal(t, coaching.CheckInComplete, checkIns[0].Status, "rejected calls never mutate state")
	assert.Empty(t, checkIns[0].Audit)
}

func TestApplyTransition_NeverMutatesInput(t *testing.T) {
	checkIns := pendingWeeks(1)

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInInProgress, strPtr("kickoff done"), "mgr-1", transitionNow)
	require.NoError(t, err)

	assert.Equal(t, coaching.CheckInPending, checkIns[0].Status)
	assert.Empty(t, checkIns[0].Notes)
	assert.Empty(t, checkIns[0].Audit)

	assert.Equal(t, coaching.CheckInInProgress, after[0].Status)
	assert.Equal(t, "kickoff done", after[0].Notes)
}

func TestApplyTransition_AtMostTwoAuditEntries(t *testing.T) {
	checkIns := pendingWeeks(1)

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInComplete, strPtr("wrapped up"), "mgr-1", transitionNow)
	require.NoError(t, err)

	require.Len(t, after[0].Audit, 2)
	assert.Equal(t, "status", after[0].Audit[0].Field)
	assert.Equal(t, "notes", after[0].Audit[1].Field)
	assert.Equal(t, "", after[0].Audit[1].From)
	assert.Equal(t, "wrapped up", after[0].Audit[1].To)
}

func TestApplyTransition_NotesOnlyViaSelfLoop(t *testing.T) {
	checkIns := []coaching.CheckIn{{Week: 1, Status: coaching.CheckInInProgress, Notes: "old"}}

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInInProgress, strPtr("new"), "mgr-1", transitionNow)
	require.NoError(t, err)

	require.Len(t, after[0].Audit, 1, "self-loop with a notes change records only the notes entry")
	assert.Equal(t, "notes", after[0].Audit[0].Field)
	assert.Equal(t, "old", after[0].Audit[0].From)
	assert.Equal(t, "new", after[0].Audit[0].To)
}

func TestApplyTransition_UnchangedNotesNotAudited(t *testing.T) {
	checkIns := []coaching.CheckIn{{Week: 1, Status: coaching.CheckInPending, Notes: "same"}}

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInInProgress, strPtr("same"), "mgr-1", transitionNow)
	require.NoError(t, err)
	require.Len(t, after[0].Audit, 1)
	assert.Equal(t, "status", after[0].Audit[0].Field)
}

func TestApplyTransition_CompletedDateClearedOnReopen(t *testing.T) {
	done := transitionNow
	checkIns := []coaching.CheckIn{{Week: 1, Status: coaching.CheckInComplete, CompletedDate: &done}}

	after, err := coaching.ApplyTransition(checkIns, 1, coaching.CheckInInProgress, nil, "mgr-1", transitionNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, after[0].CompletedDate)
}

func TestApplyTransition_UnknownWeek(t *testing.T) {
	_, err := coaching.ApplyTransition(pendingWeeks(2), 9, coaching.CheckInComplete, nil, "mgr-1", transitionNow)
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeNotFound))
}

func TestCanTransition_Table(t *testing.T) {
	cases := []struct {
		from, to coaching.CheckInStatus
		allowed  bool
	}{
		{coaching.CheckInPending, coaching.CheckInInProgress, true},
		{coaching.CheckInPending, coaching.CheckInComplete, true},
		{coaching.CheckInPending, coaching.CheckInMissed, true},
		{coaching.CheckInInProgress, coaching.CheckInPending, false},
		{coaching.CheckInInProgress, coaching.CheckInComplete, true},
		{coaching.CheckInComplete, coaching.CheckInMissed, false},
		{coaching.CheckInComplete, coaching.CheckInInProgress, true},
		{coaching.CheckInMissed, coaching.CheckInComplete, true},
		{coaching.CheckInMissed, coaching.CheckInPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, coaching.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

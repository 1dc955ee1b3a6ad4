package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func statusSail(planned string) *Sail {
	return &Sail{
		Date:             "2026-08-30",
		PlannedStartTime: MustClock(planned),
		Status:           StatusPending,
	}
}

func at(hhmm string) time.Time {
	c := MustClock(hhmm)
	return time.Date(2026, 8, 30, int(c)/60, int(c)%60, 0, 0, time.UTC)
}

func TestDeriveStatusPrecedence(t *testing.T) {
	started := MustClock("14:05")
	ended := MustClock("15:30")

	cases := []struct {
		name  string
		sail  *Sail
		phone bool
		now   time.Time
		want  SailStatus
	}{
		{"before planned start", statusSail("14:00"), false, at("13:00"), StatusPending},
		{"past start, walk-in only", statusSail("14:00"), false, at("14:20"), StatusDelayed},
		{"past start, phone, inside threshold", statusSail("14:00"), true, at("14:10"), StatusDelayed},
		{"past start, phone, at threshold", statusSail("14:00"), true, at("14:15"), StatusLate},
		{"past start, phone, beyond threshold", statusSail("14:00"), true, at("14:40"), StatusLate},
		{
			"departed",
			func() *Sail { s := statusSail("14:00"); s.ActualStartTime = &started; return s }(),
			true, at("14:40"), StatusInProgress,
		},
		{
			"returned",
			func() *Sail {
				s := statusSail("14:00")
				s.ActualStartTime = &started
				s.EndTime = &ended
				return s
			}(),
			true, at("16:00"), StatusCompleted,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(tc.sail, tc.phone, tc.now, DefaultLateThreshold, time.UTC)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStoredStatusesStick(t *testing.T) {
	for _, stored := range []SailStatus{StatusCancelled, StatusTransferredLate} {
		s := statusSail("14:00")
		s.Status = stored
		// Even a departed timestamp does not override a sticky
		// stored status.
		started := MustClock("14:05")
		s.ActualStartTime = &started
		got := DeriveStatus(s, true, at("14:40"), DefaultLateThreshold, time.UTC)
		assert.Equal(t, stored, got, "stored %s must stick", stored)
	}
}

func TestStoredDelayedYieldsToTimestamps(t *testing.T) {
	started := MustClock("14:25")
	ended := MustClock("15:40")

	s := statusSail("14:00")
	s.Status = StatusDelayed
	assert.Equal(t, StatusDelayed,
		DeriveStatus(s, true, at("14:40"), DefaultLateThreshold, time.UTC))

	// Once the boat departs the delay mark no longer applies.
	s.ActualStartTime = &started
	assert.Equal(t, StatusInProgress,
		DeriveStatus(s, true, at("14:40"), DefaultLateThreshold, time.UTC))

	s.EndTime = &ended
	assert.Equal(t, StatusCompleted,
		DeriveStatus(s, true, at("16:00"), DefaultLateThreshold, time.UTC))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusTransferredLate.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusDelayed.Terminal())
	assert.False(t, StatusLate.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestDeriveBoatStatus(t *testing.T) {
	assert.Equal(t, BoatIdle, DeriveBoatStatus(nil))
	assert.Equal(t, BoatReady, DeriveBoatStatus([]SailStatus{StatusPending, StatusCompleted}))
	assert.Equal(t, BoatDelayed, DeriveBoatStatus([]SailStatus{StatusPending, StatusLate}))
	assert.Equal(t, BoatDelayed, DeriveBoatStatus([]SailStatus{StatusDelayed}))
	// In progress wins over delayed.
	assert.Equal(t, BoatActive, DeriveBoatStatus([]SailStatus{StatusDelayed, StatusInProgress}))
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	ct, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(14*60+30), ct)

	// Seconds from TIME columns are accepted and ignored.
	ct, err = ParseClock("09:05:59")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(9*60+5), ct)

	for _, bad := range []string{"", "25:00", "12:60", "noon", "-1:30"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestClockRendering(t *testing.T) {
	c := MustClock("09:05")
	assert.Equal(t, "09:05", c.String())
	assert.Equal(t, "09:05:00", c.SQL())
}

func TestClockAddClampsToDay(t *testing.T) {
	assert.Equal(t, MustClock("14:30"), MustClock("14:00").Add(30*time.Minute))
	assert.Equal(t, MustClock("13:30"), MustClock("14:00").Add(-30*time.Minute))
	assert.Equal(t, ClockTime(0), MustClock("00:10").Add(-30*time.Minute))
	assert.Equal(t, MustClock("23:59"), MustClock("23:50").Add(30*time.Minute))
}

func TestClockAt(t *testing.T) {
	got, err := MustClock("14:30").At("2026-08-30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC), got)

	_, err = MustClock("14:30").At("30/08/2026", time.UTC)
	assert.Error(t, err)
}

func TestClockOf(t *testing.T) {
	assert.Equal(t, MustClock("14:30"), ClockOf(time.Date(2026, 8, 30, 14, 30, 45, 0, time.UTC)))
}

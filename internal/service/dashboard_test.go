package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcabay/sail-reservation/internal/model"
)

func newTestDashboard(fs *fakeStore) *Dashboard {
	return NewDashboard(fs, time.UTC, model.DefaultLateThreshold, fixedNow)
}

func TestCurrentSailsPrefersInProgress(t *testing.T) {
	fs := newSweepStore()
	started := addSweepSail(fs, 1, "13:00")
	at := model.MustClock("13:02")
	started.ActualStartTime = &at
	addSweepSail(fs, 2, "15:00")

	items, err := newTestDashboard(fs).CurrentSails(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Sail)
	assert.Equal(t, uint64(1), items[0].Sail.SailID)
	assert.Equal(t, model.StatusInProgress, items[0].Sail.Status)
}

func TestCurrentSailsFallsBackToFirstLiveSail(t *testing.T) {
	fs := newSweepStore()
	done := addSweepSail(fs, 1, "10:00")
	sAt, eAt := model.MustClock("10:01"), model.MustClock("11:30")
	done.ActualStartTime = &sAt
	done.EndTime = &eAt
	addSweepSail(fs, 2, "15:00")

	items, err := newTestDashboard(fs).CurrentSails(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Sail)
	assert.Equal(t, uint64(2), items[0].Sail.SailID)
}

func TestNextSailsFlagsEarliestPending(t *testing.T) {
	fs := newSweepStore()
	addSweepSail(fs, 1, "15:00")
	addSweepSail(fs, 2, "16:00")

	items, err := newTestDashboard(fs).NextSails(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Sails, 2)
	assert.True(t, items[0].Sails[0].Next)
	assert.False(t, items[0].Sails[1].Next)
	assert.Equal(t, model.BoatReady, items[0].Status)
}

func TestNextSailsBoatStatusActive(t *testing.T) {
	fs := newSweepStore()
	started := addSweepSail(fs, 1, "14:00")
	at := model.MustClock("14:05")
	started.ActualStartTime = &at
	addSweepSail(fs, 2, "16:00")

	items, err := newTestDashboard(fs).NextSails(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.BoatActive, items[0].Status)
}

func TestUpcomingForBoatSkipsFinishedSails(t *testing.T) {
	fs := newSweepStore()
	done := addSweepSail(fs, 1, "10:00")
	sAt, eAt := model.MustClock("10:00"), model.MustClock("11:00")
	done.ActualStartTime = &sAt
	done.EndTime = &eAt
	addSweepSail(fs, 2, "15:00")
	cancelled := addSweepSail(fs, 3, "16:00")
	cancelled.Status = model.StatusCancelled

	items, err := newTestDashboard(fs).UpcomingForBoat(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(2), items[0].SailID)
}

func TestSailDetailsCarriesBookingsAndCapacity(t *testing.T) {
	fs := newSweepStore()
	s := addSweepSail(fs, 1, "15:00")
	s.ActivityCapacity = intp(6)
	fs.addBooking(model.BookingDetail{
		Booking:       model.Booking{ID: 900, SailID: 1, NumPeopleSail: 2, NumPeopleActivity: 1, UpTo16Year: true},
		CustomerName:  "Jamie Doe",
		CustomerPhone: "+31600000001",
	})

	v, err := newTestDashboard(fs).SailDetails(context.Background(), 1)
	require.NoError(t, err)

	// A minor on board forces the escort seat into the derived view.
	assert.True(t, v.RequiresOrcaEscort)
	assert.Equal(t, 6, v.SailSeatsLeft) // 10 - escort - 3 on board
	require.NotNil(t, v.ActivitySeatsLeft)
	assert.Equal(t, 5, *v.ActivitySeatsLeft)
	require.Len(t, v.Bookings, 1)
	assert.Equal(t, "Jamie Doe", v.Bookings[0].CustomerName)
	assert.True(t, v.Bookings[0].UpTo16Year)
}

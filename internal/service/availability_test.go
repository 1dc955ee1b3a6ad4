package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcabay/sail-reservation/internal/model"
)

func addAvailSail(fs *fakeStore, id uint64, at string, boatCap int, activityCap *int) *model.SailOccupancy {
	s := &model.SailOccupancy{}
	s.ID = id
	s.Date = "2026-08-30"
	s.PlannedStartTime = model.MustClock(at)
	s.BoatActivityID = 10
	s.PopulationTypeID = 3
	s.Status = model.StatusPending
	s.BoatID = 1
	s.BoatName = "Orca One"
	s.BoatCapacity = boatCap
	s.ActivityID = 5
	s.ActivityName = "Snorkeling"
	s.ActivityCapacity = activityCap
	s.PopulationTypeName = "Adults"
	fs.addSail(s)
	return s
}

func searchQuery(at string, people int) SearchQuery {
	return SearchQuery{
		Date:             "2026-08-30",
		Time:             model.MustClock(at),
		ActivityID:       5,
		PopulationTypeID: 3,
		NumPeopleSail:    people,
	}
}

func TestSearchExactMatchSuppressesNeighbours(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 10)
	addAvailSail(fs, 1, "13:30", 10, nil)
	addAvailSail(fs, 2, "14:00", 10, nil)
	addAvailSail(fs, 3, "14:30", 10, nil)

	res, err := NewAvailability(fs).Search(context.Background(), searchQuery("14:00", 2))
	require.NoError(t, err)
	require.Len(t, res.ExactMatch, 1)
	assert.Equal(t, uint64(2), res.ExactMatch[0].SailID)
	assert.Empty(t, res.HalfHourBefore)
	assert.Empty(t, res.HalfHourAfter)
}

func TestSearchNeighboursWhenNoExactMatch(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 10)
	addAvailSail(fs, 1, "13:45", 10, nil)
	addAvailSail(fs, 2, "14:15", 10, nil)
	addAvailSail(fs, 3, "15:00", 10, nil) // outside the window

	res, err := NewAvailability(fs).Search(context.Background(), searchQuery("14:00", 2))
	require.NoError(t, err)
	assert.Empty(t, res.ExactMatch)
	require.Len(t, res.HalfHourBefore, 1)
	assert.Equal(t, uint64(1), res.HalfHourBefore[0].SailID)
	require.Len(t, res.HalfHourAfter, 1)
	assert.Equal(t, uint64(2), res.HalfHourAfter[0].SailID)
}

func TestSearchFiltersFullSails(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 4)
	addAvailSail(fs, 1, "14:00", 4, nil)
	fs.addBooking(model.BookingDetail{Booking: model.Booking{ID: 900, SailID: 1, NumPeopleSail: 3}})

	// Two seats requested, one left: the sail is dropped and the
	// empty result is a normal response.
	res, err := NewAvailability(fs).Search(context.Background(), searchQuery("14:00", 2))
	require.NoError(t, err)
	assert.Empty(t, res.ExactMatch)
	assert.Empty(t, res.HalfHourBefore)
	assert.Empty(t, res.HalfHourAfter)

	// One seat still fits.
	res, err = NewAvailability(fs).Search(context.Background(), searchQuery("14:00", 1))
	require.NoError(t, err)
	require.Len(t, res.ExactMatch, 1)
	assert.Equal(t, 1, res.ExactMatch[0].SailSeatsLeft)
}

func TestSearchSkipsPrivateAndDepartedSails(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 10)
	private := addAvailSail(fs, 1, "14:00", 10, nil)
	private.IsPrivateGroup = true
	departed := addAvailSail(fs, 2, "14:00", 10, nil)
	at := model.MustClock("14:01")
	departed.ActualStartTime = &at
	addAvailSail(fs, 3, "14:00", 10, nil)

	res, err := NewAvailability(fs).Search(context.Background(), searchQuery("14:00", 2))
	require.NoError(t, err)
	require.Len(t, res.ExactMatch, 1)
	assert.Equal(t, uint64(3), res.ExactMatch[0].SailID)
}

func TestSearchSeatsLeftAnnotation(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 10)
	addAvailSail(fs, 1, "14:00", 10, intp(6))
	fs.addBooking(model.BookingDetail{Booking: model.Booking{ID: 900, SailID: 1, NumPeopleSail: 2, NumPeopleActivity: 1}})

	q := searchQuery("14:00", 1)
	q.NumPeopleActivity = 1
	res, err := NewAvailability(fs).Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.ExactMatch, 1)

	slot := res.ExactMatch[0]
	assert.Equal(t, 7, slot.SailSeatsLeft) // 10 - (2+1) on board
	require.NotNil(t, slot.ActivitySeatsLeft)
	assert.Equal(t, 5, *slot.ActivitySeatsLeft) // 6 - 1 participant
}

func TestSearchUnboundedActivityHasNilSeatsLeft(t *testing.T) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", 10)
	addAvailSail(fs, 1, "14:00", 10, nil)

	q := searchQuery("14:00", 0)
	q.NumPeopleActivity = 4
	res, err := NewAvailability(fs).Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.ExactMatch, 1)
	assert.Nil(t, res.ExactMatch[0].ActivitySeatsLeft)
}

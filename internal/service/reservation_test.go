package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

func intp(v int) *int { return &v }

// seedSail registers one boat, one link and one bookable sail and
// returns the store and the sail id.
func seedSail(boatCap int, activityCap *int) (*fakeStore, uint64) {
	fs := newFakeStore()
	fs.addBoat(1, "Orca One", boatCap)
	fs.addLink(10, 1, 5)

	s := &model.SailOccupancy{}
	s.ID = 100
	s.Date = "2026-08-30"
	s.PlannedStartTime = model.MustClock("14:00")
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
	return fs, s.ID
}

func reserveInput(sailID uint64, people int) ReserveInput {
	return ReserveInput{
		SailID: sailID,
		Customer: model.CustomerInput{
			Name:        "Jamie Doe",
			PhoneNumber: "+31600000001",
		},
		PaymentTypeID:   1,
		FinalPriceCents: 2500,
		NumPeopleSail:   people,
	}
}

func TestReserveHappyPath(t *testing.T) {
	fs, sailID := seedSail(10, nil)
	svc := NewReservations(fs, nil)

	out, err := svc.Reserve(context.Background(), reserveInput(sailID, 3))
	require.NoError(t, err)
	assert.Equal(t, sailID, out.SailID)
	assert.False(t, out.SailCreated)
	assert.NotZero(t, out.BookingID)
	assert.NotZero(t, out.CustomerID)

	oc, err := fs.SailWithOccupancy(context.Background(), sailID)
	require.NoError(t, err)
	assert.Equal(t, 3, oc.Occupancy.Sail)
}

func TestReserveValidation(t *testing.T) {
	fs, sailID := seedSail(10, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ReserveInput)
	}{
		{"no people", func(in *ReserveInput) { in.NumPeopleSail = 0 }},
		{"negative people", func(in *ReserveInput) { in.NumPeopleSail = -1 }},
		{"missing name", func(in *ReserveInput) { in.Customer.Name = " " }},
		{"missing phone", func(in *ReserveInput) { in.Customer.PhoneNumber = "" }},
		{"missing payment", func(in *ReserveInput) { in.PaymentTypeID = 0 }},
		{"neither sail nor new sail", func(in *ReserveInput) { in.SailID = 0 }},
		{"both sail and new sail", func(in *ReserveInput) {
			in.NewSail = &NewSailSpec{Date: "2026-08-30", BoatID: 1, ActivityID: 5, PopulationTypeID: 3}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := reserveInput(sailID, 2)
			tc.mutate(&in)
			_, err := svc.Reserve(ctx, in)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	// Nothing committed by any rejected request.
	oc, err := fs.SailWithOccupancy(ctx, sailID)
	require.NoError(t, err)
	assert.Equal(t, 0, oc.Occupancy.OnBoard())
}

func TestReserveInsufficientSeats(t *testing.T) {
	fs, sailID := seedSail(4, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, reserveInput(sailID, 3))
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, reserveInput(sailID, 2))
	var ise *InsufficientSeatsError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 1, ise.SailAvailable)
	assert.Equal(t, 2, ise.SailRequested)

	// The failed attempt must not have upserted its customer.
	oc, err := fs.SailWithOccupancy(ctx, sailID)
	require.NoError(t, err)
	assert.Equal(t, 3, oc.Occupancy.OnBoard())
}

func TestReserveActivityCeiling(t *testing.T) {
	fs, sailID := seedSail(20, intp(2))
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	in := reserveInput(sailID, 0)
	in.NumPeopleActivity = 3
	_, err := svc.Reserve(ctx, in)
	var ise *InsufficientSeatsError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.ActivityAvailable)
	assert.Equal(t, 3, ise.ActivityRequested)
}

func TestReserveMinorForcesEscortSeat(t *testing.T) {
	fs, sailID := seedSail(4, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	// Four seats, but a booking with a minor holds one back for the
	// escort: a party of four with a minor does not fit.
	in := reserveInput(sailID, 4)
	in.UpTo16Year = true
	_, err := svc.Reserve(ctx, in)
	var ise *InsufficientSeatsError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 3, ise.SailAvailable)

	// Without the minor the same party fits.
	_, err = svc.Reserve(ctx, reserveInput(sailID, 4))
	assert.NoError(t, err)
}

func TestReserveCreatesSailOnTheFly(t *testing.T) {
	fs, _ := seedSail(10, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	in := reserveInput(0, 2)
	in.NewSail = &NewSailSpec{
		Date:             "2026-08-30",
		PlannedStartTime: model.MustClock("16:00"),
		BoatID:           1,
		ActivityID:       5,
		PopulationTypeID: 3,
	}
	out, err := svc.Reserve(ctx, in)
	require.NoError(t, err)
	assert.True(t, out.SailCreated)

	oc, err := fs.SailWithOccupancy(ctx, out.SailID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, oc.Status)
	assert.Equal(t, 2, oc.Occupancy.Sail)
}

func TestReserveInvalidBoatActivityRollsBack(t *testing.T) {
	fs, _ := seedSail(10, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	in := reserveInput(0, 2)
	in.NewSail = &NewSailSpec{
		Date:             "2026-08-30",
		PlannedStartTime: model.MustClock("16:00"),
		BoatID:           1,
		ActivityID:       99, // boat 1 cannot run this
		PopulationTypeID: 3,
	}
	_, err := svc.Reserve(ctx, in)
	assert.True(t, errors.Is(err, repository.ErrInvalidCombination))
	// No sail persisted from the rolled-back transaction.
	assert.Len(t, fs.sails, 1)
}

func TestReserveUpsertsCustomerByPhone(t *testing.T) {
	fs, sailID := seedSail(10, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	first, err := svc.Reserve(ctx, reserveInput(sailID, 1))
	require.NoError(t, err)

	in := reserveInput(sailID, 1)
	in.Customer.Name = "Jamie D. Doe" // same phone, updated name
	second, err := svc.Reserve(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Equal(t, "Jamie D. Doe", fs.customers["+31600000001"].Name)
}

// TestReserveConcurrentNeverOversells drives many concurrent one-seat
// reservations at a sail with few free seats and asserts exactly that
// many commits succeed, regardless of interleaving.
func TestReserveConcurrentNeverOversells(t *testing.T) {
	const free, attempts = 5, 40

	fs, sailID := seedSail(free, nil)
	svc := NewReservations(fs, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			in := reserveInput(sailID, 1)
			in.Customer.PhoneNumber = "+3160000" + string(rune('A'+n%26)) + string(rune('a'+n/26))
			_, err := svc.Reserve(ctx, in)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	committed, rejected := 0, 0
	for err := range results {
		if err == nil {
			committed++
			continue
		}
		var ise *InsufficientSeatsError
		require.ErrorAs(t, err, &ise)
		rejected++
	}
	assert.Equal(t, free, committed)
	assert.Equal(t, attempts-free, rejected)

	oc, err := fs.SailWithOccupancy(ctx, sailID)
	require.NoError(t, err)
	assert.Equal(t, free, oc.Occupancy.OnBoard())
}

package service

import (
	"context"
	"time"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// SearchWindow is how far around the requested time the availability
// search looks for neighbouring slots.
const SearchWindow = 30 * time.Minute

// SearchQuery is one availability request: a desired slot plus the
// party size per pool.
type SearchQuery struct {
	Date              string
	Time              model.ClockTime
	PopulationTypeID  uint64
	ActivityID        uint64
	NumPeopleActivity int
	NumPeopleSail     int
}

// Slot is one bookable sail offered to the caller, annotated with the
// seats still free.  ActivitySeatsLeft is nil when the activity has
// no ceiling of its own.
type Slot struct {
	SailID             uint64 `json:"sail_id"`
	Time               string `json:"time"`
	ActivityName       string `json:"activity_name"`
	PopulationTypeName string `json:"population_type"`
	SailSeatsLeft      int    `json:"sail_seats_left"`
	ActivitySeatsLeft  *int   `json:"activity_seats_left"`
}

// SearchResult partitions admissible sails around the requested time.
// More than one sail may legitimately share the exact slot.  When any
// exact match exists the neighbour lists are empty; otherwise the
// neighbours are returned in time order.  All three empty simply
// means nothing fits — not an error.
type SearchResult struct {
	ExactMatch     []Slot `json:"exactMatch"`
	HalfHourBefore []Slot `json:"halfHourBefore"`
	HalfHourAfter  []Slot `json:"halfHourAfter"`
}

// Availability answers "when can this party sail" over a window of
// nearby slots.  It is a pure read path: no locks are taken and the
// occupancy it sees is advisory — the reservation transaction
// re-checks under its own lock.
type Availability struct {
	store repository.Store
}

// NewAvailability returns an Availability over the given store.
func NewAvailability(store repository.Store) *Availability {
	return &Availability{store: store}
}

// Search fetches candidate sails in a ±30 minute window around the
// requested time, drops the ones the party does not fit on, and
// partitions the rest by comparing planned start to the requested
// time.  Comparisons are wall-clock HH:MM; seconds are ignored.
func (a *Availability) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	candidates, err := a.store.CandidateSails(ctx, repository.CandidateFilter{
		Date:             q.Date,
		ActivityID:       q.ActivityID,
		PopulationTypeID: q.PopulationTypeID,
		From:             q.Time.Add(-SearchWindow),
		To:               q.Time.Add(SearchWindow),
	})
	if err != nil {
		return nil, err
	}

	res := &SearchResult{
		ExactMatch:     []Slot{},
		HalfHourBefore: []Slot{},
		HalfHourAfter:  []Slot{},
	}
	for i := range candidates {
		sail := &candidates[i]
		left := model.RemainingCapacity(sail, false)
		if !left.Admits(q.NumPeopleActivity, q.NumPeopleSail) {
			continue
		}
		slot := makeSlot(sail, left)
		switch {
		case sail.PlannedStartTime == q.Time:
			res.ExactMatch = append(res.ExactMatch, slot)
		case sail.PlannedStartTime < q.Time:
			res.HalfHourBefore = append(res.HalfHourBefore, slot)
		default:
			res.HalfHourAfter = append(res.HalfHourAfter, slot)
		}
	}
	// Exact matches take priority: the neighbour lists are only
	// offered when nothing sits on the requested slot itself.
	if len(res.ExactMatch) > 0 {
		res.HalfHourBefore = []Slot{}
		res.HalfHourAfter = []Slot{}
	}
	return res, nil
}

func makeSlot(s *model.SailOccupancy, left model.Remaining) Slot {
	slot := Slot{
		SailID:             s.ID,
		Time:               s.PlannedStartTime.String(),
		ActivityName:       s.ActivityName,
		PopulationTypeName: s.PopulationTypeName,
		SailSeatsLeft:      left.SailSeats,
	}
	if left.ActivitySeats != model.Unbounded {
		v := left.ActivitySeats
		slot.ActivitySeatsLeft = &v
	}
	return slot
}

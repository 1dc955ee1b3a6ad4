package model

import "math"

// Unbounded marks an activity pool with no seat ceiling of its own.
const Unbounded = math.MaxInt

// Remaining is the free-seat answer for a sail, per pool.
// ActivitySeats is Unbounded when the activity imposes no ceiling;
// the boat-capacity check in SailSeats still applies to activity
// participants, since they occupy boat seats too.
type Remaining struct {
	ActivitySeats int
	SailSeats     int
}

// Admits reports whether a booking of the requested size fits.
func (r Remaining) Admits(activity, sail int) bool {
	return activity <= r.ActivitySeats && sail <= r.SailSeats
}

// EffectiveEscort reports whether a seat must be held back for an
// orca escort: either the sail mandates one, or an existing booking
// brought a minor on board.
func (s *SailOccupancy) EffectiveEscort() bool {
	return s.RequiresOrcaEscort || s.HasUnder16
}

// RemainingCapacity computes the free seats on a sail from its booked
// occupancy.  It is the single admissibility rule: the read-only
// availability search and the locked re-check inside the reservation
// transaction both call it, so "what looked available" and "what is
// enforced" cannot drift.
//
// extraEscort forces the escort deduction even when the sail does not
// carry one yet; the reservation path passes true when the incoming
// booking itself includes a minor.
func RemainingCapacity(s *SailOccupancy, extraEscort bool) Remaining {
	boatSeats := s.BoatCapacity
	if s.EffectiveEscort() || extraEscort {
		boatSeats--
	}
	activityLeft := Unbounded
	if s.ActivityCapacity != nil {
		activityLeft = *s.ActivityCapacity - s.Occupancy.Activity
	}
	return Remaining{
		ActivitySeats: activityLeft,
		SailSeats:     boatSeats - s.Occupancy.OnBoard(),
	}
}

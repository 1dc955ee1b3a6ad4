package model

import "time"

// DefaultLateThreshold is how far past its planned departure a sail
// with an unresolved phone booking may run before counting as late.
const DefaultLateThreshold = 15 * time.Minute

// DeriveStatus computes a sail's externally visible status from its
// stored fields, timestamps and booking metadata.  Every caller that
// needs a status goes through here; nothing recomputes the rules
// inline.
//
// Precedence:
//  1. stored transferred_late / cancelled stick;
//  2. end_time set          -> completed;
//  3. actual_start_time set -> in_progress;
//  4. stored delayed sticks while the sail has not departed;
//  5. phone-booked and past planned start by >= threshold -> late;
//  6. past planned start by any amount -> delayed;
//  7. otherwise pending.
//
// A sweep-delayed sail that eventually departs therefore reads
// in_progress and then completed like any other.
//
// The earliest pending sail per boat is additionally flagged "next"
// by the dashboard layer; that refinement is derived, never stored.
func DeriveStatus(s *Sail, hasPhoneBooking bool, now time.Time, threshold time.Duration, loc *time.Location) SailStatus {
	switch s.Status {
	case StatusTransferredLate, StatusCancelled:
		return s.Status
	}
	if s.EndTime != nil {
		return StatusCompleted
	}
	if s.ActualStartTime != nil {
		return StatusInProgress
	}
	if s.Status == StatusDelayed {
		return StatusDelayed
	}
	planned, err := s.PlannedStartTime.At(s.Date, loc)
	if err != nil {
		// Malformed stored date; treat as not yet due.
		return StatusPending
	}
	if hasPhoneBooking && !now.Before(planned.Add(threshold)) {
		return StatusLate
	}
	if now.After(planned) {
		return StatusDelayed
	}
	return StatusPending
}

// Status derives the status of an occupancy-annotated sail, using its
// own phone-booking count.
func (s *SailOccupancy) DerivedStatus(now time.Time, threshold time.Duration, loc *time.Location) SailStatus {
	return DeriveStatus(&s.Sail, s.PhoneBookings > 0, now, threshold, loc)
}

package service

import (
	"context"
	"time"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// SailView is the read-model of one sail as rendered to staff: the
// stored fields plus the derived status, occupancy totals and free
// seats.  Read paths build these without taking locks and may lag a
// concurrent commit by a moment; the notification channel tells
// consumers when to re-fetch.
type SailView struct {
	SailID             uint64          `json:"sail_id"`
	Date               string          `json:"date"`
	PlannedStartTime   string          `json:"planned_start_time"`
	ActualStartTime    *string         `json:"actual_start_time"`
	EndTime            *string         `json:"end_time"`
	BoatID             uint64          `json:"boat_id"`
	BoatName           string          `json:"boat_name"`
	ActivityName       string          `json:"activity_name"`
	PopulationType     string          `json:"population_type"`
	RequiresOrcaEscort bool            `json:"requires_orca_escort"`
	IsPrivateGroup     bool            `json:"is_private_group"`
	Notes              *string         `json:"notes,omitempty"`
	Status             model.SailStatus `json:"status"`
	Next               bool            `json:"next,omitempty"`
	TransferredTo      *uint64         `json:"transferred_to_sail_id,omitempty"`
	Occupancy          model.Occupancy `json:"occupancy"`
	SailSeatsLeft      int             `json:"sail_seats_left"`
	ActivitySeatsLeft  *int            `json:"activity_seats_left"`
	Bookings           []BookingView   `json:"bookings,omitempty"`
}

// BookingView is one booking as rendered on sail detail views.
type BookingView struct {
	BookingID         uint64  `json:"booking_id"`
	CustomerName      string  `json:"customer_name"`
	CustomerPhone     string  `json:"customer_phone"`
	NumPeopleSail     int     `json:"num_people_sail"`
	NumPeopleActivity int     `json:"num_people_activity"`
	FinalPriceCents   uint32  `json:"final_price_cents"`
	PaymentTypeID     uint64  `json:"payment_type_id"`
	IsPhoneBooking    bool    `json:"is_phone_booking"`
	UpTo16Year        bool    `json:"up_to_16_year"`
	Notes             *string `json:"notes,omitempty"`
}

// BoatSails groups a boat with its sails for the day.
type BoatSails struct {
	BoatID   uint64           `json:"boat_id"`
	BoatName string           `json:"boat_name"`
	Status   model.BoatStatus `json:"status,omitempty"`
	Sail     *SailView        `json:"sail,omitempty"`
	Sails    []SailView       `json:"upcoming_sails,omitempty"`
}

// Dashboard serves the staff read views: the current sail per boat,
// today's schedule and single-sail details.  It owns status
// derivation for everything it returns so no endpoint re-invents the
// rules.
type Dashboard struct {
	store     repository.Store
	loc       *time.Location
	threshold time.Duration
	now       func() time.Time
}

// NewDashboard returns a Dashboard.  threshold is the lateness
// threshold used in status derivation; now is injectable for tests.
func NewDashboard(store repository.Store, loc *time.Location, threshold time.Duration, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	return &Dashboard{store: store, loc: loc, threshold: threshold, now: now}
}

func (d *Dashboard) today() string { return d.now().In(d.loc).Format(model.DateFormat) }

func (d *Dashboard) view(s *model.SailOccupancy) SailView {
	left := model.RemainingCapacity(s, false)
	v := SailView{
		SailID:             s.ID,
		Date:               s.Date,
		PlannedStartTime:   s.PlannedStartTime.String(),
		BoatID:             s.BoatID,
		BoatName:           s.BoatName,
		ActivityName:       s.ActivityName,
		PopulationType:     s.PopulationTypeName,
		RequiresOrcaEscort: s.EffectiveEscort(),
		IsPrivateGroup:     s.IsPrivateGroup,
		Notes:              s.Notes,
		Status:             s.DerivedStatus(d.now(), d.threshold, d.loc),
		TransferredTo:      s.TransferredToSailID,
		Occupancy:          s.Occupancy,
		SailSeatsLeft:      left.SailSeats,
	}
	if s.ActualStartTime != nil {
		t := s.ActualStartTime.String()
		v.ActualStartTime = &t
	}
	if s.EndTime != nil {
		t := s.EndTime.String()
		v.EndTime = &t
	}
	if left.ActivitySeats != model.Unbounded {
		n := left.ActivitySeats
		v.ActivitySeatsLeft = &n
	}
	return v
}

func (d *Dashboard) attachBookings(ctx context.Context, v *SailView) error {
	rows, err := d.store.BookingsBySail(ctx, v.SailID)
	if err != nil {
		return err
	}
	v.Bookings = make([]BookingView, 0, len(rows))
	for _, b := range rows {
		v.Bookings = append(v.Bookings, BookingView{
			BookingID:         b.ID,
			CustomerName:      b.CustomerName,
			CustomerPhone:     b.CustomerPhone,
			NumPeopleSail:     b.NumPeopleSail,
			NumPeopleActivity: b.NumPeopleActivity,
			FinalPriceCents:   b.FinalPriceCents,
			PaymentTypeID:     b.PaymentTypeID,
			IsPhoneBooking:    b.IsPhoneBooking,
			UpTo16Year:        b.UpTo16Year,
			Notes:             b.Notes,
		})
	}
	return nil
}

// CurrentSails returns, per active boat, the sail the crew should be
// looking at right now: the in-progress one if any, otherwise the
// first sail of the day that is still live.  Boats with nothing
// relevant appear with a nil sail.
func (d *Dashboard) CurrentSails(ctx context.Context) ([]BoatSails, error) {
	boats, err := d.store.ActiveBoats(ctx)
	if err != nil {
		return nil, err
	}
	today := d.today()
	out := make([]BoatSails, 0, len(boats))
	for _, boat := range boats {
		sails, err := d.store.SailsForBoatDay(ctx, boat.ID, today)
		if err != nil {
			return nil, err
		}
		entry := BoatSails{BoatID: boat.ID, BoatName: boat.Name}
		var pick *model.SailOccupancy
		for i := range sails {
			if sails[i].DerivedStatus(d.now(), d.threshold, d.loc) == model.StatusInProgress {
				pick = &sails[i]
				break
			}
		}
		if pick == nil {
			for i := range sails {
				st := sails[i].DerivedStatus(d.now(), d.threshold, d.loc)
				if !st.Terminal() {
					pick = &sails[i]
					break
				}
			}
		}
		if pick != nil {
			v := d.view(pick)
			if err := d.attachBookings(ctx, &v); err != nil {
				return nil, err
			}
			entry.Sail = &v
		}
		out = append(out, entry)
	}
	return out, nil
}

// NextSails returns today's full schedule per boat with derived sail
// and boat statuses.  The earliest pending sail of each boat is
// flagged as next.
func (d *Dashboard) NextSails(ctx context.Context) ([]BoatSails, error) {
	boats, err := d.store.ActiveBoats(ctx)
	if err != nil {
		return nil, err
	}
	today := d.today()
	out := make([]BoatSails, 0, len(boats))
	for _, boat := range boats {
		sails, err := d.store.SailsForBoatDay(ctx, boat.ID, today)
		if err != nil {
			return nil, err
		}
		entry := BoatSails{BoatID: boat.ID, BoatName: boat.Name, Sails: []SailView{}}
		statuses := make([]model.SailStatus, 0, len(sails))
		nextFlagged := false
		for i := range sails {
			v := d.view(&sails[i])
			if err := d.attachBookings(ctx, &v); err != nil {
				return nil, err
			}
			if !nextFlagged && v.Status == model.StatusPending {
				v.Next = true
				nextFlagged = true
			}
			statuses = append(statuses, v.Status)
			entry.Sails = append(entry.Sails, v)
		}
		entry.Status = model.DeriveBoatStatus(statuses)
		out = append(out, entry)
	}
	return out, nil
}

// UpcomingForBoat returns today's not-yet-finished sails for one
// boat, in planned-start order.
func (d *Dashboard) UpcomingForBoat(ctx context.Context, boatID uint64) ([]SailView, error) {
	sails, err := d.store.SailsForBoatDay(ctx, boatID, d.today())
	if err != nil {
		return nil, err
	}
	out := make([]SailView, 0, len(sails))
	for i := range sails {
		v := d.view(&sails[i])
		if v.Status == model.StatusCompleted || v.Status == model.StatusCancelled {
			continue
		}
		if err := d.attachBookings(ctx, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Views renders a batch of occupancy rows without bookings attached.
func (d *Dashboard) Views(sails []model.SailOccupancy) []SailView {
	out := make([]SailView, 0, len(sails))
	for i := range sails {
		out = append(out, d.view(&sails[i]))
	}
	return out
}

// SailDetails returns one sail with its bookings and capacity block.
func (d *Dashboard) SailDetails(ctx context.Context, sailID uint64) (*SailView, error) {
	sail, err := d.store.SailWithOccupancy(ctx, sailID)
	if err != nil {
		return nil, err
	}
	v := d.view(sail)
	if err := d.attachBookings(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

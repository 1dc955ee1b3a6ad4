package service

import (
	"context"
	"strings"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// NewSailSpec carries the fields for creating a sail on the fly when
// a booking targets a slot with no existing sail.  The (boat,
// activity) pair is validated against the boat_activities links
// inside the transaction.
type NewSailSpec struct {
	Date               string          `json:"date"`
	PlannedStartTime   model.ClockTime `json:"-"`
	PopulationTypeID   uint64          `json:"population_type_id"`
	ActivityID         uint64          `json:"activity_id"`
	BoatID             uint64          `json:"boat_id"`
	IsPrivateGroup     bool            `json:"is_private_group"`
	RequiresOrcaEscort bool            `json:"requires_orca_escort"`
}

// ReserveInput is one reservation request.  Exactly one of SailID or
// NewSail must be set.
type ReserveInput struct {
	SailID  uint64
	NewSail *NewSailSpec

	Customer model.CustomerInput

	PaymentTypeID   uint64
	FinalPriceCents uint32

	NumPeopleActivity int
	NumPeopleSail     int
	IsPhoneBooking    bool
	UpTo16Year        bool
	Notes             *string
}

// ReserveResult reports the committed booking.
type ReserveResult struct {
	BookingID   uint64 `json:"booking_id"`
	SailID      uint64 `json:"sail_id"`
	CustomerID  uint64 `json:"customer_id"`
	SailCreated bool   `json:"sail_created"`
}

// Reservations executes the seat reservation transaction.  The
// earlier availability search is advisory only; correctness rests on
// the sail row lock taken inside Reserve plus the re-validation that
// follows it, so arbitrary concurrent callers can never commit more
// than the admissible number of seats.
type Reservations struct {
	store  repository.Store
	notify Notifier
}

// NewReservations returns a Reservations over the given store.  A nil
// notify disables change notifications.
func NewReservations(store repository.Store, notify Notifier) *Reservations {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Reservations{store: store, notify: notify}
}

func (in *ReserveInput) validate() error {
	if in.NumPeopleActivity < 0 || in.NumPeopleSail < 0 {
		return validationf("party sizes must not be negative")
	}
	if in.NumPeopleActivity == 0 && in.NumPeopleSail == 0 {
		return validationf("booking must include at least one person")
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return validationf("customer name is required")
	}
	if strings.TrimSpace(in.Customer.PhoneNumber) == "" {
		return validationf("customer phone number is required")
	}
	if in.PaymentTypeID == 0 {
		return validationf("payment type is required")
	}
	if (in.SailID == 0) == (in.NewSail == nil) {
		return validationf("provide either an existing sail id or new sail fields")
	}
	if in.NewSail != nil {
		ns := in.NewSail
		if ns.Date == "" || ns.BoatID == 0 || ns.ActivityID == 0 || ns.PopulationTypeID == 0 {
			return validationf("new sail requires date, boat, activity and population type")
		}
	}
	return nil
}

// Reserve runs the whole reservation as one atomic unit:
//
//  1. resolve or create the target sail (ErrInvalidCombination when
//     the boat cannot run the requested activity);
//  2. lock the sail's occupancy (ErrSailNotFound on raced deletion);
//  3. re-run the admissibility check under the lock, failing with
//     InsufficientSeatsError carrying the per-pool shortfall;
//  4. upsert the customer by phone number;
//  5. insert the booking.
//
// Any failure rolls the entire transaction back; partial customer or
// sail creation never persists.  A successful commit emits one
// change notification.
func (r *Reservations) Reserve(ctx context.Context, in ReserveInput) (*ReserveResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out ReserveResult
	err := r.store.ExecTx(ctx, func(tx repository.Tx) error {
		sailID := in.SailID
		if in.NewSail != nil {
			baID, err := tx.ResolveBoatActivity(ctx, in.NewSail.BoatID, in.NewSail.ActivityID)
			if err != nil {
				return err
			}
			sailID, err = tx.InsertSail(ctx, model.NewSail{
				Date:               in.NewSail.Date,
				PlannedStartTime:   in.NewSail.PlannedStartTime,
				BoatActivityID:     baID,
				PopulationTypeID:   in.NewSail.PopulationTypeID,
				IsPrivateGroup:     in.NewSail.IsPrivateGroup,
				RequiresOrcaEscort: in.NewSail.RequiresOrcaEscort,
			})
			if err != nil {
				return err
			}
			out.SailCreated = true
		}

		sail, err := tx.SailWithOccupancyForUpdate(ctx, sailID)
		if err != nil {
			return err
		}
		// A booking that brings a minor forces the escort seat even
		// when the sail does not carry one yet.
		left := model.RemainingCapacity(sail, in.UpTo16Year)
		if !left.Admits(in.NumPeopleActivity, in.NumPeopleSail) {
			return &InsufficientSeatsError{
				ActivityAvailable: left.ActivitySeats,
				ActivityRequested: in.NumPeopleActivity,
				SailAvailable:     left.SailSeats,
				SailRequested:     in.NumPeopleSail,
			}
		}

		customerID, err := tx.UpsertCustomer(ctx, in.Customer)
		if err != nil {
			return err
		}
		bookingID, err := tx.InsertBooking(ctx, model.NewBooking{
			SailID:            sailID,
			CustomerID:        customerID,
			NumPeopleSail:     in.NumPeopleSail,
			NumPeopleActivity: in.NumPeopleActivity,
			FinalPriceCents:   in.FinalPriceCents,
			PaymentTypeID:     in.PaymentTypeID,
			IsPhoneBooking:    in.IsPhoneBooking,
			UpTo16Year:        in.UpTo16Year,
			Notes:             in.Notes,
		})
		if err != nil {
			return err
		}
		out.BookingID = bookingID
		out.SailID = sailID
		out.CustomerID = customerID
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.notify.SailsChanged(ctx, "reservation")
	return &out, nil
}

package model

import "time"

// Booking reserves seats on exactly one sail for exactly one
// customer.  SailID is the only mutable field: the late-booking
// rebalancer reassigns bookings between sails.  Bookings are never
// deleted.
//
// Constraint: NumPeopleSail and NumPeopleActivity are both >= 0 and
// not both zero.
//
// Fields:
//  ID                – primary key identifier.
//  SailID            – sail the seats are reserved on (reassignable).
//  CustomerID        – customer who booked.
//  NumPeopleSail     – seats for people only sailing.
//  NumPeopleActivity – seats for activity participants.
//  FinalPriceCents   – agreed price, passed in by the caller.
//  PaymentTypeID     – payment method.
//  IsPhoneBooking    – taken by phone; subject to the lateness sweep.
//  UpTo16Year        – party includes a minor, forcing an escort seat.
//  Notes             – free-form notes (nullable).
type Booking struct {
	ID                uint64    // bookings.id
	SailID            uint64    // bookings.sail_id
	CustomerID        uint64    // bookings.customer_id
	NumPeopleSail     int       // bookings.num_people_sail
	NumPeopleActivity int       // bookings.num_people_activity
	FinalPriceCents   uint32    // bookings.final_price_cents
	PaymentTypeID     uint64    // bookings.payment_type_id
	IsPhoneBooking    bool      // bookings.is_phone_booking
	UpTo16Year        bool      // bookings.up_to_16_year
	Notes             *string   // bookings.notes (nullable)
	CreatedAt         time.Time // bookings.created_at
	UpdatedAt         time.Time // bookings.updated_at
}

// NewBooking carries the fields needed to insert a booking row.
type NewBooking struct {
	SailID            uint64
	CustomerID        uint64
	NumPeopleSail     int
	NumPeopleActivity int
	FinalPriceCents   uint32
	PaymentTypeID     uint64
	IsPhoneBooking    bool
	UpTo16Year        bool
	Notes             *string
}

// BookingDetail is a booking joined with its customer, as shown on
// sail detail and dashboard views.
type BookingDetail struct {
	Booking
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

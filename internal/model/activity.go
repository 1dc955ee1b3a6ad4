package model

import "time"

// Activity is an excursion type offered during a sail (for example a
// towed inflatable ride).  MaxPeopleTotal is the activity-specific
// participant ceiling; nil means the activity itself imposes no bound
// and only the boat capacity applies.  Activities are static
// reference data.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – activity name.
//  TicketPriceCents – list price per participant in agorot/cents.
//  MaxPeopleTotal  – participant ceiling (nullable, nil = unbounded).
//  MinAge          – minimum participant age.
type Activity struct {
	ID              uint64    // activities.id
	Name            string    // activities.name
	TicketPriceCents uint32   // activities.ticket_price_cents
	MaxPeopleTotal  *int      // activities.max_people_total (nullable)
	MinAge          int       // activities.min_age
	CreatedAt       time.Time // activities.created_at
	UpdatedAt       time.Time // activities.updated_at
}

// BoatActivity links a boat to an activity it may run.  Sails
// reference this link rather than the boat and activity directly, so
// a sail is always a valid (boat, activity) combination by
// construction.
//
// Fields:
//  ID         – primary key identifier.
//  BoatID     – the boat.
//  ActivityID – the activity the boat is allowed to run.
type BoatActivity struct {
	ID         uint64 // boat_activities.id
	BoatID     uint64 // boat_activities.boat_id
	ActivityID uint64 // boat_activities.activity_id
}

// PopulationType classifies the audience of a sail (e.g. general
// public, school group).  Static reference data.
type PopulationType struct {
	ID   uint64 // population_types.id
	Name string // population_types.name
}

// PaymentType is a payment method accepted when booking (cash, card,
// transfer).  Static reference data.
type PaymentType struct {
	ID   uint64 // payment_types.id
	Name string // payment_types.name
}

package model

import "time"

// SailStatus enumerates the externally visible states of a sail.
// Only a subset is ever written to sails.status: pending, cancelled,
// delayed and transferred_late.  The rest (and the refinement of
// pending into late/delayed) are derived from timestamps at read time
// by DeriveStatus, so every endpoint sees one consistent answer.
type SailStatus string

const (
	StatusPending         SailStatus = "pending"
	StatusDelayed         SailStatus = "delayed"
	StatusLate            SailStatus = "late"
	StatusInProgress      SailStatus = "in_progress"
	StatusCompleted       SailStatus = "completed"
	StatusTransferredLate SailStatus = "transferred_late"
	StatusCancelled       SailStatus = "cancelled"
)

// Terminal reports whether a sail in this state is closed for
// booking purposes.
func (s SailStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusTransferredLate
}

// Sail is one scheduled voyage instance as stored in the `sails`
// table.  A sail references a BoatActivity link, fixing both the boat
// and the activity it runs.  Sails are never physically deleted; they
// remain as historical record.
//
// Invariants:
//  - EndTime set implies ActualStartTime set.
//  - TransferredToSailID is non-nil only when Status is transferred_late.
//
// Fields:
//  ID                  – primary key identifier.
//  Date                – sail date, "YYYY-MM-DD".
//  PlannedStartTime    – scheduled departure time of day.
//  ActualStartTime     – set when the boat departs (nullable).
//  EndTime             – set when the boat returns (nullable).
//  BoatActivityID      – (boat, activity) combination being run.
//  PopulationTypeID    – audience classification.
//  RequiresOrcaEscort  – one seat is reserved for an escort.
//  IsPrivateGroup      – closed group, not offered in search.
//  Notes               – free-form operator notes (nullable).
//  Status              – stored status (see SailStatus).
//  TransferredToSailID – absorbing sail after a late transfer (nullable).
type Sail struct {
	ID                  uint64     // sails.id
	Date                string     // sails.date
	PlannedStartTime    ClockTime  // sails.planned_start_time
	ActualStartTime     *ClockTime // sails.actual_start_time (nullable)
	EndTime             *ClockTime // sails.end_time (nullable)
	BoatActivityID      uint64     // sails.boat_activity_id
	PopulationTypeID    uint64     // sails.population_type_id
	RequiresOrcaEscort  bool       // sails.requires_orca_escort
	IsPrivateGroup      bool       // sails.is_private_group
	Notes               *string    // sails.notes (nullable)
	Status              SailStatus // sails.status
	TransferredToSailID *uint64    // sails.transferred_to_sail_id (nullable)
	CreatedAt           time.Time  // sails.created_at
	UpdatedAt           time.Time  // sails.updated_at
}

// NewSail carries the fields needed to insert a sail implicitly from
// the reservation path.
type NewSail struct {
	Date               string
	PlannedStartTime   ClockTime
	BoatActivityID     uint64
	PopulationTypeID   uint64
	IsPrivateGroup     bool
	RequiresOrcaEscort bool
	Notes              *string
}

// Occupancy is the booked seat total of a sail, split by pool.
// Activity participants also occupy a boat seat, so the number of
// people on board is Sail+Activity.
type Occupancy struct {
	Sail     int `json:"sail"`
	Activity int `json:"activity"`
}

// OnBoard returns the total number of people occupying boat seats.
func (o Occupancy) OnBoard() int { return o.Sail + o.Activity }

// SailOccupancy is a sail annotated with its boat, activity and
// current booked occupancy, as returned by the occupancy queries.
// It is the unit of work for availability search, the reservation
// capacity re-check and the rebalancer sweep.
type SailOccupancy struct {
	Sail
	BoatID             uint64
	BoatName           string
	BoatCapacity       int    // boats.max_passengers
	ActivityID         uint64
	ActivityName       string
	ActivityCapacity   *int // activities.max_people_total (nil = unbounded)
	PopulationTypeName string
	Occupancy          Occupancy
	PhoneBookings      int  // count of bookings with is_phone_booking
	HasUnder16         bool // any booking flagged up_to_16_year
}

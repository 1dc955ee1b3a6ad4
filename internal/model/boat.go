package model

import "time"

// Boat represents a physical vessel as stored in the `boats` table.
// MaxPassengers is the hard seat ceiling for any sail run on this
// boat; the usable number may be one lower when an orca escort is
// required (see capacity.go).  Boats are created and edited by fleet
// administration and are treated as immutable within a business day.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name shown on the dashboard.
//  MaxPassengers – hard seat ceiling.
//  IsActive      – whether the boat participates in scheduling.
//  GateNumber    – gate/slot assignment at the marina.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Boat struct {
	ID            uint64    // boats.id
	Name          string    // boats.name
	MaxPassengers int       // boats.max_passengers
	IsActive      bool      // boats.is_active
	GateNumber    int       // boats.gate_number
	CreatedAt     time.Time // boats.created_at
	UpdatedAt     time.Time // boats.updated_at
}

// BoatStatus is the aggregate state of a boat derived from its sails
// for the day.  It is never stored; dashboards compute it on read.
type BoatStatus string

const (
	BoatIdle    BoatStatus = "idle"    // no sails scheduled today
	BoatActive  BoatStatus = "active"  // a sail is currently at sea
	BoatDelayed BoatStatus = "delayed" // at least one sail is running behind
	BoatReady   BoatStatus = "ready"   // sails scheduled, none late
)

// DeriveBoatStatus folds the statuses of a boat's sails for the day
// into a single boat state.  In-progress wins over delayed/late,
// which wins over ready.
func DeriveBoatStatus(statuses []SailStatus) BoatStatus {
	if len(statuses) == 0 {
		return BoatIdle
	}
	delayed := false
	for _, st := range statuses {
		switch st {
		case StatusInProgress:
			return BoatActive
		case StatusDelayed, StatusLate:
			delayed = true
		}
	}
	if delayed {
		return BoatDelayed
	}
	return BoatReady
}

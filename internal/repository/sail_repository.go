package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/orcabay/sail-reservation/internal/model"
)

// SailRepo provides reads and writes for sails and their aggregated
// occupancy.  Occupancy rows join the sail with its boat, activity
// and population type and sum the people booked per pool, which is
// what both the availability search and the reservation re-check
// consume.  All write methods take a *sql.Tx; the caller owns the
// transaction boundary.
type SailRepo struct {
	db *sql.DB
}

// NewSailRepo returns a new SailRepo bound to the given database.
func NewSailRepo(db *sql.DB) *SailRepo { return &SailRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *SailRepo) DB() *sql.DB { return r.db }

// occupancySelect is the shared projection for occupancy-annotated
// sail rows.  Callers append WHERE conditions before the GROUP BY.
const occupancySelect = `SELECT s.id, s.date, s.planned_start_time, s.actual_start_time, s.end_time,
       s.boat_activity_id, s.population_type_id, s.requires_orca_escort, s.is_private_group,
       s.notes, s.status, s.transferred_to_sail_id,
       bo.id, bo.name, bo.max_passengers,
       a.id, a.name, a.max_people_total,
       pt.name,
       COALESCE(SUM(b.num_people_sail), 0)     AS people_on_sail,
       COALESCE(SUM(b.num_people_activity), 0) AS people_on_activity,
       COALESCE(SUM(b.is_phone_booking), 0)    AS phone_bookings,
       COALESCE(MAX(b.up_to_16_year), 0)       AS has_under_16
FROM sails s
JOIN boat_activities ba ON ba.id = s.boat_activity_id
JOIN boats bo           ON bo.id = ba.boat_id
JOIN activities a       ON a.id = ba.activity_id
JOIN population_types pt ON pt.id = s.population_type_id
LEFT JOIN bookings b    ON b.sail_id = s.id
WHERE `

const occupancyGroup = ` GROUP BY s.id, s.date, s.planned_start_time, s.actual_start_time, s.end_time,
         s.boat_activity_id, s.population_type_id, s.requires_orca_escort, s.is_private_group,
         s.notes, s.status, s.transferred_to_sail_id,
         bo.id, bo.name, bo.max_passengers, a.id, a.name, a.max_people_total, pt.name
ORDER BY s.planned_start_time ASC`

type occupancyScanner interface {
	Scan(dest ...any) error
}

// scanOccupancy decodes one occupancySelect row.  TIME columns arrive
// as "HH:MM:SS" strings and are parsed into ClockTime here, at the
// storage boundary, so the rest of the engine compares minutes, not
// strings.
func scanOccupancy(row occupancyScanner) (*model.SailOccupancy, error) {
	var (
		so            model.SailOccupancy
		date          time.Time
		planned       string
		actual, end   sql.NullString
		notes         sql.NullString
		transferredTo sql.NullInt64
		activityCap   sql.NullInt64
		hasUnder16    int
	)
	if err := row.Scan(
		&so.ID, &date, &planned, &actual, &end,
		&so.BoatActivityID, &so.PopulationTypeID, &so.RequiresOrcaEscort, &so.IsPrivateGroup,
		&notes, &so.Status, &transferredTo,
		&so.BoatID, &so.BoatName, &so.BoatCapacity,
		&so.ActivityID, &so.ActivityName, &activityCap,
		&so.PopulationTypeName,
		&so.Occupancy.Sail, &so.Occupancy.Activity,
		&so.PhoneBookings, &hasUnder16,
	); err != nil {
		return nil, err
	}
	so.Date = date.Format(model.DateFormat)
	ct, err := model.ParseClock(planned)
	if err != nil {
		return nil, err
	}
	so.PlannedStartTime = ct
	if actual.Valid {
		ct, err := model.ParseClock(actual.String)
		if err != nil {
			return nil, err
		}
		so.ActualStartTime = &ct
	}
	if end.Valid {
		ct, err := model.ParseClock(end.String)
		if err != nil {
			return nil, err
		}
		so.EndTime = &ct
	}
	if notes.Valid {
		n := notes.String
		so.Notes = &n
	}
	if transferredTo.Valid {
		id := uint64(transferredTo.Int64)
		so.TransferredToSailID = &id
	}
	if activityCap.Valid {
		c := int(activityCap.Int64)
		so.ActivityCapacity = &c
	}
	so.HasUnder16 = hasUnder16 != 0
	return &so, nil
}

func collectOccupancy(rows *sql.Rows) ([]model.SailOccupancy, error) {
	defer rows.Close()
	out := make([]model.SailOccupancy, 0)
	for rows.Next() {
		so, err := scanOccupancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *so)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CandidateFilter selects bookable sails for the availability search:
// one date, one activity, one population type, planned start inside
// [From, To].
type CandidateFilter struct {
	Date             string
	ActivityID       uint64
	PopulationTypeID uint64
	From, To         model.ClockTime
}

// CandidateSails returns occupancy-annotated sails matching the
// filter.  Private groups, departed sails and terminal statuses are
// excluded; capacity filtering is the caller's job.  This is an
// advisory read: it takes no locks and may observe occupancy that a
// concurrent commit is about to change.
func (r *SailRepo) CandidateSails(ctx context.Context, f CandidateFilter) ([]model.SailOccupancy, error) {
	q := occupancySelect + `s.date = ? AND ba.activity_id = ? AND s.population_type_id = ?
  AND s.planned_start_time BETWEEN ? AND ?
  AND s.is_private_group = FALSE
  AND s.actual_start_time IS NULL AND s.end_time IS NULL
  AND s.status NOT IN ('cancelled', 'transferred_late')` + occupancyGroup
	rows, err := r.db.QueryContext(ctx, q, f.Date, f.ActivityID, f.PopulationTypeID, f.From.SQL(), f.To.SQL())
	if err != nil {
		return nil, err
	}
	return collectOccupancy(rows)
}

// SailsForBoatDay returns all of a boat's sails for one date with
// occupancy, in planned-start order.  Dashboards and the rebalancer
// derive statuses from these rows.
func (r *SailRepo) SailsForBoatDay(ctx context.Context, boatID uint64, date string) ([]model.SailOccupancy, error) {
	q := occupancySelect + `ba.boat_id = ? AND s.date = ?` + occupancyGroup
	rows, err := r.db.QueryContext(ctx, q, boatID, date)
	if err != nil {
		return nil, err
	}
	return collectOccupancy(rows)
}

// OverdueSails returns today's sails that qualify for the lateness
// sweep: not departed, not finished, planned start at or before the
// cutoff, at least one phone booking, status not terminal.
func (r *SailRepo) OverdueSails(ctx context.Context, date string, cutoff model.ClockTime) ([]model.SailOccupancy, error) {
	q := occupancySelect + `s.date = ? AND s.planned_start_time <= ?
  AND s.actual_start_time IS NULL AND s.end_time IS NULL
  AND s.status NOT IN ('completed', 'cancelled', 'transferred_late')` +
		occupancyGroup + `
HAVING phone_bookings > 0`
	rows, err := r.db.QueryContext(ctx, q, date, cutoff.SQL())
	if err != nil {
		return nil, err
	}
	return collectOccupancy(rows)
}

// SailWithOccupancy reads one occupancy-annotated sail without any
// lock, for detail views.  Returns ErrSailNotFound when absent.
func (r *SailRepo) SailWithOccupancy(ctx context.Context, sailID uint64) (*model.SailOccupancy, error) {
	q := occupancySelect + `s.id = ?` + occupancyGroup
	so, err := scanOccupancy(r.db.QueryRowContext(ctx, q, sailID))
	if err == sql.ErrNoRows {
		return nil, ErrSailNotFound
	}
	return so, err
}

// SailWithOccupancyForUpdateTx locks the sail row (SELECT ... FOR
// UPDATE) and then aggregates its occupancy inside the same
// transaction.  The row lock is what serializes concurrent
// reservation attempts on one sail: every writer locks here first and
// re-checks capacity before inserting a booking.  MySQL disallows FOR
// UPDATE together with GROUP BY, hence the two statements.
func (r *SailRepo) SailWithOccupancyForUpdateTx(ctx context.Context, tx *sql.Tx, sailID uint64) (*model.SailOccupancy, error) {
	const lockQ = `SELECT s.id, s.date, s.planned_start_time, s.actual_start_time, s.end_time,
       s.boat_activity_id, s.population_type_id, s.requires_orca_escort, s.is_private_group,
       s.notes, s.status, s.transferred_to_sail_id,
       bo.id, bo.name, bo.max_passengers,
       a.id, a.name, a.max_people_total,
       pt.name
FROM sails s
JOIN boat_activities ba ON ba.id = s.boat_activity_id
JOIN boats bo           ON bo.id = ba.boat_id
JOIN activities a       ON a.id = ba.activity_id
JOIN population_types pt ON pt.id = s.population_type_id
WHERE s.id = ?
FOR UPDATE`
	var (
		so            model.SailOccupancy
		date          time.Time
		planned       string
		actual, end   sql.NullString
		notes         sql.NullString
		transferredTo sql.NullInt64
		activityCap   sql.NullInt64
	)
	err := tx.QueryRowContext(ctx, lockQ, sailID).Scan(
		&so.ID, &date, &planned, &actual, &end,
		&so.BoatActivityID, &so.PopulationTypeID, &so.RequiresOrcaEscort, &so.IsPrivateGroup,
		&notes, &so.Status, &transferredTo,
		&so.BoatID, &so.BoatName, &so.BoatCapacity,
		&so.ActivityID, &so.ActivityName, &activityCap,
		&so.PopulationTypeName,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSailNotFound
	}
	if err != nil {
		return nil, err
	}
	so.Date = date.Format(model.DateFormat)
	ct, err := model.ParseClock(planned)
	if err != nil {
		return nil, err
	}
	so.PlannedStartTime = ct
	if actual.Valid {
		ct, err := model.ParseClock(actual.String)
		if err != nil {
			return nil, err
		}
		so.ActualStartTime = &ct
	}
	if end.Valid {
		ct, err := model.ParseClock(end.String)
		if err != nil {
			return nil, err
		}
		so.EndTime = &ct
	}
	if notes.Valid {
		n := notes.String
		so.Notes = &n
	}
	if transferredTo.Valid {
		id := uint64(transferredTo.Int64)
		so.TransferredToSailID = &id
	}
	if activityCap.Valid {
		c := int(activityCap.Int64)
		so.ActivityCapacity = &c
	}

	const sumQ = `SELECT COALESCE(SUM(num_people_sail), 0), COALESCE(SUM(num_people_activity), 0),
       COALESCE(SUM(is_phone_booking), 0), COALESCE(MAX(up_to_16_year), 0)
FROM bookings WHERE sail_id = ?`
	var hasUnder16 int
	if err := tx.QueryRowContext(ctx, sumQ, sailID).Scan(
		&so.Occupancy.Sail, &so.Occupancy.Activity, &so.PhoneBookings, &hasUnder16,
	); err != nil {
		return nil, err
	}
	so.HasUnder16 = hasUnder16 != 0
	return &so, nil
}

// SailByIDTx reads the bare sail row within a transaction.  Returns
// ErrSailNotFound when absent.
func (r *SailRepo) SailByIDTx(ctx context.Context, tx *sql.Tx, sailID uint64) (*model.Sail, error) {
	const q = `SELECT id, date, planned_start_time, actual_start_time, end_time,
       boat_activity_id, population_type_id, requires_orca_escort, is_private_group,
       notes, status, transferred_to_sail_id
FROM sails WHERE id = ?`
	var (
		s             model.Sail
		date          time.Time
		planned       string
		actual, end   sql.NullString
		notes         sql.NullString
		transferredTo sql.NullInt64
	)
	err := tx.QueryRowContext(ctx, q, sailID).Scan(
		&s.ID, &date, &planned, &actual, &end,
		&s.BoatActivityID, &s.PopulationTypeID, &s.RequiresOrcaEscort, &s.IsPrivateGroup,
		&notes, &s.Status, &transferredTo,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSailNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Date = date.Format(model.DateFormat)
	ct, err := model.ParseClock(planned)
	if err != nil {
		return nil, err
	}
	s.PlannedStartTime = ct
	if actual.Valid {
		ct, err := model.ParseClock(actual.String)
		if err != nil {
			return nil, err
		}
		s.ActualStartTime = &ct
	}
	if end.Valid {
		ct, err := model.ParseClock(end.String)
		if err != nil {
			return nil, err
		}
		s.EndTime = &ct
	}
	if notes.Valid {
		n := notes.String
		s.Notes = &n
	}
	if transferredTo.Valid {
		id := uint64(transferredTo.Int64)
		s.TransferredToSailID = &id
	}
	return &s, nil
}

// InsertSailTx inserts a sail created implicitly by the reservation
// path and returns its id.
func (r *SailRepo) InsertSailTx(ctx context.Context, tx *sql.Tx, ns model.NewSail) (uint64, error) {
	const q = `INSERT INTO sails
  (date, planned_start_time, boat_activity_id, population_type_id,
   requires_orca_escort, is_private_group, notes, status)
VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')`
	res, err := tx.ExecContext(ctx, q,
		ns.Date, ns.PlannedStartTime.SQL(), ns.BoatActivityID, ns.PopulationTypeID,
		ns.RequiresOrcaEscort, ns.IsPrivateGroup, ns.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateSailStatusTx writes the stored status and the transfer
// target in one statement.  Passing transferredTo nil clears the
// column, preserving the invariant that it is set only for
// transferred_late sails.
func (r *SailRepo) UpdateSailStatusTx(ctx context.Context, tx *sql.Tx, sailID uint64, status model.SailStatus, transferredTo *uint64) error {
	const q = `UPDATE sails SET status = ?, transferred_to_sail_id = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), transferredTo, sailID)
	return err
}

// SetActualStartTx records the departure time.
func (r *SailRepo) SetActualStartTx(ctx context.Context, tx *sql.Tx, sailID uint64, t model.ClockTime) error {
	const q = `UPDATE sails SET actual_start_time = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, t.SQL(), sailID)
	return err
}

// SetEndTimeTx records the return time.
func (r *SailRepo) SetEndTimeTx(ctx context.Context, tx *sql.Tx, sailID uint64, t model.ClockTime) error {
	const q = `UPDATE sails SET end_time = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, t.SQL(), sailID)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/orcabay/sail-reservation/internal/model"
)

// Store is the query surface the services consume.  Reads outside a
// transaction are advisory and may observe slightly stale occupancy;
// every occupancy-affecting write happens inside ExecTx, so partial
// customer or sail creation can never persist.
type Store interface {
	// ExecTx runs fn inside one transaction.  Any error from fn
	// rolls the whole transaction back; lock-wait timeouts and
	// deadlocks come back wrapped in ErrRetryable.
	ExecTx(ctx context.Context, fn func(Tx) error) error

	CandidateSails(ctx context.Context, f CandidateFilter) ([]model.SailOccupancy, error)
	SailsForBoatDay(ctx context.Context, boatID uint64, date string) ([]model.SailOccupancy, error)
	OverdueSails(ctx context.Context, date string, cutoff model.ClockTime) ([]model.SailOccupancy, error)
	SailWithOccupancy(ctx context.Context, sailID uint64) (*model.SailOccupancy, error)
	BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error)
	ActiveBoats(ctx context.Context) ([]model.Boat, error)
}

// Tx is the transactional slice of the store.  Implementations hold
// an open *sql.Tx; the ExecTx caller owns commit and rollback.
type Tx interface {
	// SailWithOccupancyForUpdate locks the sail row and returns it
	// with fresh occupancy.  This lock is the serialization point
	// for all reservation attempts against the sail.
	SailWithOccupancyForUpdate(ctx context.Context, sailID uint64) (*model.SailOccupancy, error)
	SailByID(ctx context.Context, sailID uint64) (*model.Sail, error)
	ResolveBoatActivity(ctx context.Context, boatID, activityID uint64) (uint64, error)
	InsertSail(ctx context.Context, ns model.NewSail) (uint64, error)
	UpsertCustomer(ctx context.Context, in model.CustomerInput) (uint64, error)
	InsertBooking(ctx context.Context, nb model.NewBooking) (uint64, error)
	BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error)
	ReassignBookings(ctx context.Context, fromSailID, toSailID uint64) (int64, error)
	UpdateSailStatus(ctx context.Context, sailID uint64, status model.SailStatus, transferredTo *uint64) error
	SetActualStart(ctx context.Context, sailID uint64, t model.ClockTime) error
	SetEndTime(ctx context.Context, sailID uint64, t model.ClockTime) error
}

// SQLStore implements Store on MySQL by delegating to the per-entity
// repositories.  One SQLStore is built at process start around the
// shared pool and injected into every service.
type SQLStore struct {
	db        *sql.DB
	Sails     *SailRepo
	Bookings  *BookingRepo
	Customers *CustomerRepo
	Boats     *BoatRepo
}

// NewSQLStore builds a SQLStore and its repositories around one pool.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:        db,
		Sails:     NewSailRepo(db),
		Bookings:  NewBookingRepo(db),
		Customers: NewCustomerRepo(db),
		Boats:     NewBoatRepo(db),
	}
}

// MySQL server error numbers for lock wait timeout and deadlock.
const (
	mysqlErrLockWait = 1205
	mysqlErrDeadlock = 1213
)

// ExecTx implements Store.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx, store: s}); err != nil {
		return mapRetryable(err)
	}
	if err := tx.Commit(); err != nil {
		return mapRetryable(err)
	}
	committed = true
	return nil
}

// mapRetryable wraps lock-wait timeouts and deadlocks in
// ErrRetryable so callers can distinguish "try again" from real
// failures.
func mapRetryable(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlErrLockWait || me.Number == mysqlErrDeadlock) {
		return fmt.Errorf("%w: %v", ErrRetryable, err)
	}
	return err
}

func (s *SQLStore) CandidateSails(ctx context.Context, f CandidateFilter) ([]model.SailOccupancy, error) {
	return s.Sails.CandidateSails(ctx, f)
}

func (s *SQLStore) SailsForBoatDay(ctx context.Context, boatID uint64, date string) ([]model.SailOccupancy, error) {
	return s.Sails.SailsForBoatDay(ctx, boatID, date)
}

func (s *SQLStore) OverdueSails(ctx context.Context, date string, cutoff model.ClockTime) ([]model.SailOccupancy, error) {
	return s.Sails.OverdueSails(ctx, date, cutoff)
}

func (s *SQLStore) SailWithOccupancy(ctx context.Context, sailID uint64) (*model.SailOccupancy, error) {
	return s.Sails.SailWithOccupancy(ctx, sailID)
}

func (s *SQLStore) BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error) {
	return s.Bookings.BySail(ctx, sailID)
}

func (s *SQLStore) ActiveBoats(ctx context.Context) ([]model.Boat, error) {
	return s.Boats.ActiveBoats(ctx)
}

// sqlTx adapts one open *sql.Tx to the Tx interface.
type sqlTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (t *sqlTx) SailWithOccupancyForUpdate(ctx context.Context, sailID uint64) (*model.SailOccupancy, error) {
	return t.store.Sails.SailWithOccupancyForUpdateTx(ctx, t.tx, sailID)
}

func (t *sqlTx) SailByID(ctx context.Context, sailID uint64) (*model.Sail, error) {
	return t.store.Sails.SailByIDTx(ctx, t.tx, sailID)
}

func (t *sqlTx) ResolveBoatActivity(ctx context.Context, boatID, activityID uint64) (uint64, error) {
	return t.store.Boats.ResolveBoatActivityTx(ctx, t.tx, boatID, activityID)
}

func (t *sqlTx) InsertSail(ctx context.Context, ns model.NewSail) (uint64, error) {
	return t.store.Sails.InsertSailTx(ctx, t.tx, ns)
}

func (t *sqlTx) UpsertCustomer(ctx context.Context, in model.CustomerInput) (uint64, error) {
	return t.store.Customers.UpsertTx(ctx, t.tx, in)
}

func (t *sqlTx) InsertBooking(ctx context.Context, nb model.NewBooking) (uint64, error) {
	return t.store.Bookings.InsertTx(ctx, t.tx, nb)
}

func (t *sqlTx) BookingsBySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error) {
	return t.store.Bookings.BySailTx(ctx, t.tx, sailID)
}

func (t *sqlTx) ReassignBookings(ctx context.Context, fromSailID, toSailID uint64) (int64, error) {
	return t.store.Bookings.ReassignSailTx(ctx, t.tx, fromSailID, toSailID)
}

func (t *sqlTx) UpdateSailStatus(ctx context.Context, sailID uint64, status model.SailStatus, transferredTo *uint64) error {
	return t.store.Sails.UpdateSailStatusTx(ctx, t.tx, sailID, status, transferredTo)
}

func (t *sqlTx) SetActualStart(ctx context.Context, sailID uint64, ct model.ClockTime) error {
	return t.store.Sails.SetActualStartTx(ctx, t.tx, sailID, ct)
}

func (t *sqlTx) SetEndTime(ctx context.Context, sailID uint64, ct model.ClockTime) error {
	return t.store.Sails.SetEndTimeTx(ctx, t.tx, sailID, ct)
}

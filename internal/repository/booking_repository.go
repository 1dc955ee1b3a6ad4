package repository

import (
	"context"
	"database/sql"

	"github.com/orcabay/sail-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking ties
// a customer to a sail with a per-pool headcount; sail_id is the only
// field mutated after insert (the rebalancer reassigns it).  Bookings
// are never deleted.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// InsertTx inserts a booking within the caller's transaction and
// returns its id.
func (r *BookingRepo) InsertTx(ctx context.Context, tx *sql.Tx, nb model.NewBooking) (uint64, error) {
	const q = `INSERT INTO bookings
  (sail_id, customer_id, num_people_sail, num_people_activity,
   final_price_cents, payment_type_id, is_phone_booking, up_to_16_year, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		nb.SailID, nb.CustomerID, nb.NumPeopleSail, nb.NumPeopleActivity,
		nb.FinalPriceCents, nb.PaymentTypeID, nb.IsPhoneBooking, nb.UpTo16Year, nb.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ReassignSailTx moves every booking from one sail to another in a
// single statement and returns the number of bookings moved.  Both
// the transfer and the revert run through here.
func (r *BookingRepo) ReassignSailTx(ctx context.Context, tx *sql.Tx, fromSailID, toSailID uint64) (int64, error) {
	const q = `UPDATE bookings SET sail_id = ?, updated_at = NOW() WHERE sail_id = ?`
	res, err := tx.ExecContext(ctx, q, toSailID, fromSailID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const bookingDetailSelect = `SELECT b.id, b.sail_id, b.customer_id, b.num_people_sail, b.num_people_activity,
       b.final_price_cents, b.payment_type_id, b.is_phone_booking, b.up_to_16_year, b.notes,
       c.name, c.phone_number
FROM bookings b
JOIN customers c ON c.id = b.customer_id
WHERE b.sail_id = ?
ORDER BY c.name`

// BySail returns the bookings of one sail joined with customer name
// and phone, in customer-name order.
func (r *BookingRepo) BySail(ctx context.Context, sailID uint64) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailSelect, sailID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

// BySailTx is BySail inside an existing transaction, used by the
// rebalancer to snapshot the bookings it is about to move.
func (r *BookingRepo) BySailTx(ctx context.Context, tx *sql.Tx, sailID uint64) ([]model.BookingDetail, error) {
	rows, err := tx.QueryContext(ctx, bookingDetailSelect, sailID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

func collectBookingDetails(rows *sql.Rows) ([]model.BookingDetail, error) {
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		var (
			d     model.BookingDetail
			notes sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.SailID, &d.CustomerID, &d.NumPeopleSail, &d.NumPeopleActivity,
			&d.FinalPriceCents, &d.PaymentTypeID, &d.IsPhoneBooking, &d.UpTo16Year, &notes,
			&d.CustomerName, &d.CustomerPhone,
		); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			d.Notes = &n
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

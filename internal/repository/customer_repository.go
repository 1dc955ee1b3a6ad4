package repository

import (
	"context"
	"database/sql"

	"github.com/orcabay/sail-reservation/internal/model"
)

// CustomerRepo provides the phone-keyed customer upsert used by the
// reservation transaction.  The store enforces phone uniqueness; the
// upsert keeps one row per phone number no matter how many bookings a
// customer makes.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// UpsertTx looks the customer up by phone number inside the caller's
// transaction.  Absent: insert.  Present: compare each field against
// the stored row and update in place only when something actually
// differs, so repeat bookings with identical details write nothing.
// Returns the customer id either way.
func (r *CustomerRepo) UpsertTx(ctx context.Context, tx *sql.Tx, in model.CustomerInput) (uint64, error) {
	const sel = `SELECT id, name, email, wants_whatsapp, notes FROM customers WHERE phone_number = ?`
	var (
		id            uint64
		name          string
		email, notes  sql.NullString
		wantsWhatsapp bool
	)
	err := tx.QueryRowContext(ctx, sel, in.PhoneNumber).Scan(&id, &name, &email, &wantsWhatsapp, &notes)
	if err == sql.ErrNoRows {
		const ins = `INSERT INTO customers (name, phone_number, email, wants_whatsapp, notes) VALUES (?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, ins, in.Name, in.PhoneNumber, in.Email, in.WantsWhatsapp, in.Notes)
		if err != nil {
			return 0, err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return uint64(newID), nil
	}
	if err != nil {
		return 0, err
	}

	if name == in.Name &&
		nullableEqual(email, in.Email) &&
		wantsWhatsapp == in.WantsWhatsapp &&
		nullableEqual(notes, in.Notes) {
		return id, nil
	}
	const upd = `UPDATE customers SET name = ?, email = ?, wants_whatsapp = ?, notes = ?, updated_at = NOW() WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, in.Name, in.Email, in.WantsWhatsapp, in.Notes, id); err != nil {
		return 0, err
	}
	return id, nil
}

// nullableEqual compares a stored nullable column with an incoming
// optional field.  NULL equals nil, not empty string.
func nullableEqual(stored sql.NullString, incoming *string) bool {
	if !stored.Valid {
		return incoming == nil
	}
	return incoming != nil && stored.String == *incoming
}

// ByPhone fetches a customer by phone number.  Returns
// sql.ErrNoRows when no such customer exists.
func (r *CustomerRepo) ByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	const q = `SELECT id, name, phone_number, email, wants_whatsapp, notes, created_at, updated_at
FROM customers WHERE phone_number = ? LIMIT 1`
	var (
		c            model.Customer
		email, notes sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, phone).Scan(
		&c.ID, &c.Name, &c.PhoneNumber, &email, &c.WantsWhatsapp, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		c.Email = &v
	}
	if notes.Valid {
		v := notes.String
		c.Notes = &v
	}
	return &c, nil
}

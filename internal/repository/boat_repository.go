package repository

import (
	"context"
	"database/sql"

	"github.com/orcabay/sail-reservation/internal/model"
)

// BoatRepo provides reads over boats and the boat/activity links.
// Boats are reference data edited elsewhere; the booking engine only
// lists them and resolves valid (boat, activity) combinations.
type BoatRepo struct {
	db *sql.DB
}

// NewBoatRepo returns a new BoatRepo bound to the given database.
func NewBoatRepo(db *sql.DB) *BoatRepo { return &BoatRepo{db: db} }

// ActiveBoats lists the active fleet in name order.
func (r *BoatRepo) ActiveBoats(ctx context.Context) ([]model.Boat, error) {
	const q = `SELECT id, name, max_passengers, is_active, gate_number
FROM boats WHERE is_active = TRUE ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Boat, 0)
	for rows.Next() {
		var b model.Boat
		if err := rows.Scan(&b.ID, &b.Name, &b.MaxPassengers, &b.IsActive, &b.GateNumber); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveBoatActivityTx maps a (boat, activity) pair to the
// boat_activities link id inside the caller's transaction.  Returns
// ErrInvalidCombination when the boat is not allowed to run the
// activity.
func (r *BoatRepo) ResolveBoatActivityTx(ctx context.Context, tx *sql.Tx, boatID, activityID uint64) (uint64, error) {
	const q = `SELECT id FROM boat_activities WHERE boat_id = ? AND activity_id = ? LIMIT 1`
	var id uint64
	err := tx.QueryRowContext(ctx, q, boatID, activityID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrInvalidCombination
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

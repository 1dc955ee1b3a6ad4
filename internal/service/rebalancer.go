package service

import (
	"context"
	"log"
	"time"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// RebalancePolicy selects how the sweep treats capacity on the
// absorbing sail.
type RebalancePolicy string

const (
	// PolicyLegacyBypass moves late bookings onto the next sail
	// without re-checking its capacity.  Phone customers who showed
	// up late are boarded even if that oversubscribes the target;
	// the crew resolves it at the dock.
	PolicyLegacyBypass RebalancePolicy = "legacy_bypass"

	// PolicyStrictRecheck moves bookings only when the absorbing
	// sail has room for every transferred passenger; otherwise the
	// late sail is marked delayed and left in place.
	PolicyStrictRecheck RebalancePolicy = "strict_recheck"
)

// SweepResult summarizes one rebalancer pass.
type SweepResult struct {
	Scanned     int      `json:"scanned"`
	Transferred []uint64 `json:"transferred_sail_ids"`
	Delayed     []uint64 `json:"delayed_sail_ids"`
	Skipped     []uint64 `json:"skipped_sail_ids"`
}

// Rebalancer folds sails that are past the lateness threshold and
// still have phone bookings into the boat's next departure.  Sails
// without phone bookings are never touched; walk-in no-shows simply
// lapse.
type Rebalancer struct {
	store     repository.Store
	notify    Notifier
	policy    RebalancePolicy
	loc       *time.Location
	threshold time.Duration
	now       func() time.Time
}

// NewRebalancer returns a Rebalancer.  An empty policy defaults to
// PolicyLegacyBypass.
func NewRebalancer(store repository.Store, notify Notifier, policy RebalancePolicy, loc *time.Location, threshold time.Duration, now func() time.Time) *Rebalancer {
	if now == nil {
		now = time.Now
	}
	if notify == nil {
		notify = NopNotifier{}
	}
	if policy == "" {
		policy = PolicyLegacyBypass
	}
	return &Rebalancer{store: store, notify: notify, policy: policy, loc: loc, threshold: threshold, now: now}
}

// Sweep runs one rebalancing pass over today's overdue sails.  A
// failure on one sail is logged and skipped; the rest of the batch
// still runs.
func (r *Rebalancer) Sweep(ctx context.Context) (*SweepResult, error) {
	overdue, err := r.overdueCandidates(ctx)
	if err != nil {
		return nil, err
	}

	res := &SweepResult{Scanned: len(overdue)}
	for i := range overdue {
		sail := &overdue[i]
		outcome, err := r.rebalanceOne(ctx, sail)
		if err != nil {
			log.Printf("rebalancer: sail %d: %v", sail.ID, err)
			res.Skipped = append(res.Skipped, sail.ID)
			continue
		}
		switch outcome {
		case model.StatusTransferredLate:
			res.Transferred = append(res.Transferred, sail.ID)
		case model.StatusDelayed:
			res.Delayed = append(res.Delayed, sail.ID)
		}
	}
	if len(res.Transferred) > 0 || len(res.Delayed) > 0 {
		r.notify.SailsChanged(ctx, "rebalance")
	}
	return res, nil
}

// rebalanceOne handles a single overdue sail inside its own
// transaction and reports the status it ended up in.
func (r *Rebalancer) rebalanceOne(ctx context.Context, sail *model.SailOccupancy) (model.SailStatus, error) {
	target, err := r.nextSailOnBoat(ctx, sail)
	if err != nil {
		return "", err
	}

	var outcome model.SailStatus
	err = r.store.ExecTx(ctx, func(tx repository.Tx) error {
		// Re-read under lock: a skipper may have started or a
		// previous sweep transferred this sail since the scan.
		locked, err := tx.SailWithOccupancyForUpdate(ctx, sail.ID)
		if err != nil {
			return err
		}
		if locked.ActualStartTime != nil || locked.Status.Terminal() || locked.Status == model.StatusTransferredLate {
			outcome = locked.Status
			return nil
		}

		if target == nil {
			// Already marked delayed on a previous sweep; nothing new
			// to record or announce.
			if locked.Status == model.StatusDelayed {
				return nil
			}
			outcome = model.StatusDelayed
			return tx.UpdateSailStatus(ctx, sail.ID, model.StatusDelayed, nil)
		}

		if r.policy == PolicyStrictRecheck {
			dst, err := tx.SailWithOccupancyForUpdate(ctx, target.ID)
			if err != nil {
				return err
			}
			left := model.RemainingCapacity(dst, locked.HasUnder16)
			if !left.Admits(locked.Occupancy.Activity, locked.Occupancy.OnBoard()) {
				if locked.Status == model.StatusDelayed {
					return nil
				}
				outcome = model.StatusDelayed
				return tx.UpdateSailStatus(ctx, sail.ID, model.StatusDelayed, nil)
			}
		}

		if _, err := tx.ReassignBookings(ctx, sail.ID, target.ID); err != nil {
			return err
		}
		outcome = model.StatusTransferredLate
		return tx.UpdateSailStatus(ctx, sail.ID, model.StatusTransferredLate, &target.ID)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// overdueCandidates lists today's sails whose planned start is at
// least threshold in the past and that still hold phone bookings.
// Shortly after midnight the cutoff still falls on the previous day,
// so none of today's sails can qualify yet; without this guard the
// clock-face cutoff would wrap to ~23:xx and match the whole day.
func (r *Rebalancer) overdueCandidates(ctx context.Context) ([]model.SailOccupancy, error) {
	now := r.now().In(r.loc)
	cut := now.Add(-r.threshold)
	if cut.Format(model.DateFormat) != now.Format(model.DateFormat) {
		return nil, nil
	}
	return r.store.OverdueSails(ctx, now.Format(model.DateFormat), model.ClockOf(cut))
}

// nextSailOnBoat finds the earliest later pending sail for the same
// activity and population on the same boat and day, excluding private
// groups.
func (r *Rebalancer) nextSailOnBoat(ctx context.Context, sail *model.SailOccupancy) (*model.SailOccupancy, error) {
	sails, err := r.store.SailsForBoatDay(ctx, sail.BoatID, sail.Date)
	if err != nil {
		return nil, err
	}
	now := r.now()
	for i := range sails {
		c := &sails[i]
		if c.ID == sail.ID || c.IsPrivateGroup {
			continue
		}
		if c.PlannedStartTime <= sail.PlannedStartTime {
			continue
		}
		if c.ActivityID != sail.ActivityID || c.PopulationTypeID != sail.PopulationTypeID {
			continue
		}
		if c.DerivedStatus(now, r.threshold, r.loc) == model.StatusPending {
			return c, nil
		}
	}
	return nil, nil
}

// Revert undoes a late transfer: every booking currently on the
// absorbing sail moves back and the sail returns to pending.  Note
// this deliberately moves all of the absorbing sail's bookings, not
// just the transferred ones; it restores the pre-transfer state only
// when the absorbing sail had no bookings of its own.
func (r *Rebalancer) Revert(ctx context.Context, sailID uint64) (*SweepResult, error) {
	var moved int64
	err := r.store.ExecTx(ctx, func(tx repository.Tx) error {
		sail, err := tx.SailByID(ctx, sailID)
		if err != nil {
			return err
		}
		if sail.Status != model.StatusTransferredLate || sail.TransferredToSailID == nil {
			return repository.ErrNotTransferable
		}
		moved, err = tx.ReassignBookings(ctx, *sail.TransferredToSailID, sailID)
		if err != nil {
			return err
		}
		return tx.UpdateSailStatus(ctx, sailID, model.StatusPending, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("rebalancer: reverted sail %d, %d bookings moved back", sailID, moved)
	r.notify.SailsChanged(ctx, "rebalance_revert")
	return &SweepResult{Scanned: 1, Transferred: []uint64{sailID}}, nil
}

// LateSails lists today's sails currently past the lateness threshold
// with phone bookings, i.e. the candidates the next sweep would act
// on.
func (r *Rebalancer) LateSails(ctx context.Context) ([]model.SailOccupancy, error) {
	return r.overdueCandidates(ctx)
}

// Run blocks and sweeps on the given interval until ctx is cancelled.
func (r *Rebalancer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				log.Printf("rebalancer: sweep failed: %v", err)
			}
		}
	}
}

package service

import (
	"context"
	"time"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/repository"
)

// TransitionResult carries the sail after a lifecycle transition plus
// the boat's next upcoming sail, so the crew display can advance in a
// single round trip.
type TransitionResult struct {
	Sail     SailView  `json:"sail"`
	NextSail *SailView `json:"next_sail,omitempty"`
}

// Lifecycle records departures and returns.  Both transitions stamp
// the wall clock at call time; neither accepts a client-supplied
// timestamp.
type Lifecycle struct {
	store     repository.Store
	notify    Notifier
	dashboard *Dashboard
	loc       *time.Location
	now       func() time.Time
}

// NewLifecycle returns a Lifecycle.  now is injectable for tests.
func NewLifecycle(store repository.Store, notify Notifier, dashboard *Dashboard, loc *time.Location, now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Lifecycle{store: store, notify: notify, dashboard: dashboard, loc: loc, now: now}
}

// Start marks a sail as departed.  Fails with
// repository.ErrAlreadyStarted when the sail already has an actual
// start time recorded.
func (l *Lifecycle) Start(ctx context.Context, sailID uint64) (*TransitionResult, error) {
	at := model.ClockOf(l.now().In(l.loc))
	err := l.store.ExecTx(ctx, func(tx repository.Tx) error {
		sail, err := tx.SailByID(ctx, sailID)
		if err != nil {
			return err
		}
		if sail.ActualStartTime != nil {
			return repository.ErrAlreadyStarted
		}
		if sail.Status.Terminal() {
			return repository.ErrAlreadyEnded
		}
		return tx.SetActualStart(ctx, sailID, at)
	})
	if err != nil {
		return nil, err
	}
	l.notify.SailsChanged(ctx, "sail_started")
	return l.result(ctx, sailID)
}

// End marks a sail as returned.  Fails with repository.ErrNotStarted
// when the sail never departed and repository.ErrAlreadyEnded when it
// already has an end time.
func (l *Lifecycle) End(ctx context.Context, sailID uint64) (*TransitionResult, error) {
	at := model.ClockOf(l.now().In(l.loc))
	err := l.store.ExecTx(ctx, func(tx repository.Tx) error {
		sail, err := tx.SailByID(ctx, sailID)
		if err != nil {
			return err
		}
		if sail.ActualStartTime == nil {
			return repository.ErrNotStarted
		}
		if sail.EndTime != nil {
			return repository.ErrAlreadyEnded
		}
		return tx.SetEndTime(ctx, sailID, at)
	})
	if err != nil {
		return nil, err
	}
	l.notify.SailsChanged(ctx, "sail_ended")
	return l.result(ctx, sailID)
}

// result re-reads the sail and looks up the boat's next live sail for
// the same day.
func (l *Lifecycle) result(ctx context.Context, sailID uint64) (*TransitionResult, error) {
	updated, err := l.dashboard.SailDetails(ctx, sailID)
	if err != nil {
		return nil, err
	}
	res := &TransitionResult{Sail: *updated}
	sails, err := l.store.SailsForBoatDay(ctx, updated.BoatID, updated.Date)
	if err != nil {
		return nil, err
	}
	for i := range sails {
		if sails[i].ID == sailID {
			continue
		}
		st := sails[i].DerivedStatus(l.now(), l.dashboard.threshold, l.loc)
		if st == model.StatusPending || st == model.StatusDelayed || st == model.StatusLate {
			v := l.dashboard.view(&sails[i])
			v.Next = true
			res.NextSail = &v
			break
		}
	}
	return res, nil
}

package service

import "context"

// Notifier receives the single fire-and-forget "sails changed" event.
// There is no payload contract beyond the reason tag; consumers are
// expected to re-fetch whatever views they render.  Implementations
// must not fail the calling operation: by the time a notification
// fires, the state change has already committed.
type Notifier interface {
	SailsChanged(ctx context.Context, reason string)
}

// NopNotifier discards notifications; used in tests and when the
// broker is disabled.
type NopNotifier struct{}

func (NopNotifier) SailsChanged(context.Context, string) {}

// Package queue carries schedule-change fanout over RabbitMQ: the
// services publish a sails.updated message after every committed
// change and a background consumer feeds dock displays and the audit
// log.
package queue

// SailsUpdatedEvent tells consumers that the sail schedule changed and
// they should re-fetch.  It deliberately carries no sail payload:
// reads always go back to the database so a stale or reordered
// message can never show wrong seat counts.
type SailsUpdatedEvent struct {
	Reason string `json:"reason"`
	At     string `json:"at"`
}

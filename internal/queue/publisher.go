package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const sailsQueueName = "sails.updated"

// Publisher publishes SailsUpdatedEvent messages.  It satisfies the
// service layer's Notifier interface.  A broker outage must never
// fail a committed booking, so SailsChanged logs and swallows every
// error.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// SailsChanged publishes one sails.updated message.  The connection is
// opened per publish; schedule changes are far too rare for pooling to
// matter, and it keeps the publisher free of reconnect state.
func (p *Publisher) SailsChanged(ctx context.Context, reason string) {
	if err := p.publish(ctx, reason); err != nil {
		log.Printf("rabbitmq: publish sails.updated failed: %v", err)
	}
}

func (p *Publisher) publish(ctx context.Context, reason string) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(sailsQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(SailsUpdatedEvent{
		Reason: reason,
		At:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",             // default exchange
		sailsQueueName, // routing key = queue name
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

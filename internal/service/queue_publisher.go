// Package queue_publisher publishes domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow: a failed publish never
// rolls back the booking or transition that triggered it.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/salon-booking/internal/model"
	q "github.com/iliyamo/salon-booking/internal/queue"
)

// Publisher implements the event hooks of the booking package over
// RabbitMQ. Connections are dialed per publish; lifecycle events are
// rare enough (a handful per booking) that connection churn is
// preferable to holding broker state in the request path.
type Publisher struct{}

func New() *Publisher { return &Publisher{} }

// publish declares the durable queue (idempotent) and sends one
// persistent JSON message to it via the default exchange.
func publish(queueName string, event interface{}) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// AppointmentBooked publishes the booked event for a committed
// appointment.
func (p *Publisher) AppointmentBooked(a *model.Appointment) error {
	return publish(q.BookedQueue, q.AppointmentBookedEvent{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		ClientID:      a.ClientID,
		StaffID:       a.StaffID,
		ServiceID:     a.ServiceID,
		StartsAt:      a.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        a.EndsAt.UTC().Format(time.RFC3339),
		Source:        a.Source,
		PriceCents:    a.PriceCents,
		BookedAt:      time.Now().UTC().Format(time.RFC3339),
	})
}

// AppointmentStatusChanged publishes a lifecycle transition event.
// The appointment already carries the new status; from names the
// status it left.
func (p *Publisher) AppointmentStatusChanged(a *model.Appointment, from model.AppointmentStatus) error {
	return publish(q.StatusChangedQueue, q.AppointmentStatusChangedEvent{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		ClientID:      a.ClientID,
		StaffID:       a.StaffID,
		From:          string(from),
		To:            string(a.Status),
		StartsAt:      a.StartsAt.UTC().Format(time.RFC3339),
		PriceCents:    a.PriceCents,
		ChangedAt:     time.Now().UTC().Format(time.RFC3339),
	})
}

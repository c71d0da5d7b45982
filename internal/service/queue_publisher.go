// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers on the request path can drop them without
// failing the request.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/movie-ticketing/internal/queue"
)

// PublishOrderConfirmed pushes an OrderConfirmedEvent onto the
// "order.confirmed" queue. The queue is declared durable and the message
// persistent, so confirmations survive a broker restart. A short-lived
// connection per publish keeps the happy path simple; order volume does
// not justify a pooled channel here.
func PublishOrderConfirmed(ctx context.Context, event q.OrderConfirmedEvent) error {
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

	if _, err := ch.QueueDeclare("order.confirmed", true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", "order.confirmed", false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

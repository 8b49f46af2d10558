package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultQueueName = "booking.notifications"

// Publisher delivers notifications to RabbitMQ. It is fire-and-forget from
// the caller's point of view: any error is logged and returned so the caller
// can ignore it without interrupting the request flow.
type Publisher struct {
	URL       string
	QueueName string
}

func (p Publisher) queue() string {
	if p.QueueName != "" {
		return p.QueueName
	}
	return defaultQueueName
}

// Publish pushes one notification onto a durable queue with persistent
// delivery. The queue declare is idempotent.
func (p Publisher) Publish(ctx context.Context, n Notification) error {
	conn, err := amqp.Dial(p.URL)
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

	if _, err := ch.QueueDeclare(
		p.queue(),
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(n)
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

	if err := ch.PublishWithContext(ctx, "", p.queue(), false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

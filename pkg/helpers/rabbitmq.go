package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitQueue wraps an AMQP channel bound to one durable queue. The API
// publishes reset emails onto it and the email worker consumes them.
type RabbitQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
	// A Requeue outcome is republished after attempt*RetryDelay, at most
	// MaxRetries times; after that the message is rejected.
	MaxRetries int
	RetryDelay time.Duration
}

// RetryHeader counts how many times a message has been republished.
const RetryHeader = "x-retry-count"

func NewRabbitQueue(url, queue string) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitQueue{conn: conn, ch: ch, Queue: queue, MaxRetries: 5, RetryDelay: 2 * time.Second}, nil
}

func (q *RabbitQueue) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// PublishJSON publishes a persistent JSON message through the default exchange.
func (q *RabbitQueue) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx,
		"",      // default exchange
		q.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Delivery outcome returned by a ConsumeFunc.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Discard
)

type ConsumeFunc func(ctx context.Context, body []byte) Outcome

// Consume delivers messages to fn until ctx is cancelled or the channel closes.
// prefetch bounds the number of unacknowledged messages in flight.
func (q *RabbitQueue) Consume(ctx context.Context, prefetch int, fn ConsumeFunc) error {
	if err := q.ch.Qos(prefetch, 0, false); err != nil {
		return err
	}
	msgs, err := q.ch.ConsumeWithContext(ctx, q.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("amqp delivery channel closed")
			}
			switch fn(ctx, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Requeue:
				q.retry(ctx, msg)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}
}

// retry republishes msg with an incremented RetryHeader after a linear
// backoff, or rejects it once MaxRetries is spent.
func (q *RabbitQueue) retry(ctx context.Context, msg amqp.Delivery) {
	attempt := retryCount(msg.Headers) + 1
	if attempt > q.MaxRetries {
		_ = msg.Nack(false, false)
		return
	}
	select {
	case <-ctx.Done():
		_ = msg.Nack(false, true)
		return
	case <-time.After(time.Duration(attempt) * q.RetryDelay):
	}
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[RetryHeader] = int32(attempt)
	err := q.ch.PublishWithContext(ctx, "", q.Queue, false, false, amqp.Publishing{
		ContentType:  msg.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Headers:      headers,
		Body:         msg.Body,
	})
	if err != nil {
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func retryCount(h amqp.Table) int {
	switch v := h[RetryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

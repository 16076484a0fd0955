package mailer

import (
	"context"
	"fmt"
)

// Publisher puts a JSON payload on a queue. helpers.RabbitQueue satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands messages to the email worker instead of calling Mailgun
// inline. A successful Send means the job was accepted by the broker.
type QueueSender struct {
	pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{pub: pub}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := q.pub.PublishJSON(ctx, NewEmailJob(msg)); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

var _ Sender = (*QueueSender)(nil)

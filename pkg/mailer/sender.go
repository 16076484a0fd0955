package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Message is a single outgoing email. HTML is optional; Body is always sent as
// the plain-text part.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    string
	// ExpiresAt is when the content stops being useful. Zero means never.
	ExpiresAt time.Time
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages. It is used when MAIL_SEND_ENABLED=false.
type LogSender struct {
	Logger *logrus.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("mail sending disabled; message dropped")
	logger.WithField("to", msg.To).Debug(msg.Body)
	return nil
}

package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/pkg/helpers"
)

// Worker turns queued EmailJobs into real deliveries.
type Worker struct {
	Sender  Sender
	Logger  *logrus.Logger
	Timeout time.Duration

	now func() time.Time
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger, Timeout: 15 * time.Second, now: time.Now}
}

// Handle decodes one job and sends it. Malformed and expired jobs are
// discarded; delivery failures are handed back for a delayed retry.
func (w *Worker) Handle(ctx context.Context, body []byte) helpers.Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("discarding malformed email job")
		return helpers.Discard
	}
	if job.Expired(w.now()) {
		w.Logger.WithField("to", job.To).Warn("discarding expired email job")
		return helpers.Discard
	}

	c, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	if err := w.Sender.Send(c, job.Message()); err != nil {
		if errors.Is(err, ErrNoRecipient) {
			w.Logger.Warn("discarding email job without recipient")
			return helpers.Discard
		}
		w.Logger.WithError(err).WithField("to", job.To).Error("email send failed; retrying")
		return helpers.Requeue
	}
	w.Logger.WithField("to", job.To).Info("email sent")
	return helpers.Ack
}

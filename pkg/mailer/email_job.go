package mailer

import "time"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is the plain-text fallback; HTML is optional.
type EmailJob struct {
	To        string     `json:"to"`
	Subject   string     `json:"subject,omitempty"`
	Text      string     `json:"text,omitempty"`
	HTML      string     `json:"html,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func NewEmailJob(msg Message) EmailJob {
	job := EmailJob{To: msg.To, Subject: msg.Subject, Text: msg.Body, HTML: msg.HTML}
	if !msg.ExpiresAt.IsZero() {
		at := msg.ExpiresAt.UTC()
		job.ExpiresAt = &at
	}
	return job
}

func (j EmailJob) Message() Message {
	msg := Message{To: j.To, Subject: j.Subject, Body: j.Text, HTML: j.HTML}
	if j.ExpiresAt != nil {
		msg.ExpiresAt = *j.ExpiresAt
	}
	return msg
}

// Expired reports whether the job is no longer worth delivering at now.
func (j EmailJob) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && !now.Before(*j.ExpiresAt)
}

package templates

import (
	"time"
)

type Option func(*EmailData)

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// WithValidFor sets the human readable lifetime, e.g. "10 minutes".
func WithValidFor(dur time.Duration) Option {
	return func(d *EmailData) { d.ValidForMinutes = int(dur.Minutes()) }
}

func NewBaseEmailData(appName, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:    name,
		Email:   email,
		Type:    typ,
		AppName: appName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewForgotPasswordData(appName, name, email, resetURL string, opts ...Option) EmailData {
	d := NewBaseEmailData(appName, ForgotPassword, name, email, opts...)
	d.ResetURL = resetURL
	return d
}

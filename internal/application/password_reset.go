package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-image-share/internal/domain/repository"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/mailer"
	"github.com/oksasatya/go-image-share/pkg/mailer/templates"
)

// ResetPath is the public route a reset link points at; the token is appended.
const ResetPath = "/api/v1/users/resetPassword/"

// MsgResetSent is returned for every successful reset request.
const MsgResetSent = "Token sent to email!"

type PasswordResetService struct {
	Auth    *AuthService
	Mail    mailer.Sender
	AppName string
	// BaseURL is the configured public origin; reset links never use the request Host.
	BaseURL string
	TTL     time.Duration
	// HideUnknownEmail answers unknown addresses like known ones instead of NotFound.
	HideUnknownEmail bool
	Logger           *logrus.Logger

	now func() time.Time
}

func NewPasswordResetService(auth *AuthService, mail mailer.Sender, appName, baseURL string, ttl time.Duration, hideUnknown bool) *PasswordResetService {
	return &PasswordResetService{
		Auth:             auth,
		Mail:             mail,
		AppName:          appName,
		BaseURL:          strings.TrimRight(baseURL, "/"),
		TTL:              ttl,
		HideUnknownEmail: hideUnknown,
		Logger:           auth.Logger,
		now:              time.Now,
	}
}

// RequestReset stores a fresh reset token for email and mails a link under
// BaseURL. If the mail cannot be sent the token is withdrawn again.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return validationError(map[string]string{"email": "is required"})
	}
	users := s.Auth.Users

	u, err := users.GetByEmail(ctx, email)
	if err == nil && !u.Active {
		err = repo.ErrNotFound
	}
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return internalError(err)
		}
		if s.HideUnknownEmail {
			s.Logger.WithField("email", email).Info("reset requested for unknown email")
			return nil
		}
		return newError(KindNotFound, "There is no user with that email address.")
	}

	plain, hash, err := helpers.GenerateResetToken()
	if err != nil {
		return internalError(err)
	}
	expiresAt := s.now().Add(s.TTL)
	u.SetResetToken(hash, expiresAt)
	if err := users.Save(ctx, u, repo.SaveOptions{SkipValidation: true}); err != nil {
		return internalError(err)
	}

	resetURL := s.BaseURL + ResetPath + plain
	sendErr := s.send(ctx, u.Name, u.Email, resetURL, expiresAt)
	if sendErr == nil {
		return nil
	}

	s.Logger.WithError(sendErr).WithField("user_id", u.ID).Error("reset email failed, rolling back token")
	u.ClearResetToken()
	if err := users.Save(ctx, u, repo.SaveOptions{SkipValidation: true}); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset token rollback failed")
	}
	return &AppError{Kind: KindEmailDeliveryFailed, Message: MsgEmailFailed, Err: sendErr}
}

func (s *PasswordResetService) send(ctx context.Context, name, email, resetURL string, expiresAt time.Time) error {
	data := templates.NewForgotPasswordData(s.AppName, name, email, resetURL,
		templates.WithExpiresAt(expiresAt), templates.WithValidFor(s.TTL))
	subject, text, html, err := templates.Render(templates.ForgotPassword, data)
	if err != nil {
		return err
	}
	return s.Mail.Send(ctx, mailer.Message{To: email, Subject: subject, Body: text, HTML: html, ExpiresAt: expiresAt})
}

type ResetPasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ConsumeReset sets a new password for the holder of plainToken and logs them in.
// Unknown and expired tokens are indistinguishable to the caller.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, plainToken string, in ResetPasswordInput) (*AuthResult, error) {
	invalid := newError(KindInvalidOrExpiredToken, MsgResetTokenInvalid)
	if plainToken == "" {
		return nil, invalid
	}
	users := s.Auth.Users

	u, err := users.FindByResetToken(ctx, helpers.HashResetToken(plainToken), s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalid
		}
		return nil, internalError(err)
	}
	if err := s.Auth.replacePassword(ctx, u, in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	u.ClearResetToken()
	if err := users.Save(ctx, u, repo.SaveOptions{}); err != nil {
		return nil, internalError(err)
	}
	s.Logger.WithField("user_id", u.ID).Info("password reset completed")
	return s.Auth.issue(u)
}

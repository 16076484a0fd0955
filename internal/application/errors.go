package application

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindInvalidOrExpiredToken
	KindEmailDeliveryFailed
	KindPasswordMismatch
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindInvalidOrExpiredToken:
		return "InvalidOrExpiredToken"
	case KindEmailDeliveryFailed:
		return "EmailDeliveryFailed"
	case KindPasswordMismatch:
		return "PasswordMismatch"
	default:
		return "Internal"
	}
}

// AppError is the only error type services hand to the HTTP layer.
// Message is safe to show to clients; Err is for logs only.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so the sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation            = &AppError{Kind: KindValidation}
	ErrInvalidCredentials    = &AppError{Kind: KindInvalidCredentials}
	ErrUnauthenticated       = &AppError{Kind: KindUnauthenticated}
	ErrUnauthorized          = &AppError{Kind: KindUnauthorized}
	ErrNotFound              = &AppError{Kind: KindNotFound}
	ErrInvalidOrExpiredToken = &AppError{Kind: KindInvalidOrExpiredToken}
	ErrEmailDeliveryFailed   = &AppError{Kind: KindEmailDeliveryFailed}
	ErrPasswordMismatch      = &AppError{Kind: KindPasswordMismatch}
	ErrInternal              = &AppError{Kind: KindInternal}
)

// Client facing messages. Login and guard failures must not reveal whether
// an account exists.
const (
	MsgInvalidCredentials = "Incorrect email/username or password"
	MsgNotLoggedIn        = "You are not logged in! Please log in to get access."
	MsgPasswordChanged    = "User recently changed password! Please log in again."
	MsgNoPermission       = "You do not have permission to perform this action"
	MsgResetTokenInvalid  = "Token is invalid or has expired"
	MsgPasswordMismatch   = "Password and Confirm Password Fields do not match"
	MsgEmailFailed        = "There was an error sending the email. Try again later!"
	MsgInternal           = "Something went wrong"
)

func newError(kind Kind, msg string) *AppError {
	return &AppError{Kind: kind, Message: msg}
}

func validationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "Invalid input data", Fields: fields}
}

func internalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// AsAppError normalises any error into an AppError; unknown errors become Internal.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return internalError(err)
}

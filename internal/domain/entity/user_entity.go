package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultProfileImage is used until the user uploads a picture.
const DefaultProfileImage = "default.jpg"

// User is the aggregate root for the user domain and doubles as the credential
// record. PasswordHash holds a bcrypt hash and is never serialized.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     *string    `json:"username,omitempty"`
	Name         string     `json:"name"`
	DateOfBirth  time.Time  `json:"dateOfBirth"`
	Phone        string     `json:"phone,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	ProfileImage string     `json:"profileImage"`
	DateJoined   time.Time  `json:"dateJoined"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`

	PasswordChangedAt           *time.Time `json:"-"`
	PasswordResetTokenHash      *string    `json:"-"`
	PasswordResetTokenExpiresAt *time.Time `json:"-"`
}

// SetResetToken stores the hash of an outstanding reset token together with its expiry.
func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	u.PasswordResetTokenHash = &hash
	u.PasswordResetTokenExpiresAt = &expiresAt
}

// ClearResetToken drops any pending reset state.
func (u *User) ClearResetToken() {
	u.PasswordResetTokenHash = nil
	u.PasswordResetTokenExpiresAt = nil
}

// HasPendingReset reports whether a reset token is outstanding and not yet expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetTokenExpiresAt != nil &&
		u.PasswordResetTokenExpiresAt.After(now)
}

// ReplacePassword swaps in a new hash and stamps PasswordChangedAt one second
// in the past, so a token issued right after the change is still accepted.
func (u *User) ReplacePassword(hash string, now time.Time) {
	u.PasswordHash = hash
	changed := now.Add(-time.Second)
	u.PasswordChangedAt = &changed
}

// ErrInvalidUser is returned by Validate when a required field is missing.
var ErrInvalidUser = errors.New("invalid user record")

// Validate checks the constraints every persisted user must satisfy.
func (u *User) Validate() error {
	switch {
	case strings.TrimSpace(u.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	case strings.TrimSpace(u.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	case u.DateOfBirth.IsZero():
		return fmt.Errorf("%w: date of birth is required", ErrInvalidUser)
	case u.PasswordHash == "":
		return fmt.Errorf("%w: password hash is required", ErrInvalidUser)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// DuplicateError names the unique column that rejected a write.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return e.Field + " already in use" }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// SaveOptions tunes a full-record save.
type SaveOptions struct {
	// SkipValidation persists the record without re-checking profile constraints.
	// Used when only reset-token bookkeeping changed.
	SkipValidation bool
}

// ProfileUpdate enumerates the profile columns a user may change. Nil means unchanged.
type ProfileUpdate struct {
	Name         *string
	Username     *string
	DateOfBirth  *time.Time
	Bio          *string
	Phone        *string
	ProfileImage *string
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*entity.User, error)
	// FindByResetToken returns the user whose reset hash matches and whose expiry is after now.
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	Save(ctx context.Context, u *entity.User, opts SaveOptions) error
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Delete(ctx context.Context, id string) error
}

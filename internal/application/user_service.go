package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	repo "github.com/oksasatya/go-image-share/internal/domain/repository"
	"github.com/oksasatya/go-image-share/internal/infrastructure/storage"
	"github.com/oksasatya/go-image-share/pkg/validation"
)

// Upload is one file received from a multipart form.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IsImage reports whether the declared content type is image/*.
func (u Upload) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(u.ContentType), "image/")
}

type UserService struct {
	Users   repo.UserRepository
	Storage storage.ObjectStorage
	Logger  *logrus.Logger
}

func NewUserService(users repo.UserRepository, store storage.ObjectStorage, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserService{Users: users, Storage: store, Logger: logger}
}

// UpdateProfileInput lists every field a user may change about themselves.
// Nil pointers are left untouched.
type UpdateProfileInput struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Username    *string    `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty" validate:"omitempty,pastdate"`
	Bio         *string    `json:"bio,omitempty" validate:"omitempty,max=500"`
	Phone       *string    `json:"phone,omitempty" validate:"omitempty,phone"`
}

// forbiddenProfileFields must go through their dedicated flows.
var forbiddenProfileFields = map[string]string{
	"password":        "This route is not for password updates. Please use /updateMyPassword.",
	"confirmPassword": "This route is not for password updates. Please use /updateMyPassword.",
	"email":           "Email cannot be changed.",
}

// CheckProfileFields rejects request keys that a profile update may not carry.
func CheckProfileFields(keys []string) error {
	fields := map[string]string{}
	for _, k := range keys {
		if msg, ok := forbiddenProfileFields[k]; ok {
			fields[k] = msg
		}
	}
	if len(fields) > 0 {
		return validationError(fields)
	}
	return nil
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return users, nil
}

// UpdateMe applies in to the caller's profile. A non-nil picture replaces the
// profile image, always stored under the same key.
func (s *UserService) UpdateMe(ctx context.Context, userID string, in UpdateProfileInput, picture *Upload) (*entity.User, error) {
	if fields := validation.Struct(in); fields != nil {
		return nil, validationError(fields)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError(map[string]string{"name": "is required"})
		}
		in.Name = &name
	}

	upd := repo.ProfileUpdate{
		Name:        in.Name,
		Username:    in.Username,
		DateOfBirth: in.DateOfBirth,
		Bio:         in.Bio,
		Phone:       in.Phone,
	}
	if picture != nil {
		if !picture.IsImage() {
			return nil, validationError(map[string]string{"file": "Not an image! Please upload only images."})
		}
		url, err := s.Storage.Put(ctx, storage.ProfileImageKey(userID), picture.Body, picture.Size, picture.ContentType)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("profile image upload failed")
			return nil, internalError(err)
		}
		upd.ProfileImage = &url
	}

	u, err := s.Users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		var dup *repo.DuplicateError
		switch {
		case errors.As(err, &dup):
			return nil, validationError(map[string]string{dup.Field: "already in use"})
		case errors.Is(err, repo.ErrNotFound):
			return nil, newError(KindNotFound, "No user found with that ID")
		}
		return nil, internalError(err)
	}
	return u, nil
}

// DeleteMe deactivates the caller's account; the row is kept.
func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(KindNotFound, "No user found with that ID")
		}
		return internalError(err)
	}
	u.Active = false
	if err := s.Users.Save(ctx, u, repo.SaveOptions{SkipValidation: true}); err != nil {
		return internalError(err)
	}
	s.Logger.WithField("user_id", userID).Info("account deactivated")
	return nil
}

// UpdateByID is the id-addressed variant of UpdateMe; callers may only target themselves.
func (s *UserService) UpdateByID(ctx context.Context, callerID, id string, in UpdateProfileInput) (*entity.User, error) {
	if callerID != id {
		return nil, newError(KindUnauthorized, MsgNoPermission)
	}
	return s.UpdateMe(ctx, id, in, nil)
}

// DeleteByID removes the user row permanently; callers may only target themselves.
func (s *UserService) DeleteByID(ctx context.Context, callerID, id string) error {
	if callerID != id {
		return newError(KindUnauthorized, MsgNoPermission)
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(KindNotFound, "No user found with that ID")
		}
		return internalError(err)
	}
	if s.Storage != nil {
		if err := s.Storage.Delete(ctx, storage.ProfileImageKey(id)); err != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("profile image cleanup failed")
		}
	}
	return nil
}

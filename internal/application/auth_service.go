package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	repo "github.com/oksasatya/go-image-share/internal/domain/repository"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/validation"
)

// AuthResult is returned by every operation that logs the user in.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	Users  repo.UserRepository
	Hasher *helpers.PasswordHasher
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{Users: users, Hasher: hasher, JWT: jwt, Logger: logger, now: time.Now}
}

type SignupInput struct {
	Name            string    `json:"name" validate:"required,max=100"`
	Email           string    `json:"email" validate:"required,email"`
	Username        string    `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	DateOfBirth     time.Time `json:"dateOfBirth" validate:"required,pastdate"`
	Phone           string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Bio             string    `json:"bio,omitempty" validate:"max=500"`
	Password        string    `json:"password" validate:"required,pwd"`
	ConfirmPassword string    `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Signup validates the input, stores the new user and logs them in.
// ConfirmPassword is checked here and never reaches the entity.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)

	fields := validation.Struct(in)
	if fields == nil {
		fields = map[string]string{}
	}
	if _, ok := fields["email"]; !ok {
		if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
			fields["email"] = "already in use"
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, internalError(err)
		}
	}
	if _, ok := fields["username"]; !ok && in.Username != "" {
		if _, err := s.Users.GetByEmailOrUsername(ctx, "", in.Username); err == nil {
			fields["username"] = "already in use"
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, internalError(err)
		}
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, internalError(err)
	}
	u := &entity.User{
		Email:        in.Email,
		Name:         in.Name,
		DateOfBirth:  in.DateOfBirth,
		Phone:        in.Phone,
		Bio:          in.Bio,
		PasswordHash: hash,
	}
	if in.Username != "" {
		u.Username = &in.Username
	}
	if err := s.Users.Create(ctx, u); err != nil {
		var dup *repo.DuplicateError
		if errors.As(err, &dup) {
			return nil, validationError(map[string]string{dup.Field: "already in use"})
		}
		s.Logger.WithError(err).WithField("email", u.Email).Error("create user failed")
		return nil, internalError(err)
	}
	return s.issue(u)
}

// Login accepts an email address or a username as identifier. Unknown users
// and wrong passwords fail identically, including the bcrypt work done.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, &AppError{Kind: KindValidation, Message: "Please provide email or username and password"}
	}

	u, err := s.Users.GetByEmailOrUsername(ctx, identifier, identifier)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		u = nil
	case err != nil:
		return nil, internalError(err)
	case !u.Active:
		u = nil
	}

	hash := s.dummy()
	if u != nil {
		hash = u.PasswordHash
	}
	ok, err := s.Hasher.Compare(ctx, hash, password)
	if err != nil {
		return nil, internalError(err)
	}
	if u == nil || !ok {
		return nil, newError(KindInvalidCredentials, MsgInvalidCredentials)
	}
	return s.issue(u)
}

type ChangePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword replaces the password of userID. Tokens issued before the
// change stop passing Authenticate; the caller gets a fresh one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) (*AuthResult, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(KindUnauthenticated, MsgNotLoggedIn)
		}
		return nil, internalError(err)
	}
	ok, err := s.Hasher.Compare(ctx, u.PasswordHash, in.PasswordCurrent)
	if err != nil {
		return nil, internalError(err)
	}
	if !ok {
		return nil, newError(KindInvalidCredentials, "Your current password is wrong")
	}
	if err := s.replacePassword(ctx, u, in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, u, repo.SaveOptions{}); err != nil {
		return nil, internalError(err)
	}
	s.Logger.WithField("user_id", u.ID).Info("password changed")
	return s.issue(u)
}

// replacePassword checks confirmation and length, then hashes into u.
func (s *AuthService) replacePassword(ctx context.Context, u *entity.User, password, confirm string) error {
	if password != confirm {
		return newError(KindPasswordMismatch, MsgPasswordMismatch)
	}
	if len(password) < 8 {
		return validationError(map[string]string{"password": "must be at least 8 characters long"})
	}
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return internalError(err)
	}
	u.ReplacePassword(hash, s.now())
	return nil
}

// Authenticate resolves a bearer token to an active user. Every failure is
// Unauthenticated; only a stale token after a password change gets its own message.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, newError(KindUnauthenticated, MsgNotLoggedIn)
	}
	claims, err := s.JWT.Verify(token)
	if err != nil {
		return nil, &AppError{Kind: KindUnauthenticated, Message: MsgNotLoggedIn, Err: err}
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(KindUnauthenticated, MsgNotLoggedIn)
		}
		return nil, internalError(err)
	}
	if !u.Active {
		return nil, newError(KindUnauthenticated, MsgNotLoggedIn)
	}
	if helpers.InvalidatedBy(claims.IssuedAtUnix(), u.PasswordChangedAt) {
		return nil, newError(KindUnauthenticated, MsgPasswordChanged)
	}
	return u, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, internalError(err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// dummy is a real hash to compare against when the user does not exist.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(context.Background(), "not-a-real-password")
		if err != nil {
			s.Logger.WithError(err).Warn("dummy hash failed")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
)

type stubAuth struct {
	signup     application.SignupInput
	identifier string
	change     application.ChangePasswordInput
	err        error
}

func (s *stubAuth) result(id string) *application.AuthResult {
	return &application.AuthResult{User: &entity.User{ID: id, Email: "jane@example.com"}, Token: "tok-" + id, ExpiresAt: time.Now().Add(time.Hour)}
}

func (s *stubAuth) Signup(_ context.Context, in application.SignupInput) (*application.AuthResult, error) {
	s.signup = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result("new"), nil
}

func (s *stubAuth) Login(_ context.Context, identifier, _ string) (*application.AuthResult, error) {
	s.identifier = identifier
	if s.err != nil {
		return nil, s.err
	}
	return s.result("u1"), nil
}

func (s *stubAuth) ChangePassword(_ context.Context, userID string, in application.ChangePasswordInput) (*application.AuthResult, error) {
	s.change = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(userID), nil
}

type stubReset struct {
	email, token string
	err          error
}

func (s *stubReset) RequestReset(_ context.Context, email string) error {
	s.email = email
	return s.err
}

func (s *stubReset) ConsumeReset(_ context.Context, token string, _ application.ResetPasswordInput) (*application.AuthResult, error) {
	s.token = token
	if s.err != nil {
		return nil, s.err
	}
	return &application.AuthResult{User: &entity.User{ID: "u1"}, Token: "fresh"}, nil
}

type stubUsers struct {
	users     []entity.User
	in        application.UpdateProfileInput
	picture   []byte
	pictureCT string
	callerID  string
	targetID  string
	deletedMe string
	err       error
}

func (s *stubUsers) List(context.Context) ([]entity.User, error) { return s.users, s.err }

func (s *stubUsers) UpdateMe(_ context.Context, userID string, in application.UpdateProfileInput, picture *application.Upload) (*entity.User, error) {
	s.callerID, s.in = userID, in
	if picture != nil {
		s.picture, _ = io.ReadAll(picture.Body)
		s.pictureCT = picture.ContentType
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: userID}, nil
}

func (s *stubUsers) DeleteMe(_ context.Context, userID string) error {
	s.deletedMe = userID
	return s.err
}

func (s *stubUsers) UpdateByID(_ context.Context, callerID, id string, in application.UpdateProfileInput) (*entity.User, error) {
	s.callerID, s.targetID, s.in = callerID, id, in
	if s.err != nil {
		return nil, s.err
	}
	return &entity.User{ID: id}, nil
}

func (s *stubUsers) DeleteByID(_ context.Context, callerID, id string) error {
	s.callerID, s.targetID = callerID, id
	return s.err
}

type stubImages struct {
	in     application.CreateImageInput
	files  []string
	userID string
	id     string
	tag    string
	images []entity.Image
	err    error
}

func (s *stubImages) Create(_ context.Context, userID string, in application.CreateImageInput, files []application.Upload) (*entity.Image, error) {
	s.userID, s.in = userID, in
	for _, f := range files {
		s.files = append(s.files, f.FileName)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Image{ID: "img-1", UserID: userID}, nil
}

func (s *stubImages) ListPublic(context.Context) ([]entity.Image, error) { return s.images, s.err }

func (s *stubImages) SearchByTag(_ context.Context, tag string) ([]entity.Image, error) {
	s.tag = tag
	return s.images, s.err
}

func (s *stubImages) Get(_ context.Context, userID, id string) (*entity.Image, error) {
	s.userID, s.id = userID, id
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Image{ID: id}, nil
}

func (s *stubImages) Delete(_ context.Context, userID, id string) error {
	s.userID, s.id = userID, id
	return s.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// asUser stands in for middleware.Protect.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserKey, &entity.User{ID: id})
		c.Set(middleware.CtxUserIDKey, id)
		c.Next()
	}
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

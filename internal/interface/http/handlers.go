package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/interface/httperr"
	"github.com/oksasatya/go-image-share/internal/interface/middleware"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/response"
)

type AuthService interface {
	Signup(ctx context.Context, in application.SignupInput) (*application.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*application.AuthResult, error)
	ChangePassword(ctx context.Context, userID string, in application.ChangePasswordInput) (*application.AuthResult, error)
}

type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ConsumeReset(ctx context.Context, plainToken string, in application.ResetPasswordInput) (*application.AuthResult, error)
}

type UserService interface {
	List(ctx context.Context) ([]entity.User, error)
	UpdateMe(ctx context.Context, userID string, in application.UpdateProfileInput, picture *application.Upload) (*entity.User, error)
	DeleteMe(ctx context.Context, userID string) error
	UpdateByID(ctx context.Context, callerID, id string, in application.UpdateProfileInput) (*entity.User, error)
	DeleteByID(ctx context.Context, callerID, id string) error
}

type ImageService interface {
	Create(ctx context.Context, userID string, in application.CreateImageInput, files []application.Upload) (*entity.Image, error)
	ListPublic(ctx context.Context) ([]entity.Image, error)
	SearchByTag(ctx context.Context, tag string) ([]entity.Image, error)
	Get(ctx context.Context, userID, id string) (*entity.Image, error)
	Delete(ctx context.Context, userID, id string) error
}

type authPayload struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// writeAuth sets the token cookie and echoes the token in the body.
func writeAuth(c *gin.Context, cookies *helpers.Manager, status int, res *application.AuthResult, msg string) {
	cookies.SetToken(c, res.Token)
	resp := response.Success(c, status, authPayload{Token: res.Token, User: res.User}, msg, gin.H{"expires_at": res.ExpiresAt})
	response.Send(c, resp)
}

func respond[T any](c *gin.Context, status int, data T, msg string, meta any) {
	resp := response.Success(c, status, data, msg, meta)
	response.Send(c, resp)
}

func fail(c *gin.Context, logger *logrus.Logger, err error) {
	httperr.Abort(c, logger, err)
}

func badRequest(fields map[string]string) error {
	return &application.AppError{Kind: application.KindValidation, Message: "Invalid input data", Fields: fields}
}

// currentUserID is only called behind Protect.
func currentUserID(c *gin.Context) string {
	if u, ok := middleware.CurrentUser(c); ok {
		return u.ID
	}
	return ""
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func done(c *gin.Context, msg string) {
	respond[any](c, http.StatusOK, nil, msg, nil)
}

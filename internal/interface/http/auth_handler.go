package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/validation"
)

type AuthHandler struct {
	Auth    AuthService
	Reset   ResetService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(auth AuthService, reset ResetService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Reset: reset, Cookies: cookies, Logger: logger}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	DateOfBirth     string `json:"dateOfBirth"`
	Phone           string `json:"phone"`
	Bio             string `json:"bio"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Signup POST /api/v1/users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, badRequest(validation.ToDetails(err)))
		return
	}
	in := application.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Username:        req.Username,
		Phone:           req.Phone,
		Bio:             req.Bio,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			fail(c, h.Logger, badRequest(map[string]string{"dateOfBirth": "must be a date (YYYY-MM-DD)"}))
			return
		}
		in.DateOfBirth = dob
	}
	res, err := h.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	writeAuth(c, h.Cookies, http.StatusCreated, res, "signed up")
}

// Login POST /api/v1/users/login accepts email or username.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, badRequest(validation.ToDetails(err)))
		return
	}
	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	res, err := h.Auth.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	writeAuth(c, h.Cookies, http.StatusOK, res, "login successful")
}

// Logout POST /api/v1/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	done(c, "logged out")
}

// ForgotPassword POST /api/v1/users/forgotPassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, badRequest(validation.ToDetails(err)))
		return
	}
	if err := h.Reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	done(c, application.MsgResetSent)
}

// ResetPassword PATCH /api/v1/users/resetPassword/:resetToken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req application.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, badRequest(validation.ToDetails(err)))
		return
	}
	res, err := h.Reset.ConsumeReset(c.Request.Context(), c.Param("resetToken"), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	writeAuth(c, h.Cookies, http.StatusOK, res, "password reset")
}

// UpdateMyPassword PATCH /api/v1/users/updateMyPassword
func (h *AuthHandler) UpdateMyPassword(c *gin.Context) {
	var req application.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, badRequest(validation.ToDetails(err)))
		return
	}
	res, err := h.Auth.ChangePassword(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	writeAuth(c, h.Cookies, http.StatusOK, res, "password updated")
}

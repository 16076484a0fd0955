package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
)

type UserHandler struct {
	Users  UserService
	Logger *logrus.Logger
}

func NewUserHandler(users UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

// profileRequest mirrors application.UpdateProfileInput on the wire.
type profileRequest struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	DateOfBirth *string `json:"dateOfBirth"`
	Bio         *string `json:"bio"`
	Phone       *string `json:"phone"`
}

var profileKeys = map[string]bool{"name": true, "username": true, "dateOfBirth": true, "bio": true, "phone": true}

func (r profileRequest) input() (application.UpdateProfileInput, error) {
	in := application.UpdateProfileInput{Name: r.Name, Username: r.Username, Bio: r.Bio, Phone: r.Phone}
	if r.DateOfBirth != nil {
		dob, err := parseDate(*r.DateOfBirth)
		if err != nil {
			return in, badRequest(map[string]string{"dateOfBirth": "must be a date (YYYY-MM-DD)"})
		}
		in.DateOfBirth = &dob
	}
	return in, nil
}

// checkKeys rejects forbidden and unknown profile keys.
func checkKeys(keys []string) error {
	if err := application.CheckProfileFields(keys); err != nil {
		return err
	}
	unknown := map[string]string{}
	for _, k := range keys {
		if !profileKeys[k] {
			unknown[k] = "unknown field"
		}
	}
	if len(unknown) > 0 {
		return badRequest(unknown)
	}
	return nil
}

// decodeProfileJSON reads a JSON profile update, refusing unknown fields.
func decodeProfileJSON(body io.Reader) (application.UpdateProfileInput, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return application.UpdateProfileInput{}, badRequest(map[string]string{"payload": "invalid payload"})
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return application.UpdateProfileInput{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return application.UpdateProfileInput{}, badRequest(map[string]string{"payload": "invalid json"})
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	if err := checkKeys(keys); err != nil {
		return application.UpdateProfileInput{}, err
	}

	var req profileRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return application.UpdateProfileInput{}, badRequest(map[string]string{"payload": "invalid json"})
	}
	return req.input()
}

// decodeProfileForm reads the text fields of a multipart profile update.
func decodeProfileForm(form *multipart.Form) (application.UpdateProfileInput, error) {
	keys := make([]string, 0, len(form.Value))
	for k := range form.Value {
		keys = append(keys, k)
	}
	if err := checkKeys(keys); err != nil {
		return application.UpdateProfileInput{}, err
	}
	get := func(k string) *string {
		if v, ok := form.Value[k]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}
	req := profileRequest{
		Name:        get("name"),
		Username:    get("username"),
		DateOfBirth: get("dateOfBirth"),
		Bio:         get("bio"),
		Phone:       get("phone"),
	}
	return req.input()
}

// List GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"users": users}, "users", gin.H{"results": len(users)})
}

// UpdateMe PATCH /api/v1/users/updateMe, JSON or multipart with an optional "file".
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var (
		in      application.UpdateProfileInput
		picture *application.Upload
		err     error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, ferr := c.MultipartForm()
		if ferr != nil {
			fail(c, h.Logger, badRequest(map[string]string{"payload": "invalid multipart form"}))
			return
		}
		if in, err = decodeProfileForm(form); err != nil {
			fail(c, h.Logger, err)
			return
		}
		if files := form.File["file"]; len(files) > 0 {
			f, oerr := files[0].Open()
			if oerr != nil {
				fail(c, h.Logger, oerr)
				return
			}
			defer func() { _ = f.Close() }()
			picture = &application.Upload{
				FileName:    files[0].Filename,
				ContentType: files[0].Header.Get("Content-Type"),
				Size:        files[0].Size,
				Body:        f,
			}
		}
	} else if in, err = decodeProfileJSON(c.Request.Body); err != nil {
		fail(c, h.Logger, err)
		return
	}

	u, err := h.Users.UpdateMe(c.Request.Context(), currentUserID(c), in, picture)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": u}, "Profile Updated Successfully", nil)
}

// DeleteMe DELETE /api/v1/users/deleteMe
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.Users.DeleteMe(c.Request.Context(), currentUserID(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	done(c, "Your Account Has Been Successfully Deleted")
}

// UpdateUser PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	in, err := decodeProfileJSON(c.Request.Body)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	u, err := h.Users.UpdateByID(c.Request.Context(), currentUserID(c), c.Param("id"), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": u}, "user updated", nil)
}

// DeleteUser DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Users.DeleteByID(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	done(c, "User successfully deleted")
}

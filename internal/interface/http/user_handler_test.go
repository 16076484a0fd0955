package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/internal/domain/entity"
)

func userRouter(users *stubUsers) http.Handler {
	h := NewUserHandler(users, quietLogger())
	r := newEngine()
	r.GET("/users", h.List)
	me := r.Group("", asUser("me"))
	me.PATCH("/users/updateMe", h.UpdateMe)
	me.DELETE("/users/deleteMe", h.DeleteMe)
	me.PATCH("/users/:id", h.UpdateUser)
	me.DELETE("/users/:id", h.DeleteUser)
	return r
}

func TestUserList(t *testing.T) {
	users := &stubUsers{users: []entity.User{{ID: "a"}, {ID: "b"}}}
	w := do(userRouter(users), http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":2`)
}

func TestUpdateMe_JSON(t *testing.T) {
	users := &stubUsers{}
	w := do(userRouter(users), http.MethodPatch, "/users/updateMe", `{"name":"Janet","dateOfBirth":"1991-02-03"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "me", users.callerID)
	require.NotNil(t, users.in.Name)
	assert.Equal(t, "Janet", *users.in.Name)
	require.NotNil(t, users.in.DateOfBirth)
	assert.Equal(t, 1991, users.in.DateOfBirth.Year())
	assert.Nil(t, users.in.Bio)
}

func TestUpdateMe_RejectsPasswordAndEmail(t *testing.T) {
	users := &stubUsers{}
	r := userRouter(users)

	w := do(r, http.MethodPatch, "/users/updateMe", `{"password":"x","confirmPassword":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Contains(t, env.Error["password"], "/updateMyPassword")

	w = do(r, http.MethodPatch, "/users/updateMe", `{"email":"new@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "email")

	w = do(r, http.MethodPatch, "/users/updateMe", `{"role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown field", decode(t, w).Error["role"])

	assert.Empty(t, users.callerID, "service must not be reached")
}

func TestUpdateMe_Multipart(t *testing.T) {
	users := &stubUsers{}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bio", "hello"))
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/users/updateMe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	userRouter(users).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, users.in.Bio)
	assert.Equal(t, "hello", *users.in.Bio)
	assert.Equal(t, []byte("png-bytes"), users.picture)
	assert.Equal(t, "image/png", users.pictureCT)
}

func TestDeleteMe(t *testing.T) {
	users := &stubUsers{}
	w := do(userRouter(users), http.MethodDelete, "/users/deleteMe", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me", users.deletedMe)
}

func TestUpdateAndDeleteByID_PassCaller(t *testing.T) {
	users := &stubUsers{}
	r := userRouter(users)

	w := do(r, http.MethodPatch, "/users/other", `{"bio":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me", users.callerID)
	assert.Equal(t, "other", users.targetID)

	users.err = &application.AppError{Kind: application.KindUnauthorized, Message: application.MsgNoPermission}
	w = do(r, http.MethodDelete, "/users/other", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, application.MsgNoPermission, decode(t, w).Message)
}

package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUsers, *fakeStorage, string) {
	t.Helper()
	users := newFakeUsers()
	res, err := newTestAuth(users).Signup(context.Background(), signupInput())
	require.NoError(t, err)
	store := newFakeStorage()
	return NewUserService(users, store, quietLogger()), users, store, res.User.ID
}

func strp(s string) *string { return &s }

func TestUpdateMe_FieldsAndPicture(t *testing.T) {
	svc, _, store, id := newUserFixture(t)

	pic := &Upload{FileName: "me.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
	u, err := svc.UpdateMe(context.Background(), id, UpdateProfileInput{Name: strp("  Janet "), Bio: strp("hi")}, pic)
	require.NoError(t, err)

	assert.Equal(t, "Janet", u.Name)
	assert.Equal(t, "hi", u.Bio)
	assert.Equal(t, "https://cdn.test/"+id+"/profile/"+id, u.ProfileImage)
	assert.Equal(t, "png", store.objects[id+"/profile/"+id])
}

func TestUpdateMe_Rejections(t *testing.T) {
	svc, _, store, id := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateMe(ctx, id, UpdateProfileInput{Name: strp("   ")}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateMe(ctx, id, UpdateProfileInput{Phone: strp("call me")}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	notImage := &Upload{FileName: "x.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")}
	_, err = svc.UpdateMe(ctx, id, UpdateProfileInput{}, notImage)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.objects)
}

func TestCheckProfileFields(t *testing.T) {
	assert.NoError(t, CheckProfileFields([]string{"name", "bio"}))

	err := CheckProfileFields([]string{"name", "password", "email"})
	require.ErrorIs(t, err, ErrValidation)
	fields := AsAppError(err).Fields
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "name")
}

func TestDeleteMe_SoftDeletes(t *testing.T) {
	svc, users, _, id := newUserFixture(t)

	require.NoError(t, svc.DeleteMe(context.Background(), id))
	stored := users.get(id)
	assert.False(t, stored.Active)
	assert.NotEmpty(t, stored.Email)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestByID_OwnerOnly(t *testing.T) {
	svc, users, store, id := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateByID(ctx, "someone-else", id, UpdateProfileInput{Name: strp("X")})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteByID(ctx, "someone-else", id), ErrUnauthorized)

	u, err := svc.UpdateByID(ctx, id, id, UpdateProfileInput{Name: strp("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", u.Name)

	require.NoError(t, svc.DeleteByID(ctx, id, id))
	_, ok := users.byID[id]
	assert.False(t, ok)
	assert.Contains(t, store.deleted, id+"/profile/"+id)

	assert.ErrorIs(t, svc.DeleteByID(ctx, id, id), ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _, _, id := newUserFixture(t)
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, entity.DefaultProfileImage, list[0].ProfileImage)
}

package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-image-share/pkg/helpers"
)

type resetFixture struct {
	users  *fakeUsers
	mail   *fakeMail
	auth   *AuthService
	svc    *PasswordResetService
	userID string
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	users := newFakeUsers()
	auth := newTestAuth(users)
	res, err := auth.Signup(context.Background(), signupInput())
	require.NoError(t, err)

	mail := &fakeMail{}
	svc := NewPasswordResetService(auth, mail, "go-image-share", "https://img.test/", 10*time.Minute, false)
	return &resetFixture{users: users, mail: mail, auth: auth, svc: svc, userID: res.User.ID}
}

// tokenFromMail extracts the plain token from the last reset link sent.
func (f *resetFixture) tokenFromMail(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.mail.sent)
	body := f.mail.sent[len(f.mail.sent)-1].Body
	i := strings.Index(body, ResetPath)
	require.GreaterOrEqual(t, i, 0)
	rest := body[i+len(ResetPath):]
	return rest[:2*helpers.ResetTokenBytes]
}

func TestRequestReset_StoresHashOnly(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), "JANE@example.com"))
	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Contains(t, msg.Subject, "10 minutes")
	assert.Contains(t, msg.Body, "https://img.test"+ResetPath)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), msg.ExpiresAt, 5*time.Second)

	token := f.tokenFromMail(t)
	stored := f.users.get(f.userID)
	require.NotNil(t, stored.PasswordResetTokenHash)
	require.NotNil(t, stored.PasswordResetTokenExpiresAt)
	assert.NotEqual(t, token, *stored.PasswordResetTokenHash)
	assert.Equal(t, helpers.HashResetToken(token), *stored.PasswordResetTokenHash)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *stored.PasswordResetTokenExpiresAt, 5*time.Second)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.RequestReset(context.Background(), "user@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.mail.sent)

	f.svc.HideUnknownEmail = true
	assert.NoError(t, f.svc.RequestReset(context.Background(), "user@x.com"))
	assert.Empty(t, f.mail.sent)
}

func TestRequestReset_RollsBackWhenMailFails(t *testing.T) {
	f := newResetFixture(t)
	f.mail.err = errors.New("mailgun 503")

	err := f.svc.RequestReset(context.Background(), "jane@example.com")
	require.ErrorIs(t, err, ErrEmailDeliveryFailed)

	stored := f.users.get(f.userID)
	assert.Nil(t, stored.PasswordResetTokenHash)
	assert.Nil(t, stored.PasswordResetTokenExpiresAt)
	require.Len(t, f.users.saves, 2)
	assert.NotNil(t, f.users.saves[0].PasswordResetTokenHash)
}

func TestConsumeReset_LogsInAndIsSingleUse(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "jane@example.com"))
	token := f.tokenFromMail(t)

	in := ResetPasswordInput{Password: "brandnew1", ConfirmPassword: "brandnew1"}
	res, err := f.svc.ConsumeReset(context.Background(), token, in)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, f.userID, res.User.ID)

	stored := f.users.get(f.userID)
	assert.Nil(t, stored.PasswordResetTokenHash)
	assert.Nil(t, stored.PasswordResetTokenExpiresAt)
	require.NotNil(t, stored.PasswordChangedAt)

	_, err = f.auth.Login(context.Background(), "jane@example.com", "brandnew1")
	require.NoError(t, err)

	_, err = f.svc.ConsumeReset(context.Background(), token, in)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestConsumeReset_Expired(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "jane@example.com"))
	token := f.tokenFromMail(t)

	f.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, expired := f.svc.ConsumeReset(context.Background(), token, ResetPasswordInput{Password: "brandnew1", ConfirmPassword: "brandnew1"})
	_, unknown := f.svc.ConsumeReset(context.Background(), strings.Repeat("0", 64), ResetPasswordInput{Password: "brandnew1", ConfirmPassword: "brandnew1"})

	require.ErrorIs(t, expired, ErrInvalidOrExpiredToken)
	require.ErrorIs(t, unknown, ErrInvalidOrExpiredToken)
	assert.Equal(t, AsAppError(expired).Message, AsAppError(unknown).Message)

	stored := f.users.get(f.userID)
	assert.NotNil(t, stored.PasswordResetTokenHash, "stored hash survives a rejected attempt")
}

func TestConsumeReset_PasswordMismatchKeepsToken(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "jane@example.com"))
	token := f.tokenFromMail(t)

	_, err := f.svc.ConsumeReset(context.Background(), token, ResetPasswordInput{Password: "brandnew1", ConfirmPassword: "brandnew2"})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = f.svc.ConsumeReset(context.Background(), token, ResetPasswordInput{Password: "brandnew1", ConfirmPassword: "brandnew1"})
	assert.NoError(t, err)
}

func TestRequestReset_RequiresEmail(t *testing.T) {
	f := newResetFixture(t)
	assert.ErrorIs(t, f.svc.RequestReset(context.Background(), "  "), ErrValidation)
}

package application

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	repo "github.com/oksasatya/go-image-share/internal/domain/repository"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/mailer"
)

// fakeUsers is an in-memory UserRepository keyed by id.
type fakeUsers struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]entity.User
	saves   []entity.User
	saveErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]entity.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := u.Validate(); err != nil {
		return err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return &repo.DuplicateError{Field: "email"}
		}
	}
	f.seq++
	u.ID = "user-" + strconv.Itoa(f.seq)
	u.Active = true
	u.DateJoined = time.Now()
	if u.ProfileImage == "" {
		u.ProfileImage = entity.DefaultProfileImage
	}
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) find(match func(entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(email)
	return f.find(func(u entity.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByEmailOrUsername(_ context.Context, email, username string) (*entity.User, error) {
	email = strings.ToLower(email)
	return f.find(func(u entity.User) bool {
		return (email != "" && u.Email == email) || (username != "" && u.Username != nil && *u.Username == username)
	})
}

func (f *fakeUsers) FindByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	return f.find(func(u entity.User) bool {
		return u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == hash && u.HasPendingReset(now)
	})
}

func (f *fakeUsers) Save(_ context.Context, u *entity.User, opts repo.SaveOptions) error {
	if !opts.SkipValidation {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	f.byID[u.ID] = *u
	f.saves = append(f.saves, *u)
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, in repo.ProfileUpdate) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Username != nil {
		u.Username = in.Username
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = *in.DateOfBirth
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.ProfileImage != nil {
		u.ProfileImage = *in.ProfileImage
	}
	f.byID[id] = u
	return &u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.User, 0, len(f.byID))
	for _, u := range f.byID {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) get(id string) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type fakeMail struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeStorage struct {
	objects map[string]string
	deleted []string
	failOn  int // 1-based Put call that fails; 0 never
	puts    int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]string{}}
}

func (f *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	f.puts++
	if f.failOn == f.puts {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(b)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Bucket() string { return "test" }

type fakeImages struct {
	seq  int
	byID map[string]entity.Image
}

func newFakeImages() *fakeImages {
	return &fakeImages{byID: map[string]entity.Image{}}
}

func (f *fakeImages) Create(_ context.Context, img *entity.Image) error {
	f.seq++
	img.ID = "img-" + strconv.Itoa(f.seq)
	img.CreatedAt = time.Now()
	f.byID[img.ID] = *img
	return nil
}

func (f *fakeImages) GetByID(_ context.Context, id string) (*entity.Image, error) {
	img, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &img, nil
}

func (f *fakeImages) list(match func(entity.Image) bool) []entity.Image {
	out := make([]entity.Image, 0)
	for _, img := range f.byID {
		if !img.IsPrivate && match(img) {
			out = append(out, img)
		}
	}
	return out
}

func (f *fakeImages) ListPublic(_ context.Context) ([]entity.Image, error) {
	return f.list(func(entity.Image) bool { return true }), nil
}

func (f *fakeImages) ListPublicByTag(_ context.Context, tag string) ([]entity.Image, error) {
	return f.list(func(img entity.Image) bool { return img.Tag == tag }), nil
}

func (f *fakeImages) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeIndex struct {
	indexed   []string
	removed   []string
	results   []entity.Image
	searchErr error
}

func (f *fakeIndex) Index(_ context.Context, img *entity.Image) error {
	f.indexed = append(f.indexed, img.ID)
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) SearchByTag(_ context.Context, _ string) ([]entity.Image, error) {
	return f.results, f.searchErr
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAuth(users repo.UserRepository) *AuthService {
	return NewAuthService(users, helpers.NewPasswordHasher(bcrypt.MinCost, 2),
		helpers.NewJWTManager("test-secret", time.Hour), quietLogger())
}

var saveNoValidate = repo.SaveOptions{SkipValidation: true}

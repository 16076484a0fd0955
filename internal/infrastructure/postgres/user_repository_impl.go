package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/domain/repository"
)

const userColumns = `id, email, username, name, date_of_birth, phone, bio, profile_image, date_joined, active,
		password_hash, password_changed_at, password_reset_token_hash, password_reset_token_expires_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u          entity.User
		username   pgtype.Text
		changedAt  pgtype.Timestamptz
		resetHash  pgtype.Text
		resetUntil pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Email, &username, &u.Name, &u.DateOfBirth, &u.Phone, &u.Bio,
		&u.ProfileImage, &u.DateJoined, &u.Active,
		&u.PasswordHash, &changedAt, &resetHash, &resetUntil); err != nil {
		return nil, mapErr(err)
	}
	if username.Valid {
		u.Username = &username.String
	}
	if changedAt.Valid {
		t := changedAt.Time
		u.PasswordChangedAt = &t
	}
	if resetHash.Valid && resetUntil.Valid {
		u.SetResetToken(resetHash.String, resetUntil.Time)
	}
	return &u, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func timeOrNull(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ProfileImage == "" {
		u.ProfileImage = entity.DefaultProfileImage
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, username, name, date_of_birth, phone, bio, profile_image, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, date_joined, active
	`, u.Email, textOrNull(u.Username), u.Name, u.DateOfBirth, u.Phone, u.Bio, u.ProfileImage, u.PasswordHash)

	return mapErr(row.Scan(&u.ID, &u.DateJoined, &u.Active))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByEmailOrUsername matches either identifier; an empty username never matches.
func (r *UserRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 OR ($2 <> '' AND username = $2)
		LIMIT 1
	`, email, username))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE password_reset_token_hash = $1 AND password_reset_token_expires_at > $2
	`, hash, now))
}

// Save writes every mutable column of u (last write wins).
func (r *UserRepository) Save(ctx context.Context, u *entity.User, opts repository.SaveOptions) error {
	if !opts.SkipValidation {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	var resetHash *string
	var resetUntil *time.Time
	if u.PasswordResetTokenHash != nil && u.PasswordResetTokenExpiresAt != nil {
		resetHash, resetUntil = u.PasswordResetTokenHash, u.PasswordResetTokenExpiresAt
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, name = $3, date_of_birth = $4, phone = $5, bio = $6,
			profile_image = $7, active = $8, password_hash = $9, password_changed_at = $10,
			password_reset_token_hash = $11, password_reset_token_expires_at = $12
		WHERE id = $13
	`, strings.ToLower(u.Email), textOrNull(u.Username), u.Name, u.DateOfBirth, u.Phone, u.Bio,
		u.ProfileImage, u.Active, u.PasswordHash, timeOrNull(u.PasswordChangedAt),
		textOrNull(resetHash), timeOrNull(resetUntil), u.ID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, in repository.ProfileUpdate) (*entity.User, error) {
	var dob pgtype.Date
	if in.DateOfBirth != nil {
		dob = pgtype.Date{Time: *in.DateOfBirth, Valid: true}
	}
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($1, name),
			username = COALESCE($2, username),
			date_of_birth = COALESCE($3, date_of_birth),
			bio = COALESCE($4, bio),
			phone = COALESCE($5, phone),
			profile_image = COALESCE($6, profile_image)
		WHERE id = $7
		RETURNING `+userColumns,
		textOrNull(in.Name), textOrNull(in.Username), dob, textOrNull(in.Bio), textOrNull(in.Phone),
		textOrNull(in.ProfileImage), id))
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE active ORDER BY date_joined`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	"github.com/oksasatya/go-image-share/internal/domain/repository"
)

const imageColumns = `id, user_id, urls, caption, is_private, tag, created_at`

type ImageRepository struct {
	db DB
}

func NewImageRepository(db DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func scanImage(row pgx.Row) (*entity.Image, error) {
	var img entity.Image
	if err := row.Scan(&img.ID, &img.UserID, &img.URLs, &img.Caption, &img.IsPrivate, &img.Tag, &img.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &img, nil
}

func (r *ImageRepository) Create(ctx context.Context, img *entity.Image) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO images (user_id, urls, caption, is_private, tag)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, img.UserID, img.URLs, img.Caption, img.IsPrivate, img.Tag)
	return mapErr(row.Scan(&img.ID, &img.CreatedAt))
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	return scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id))
}

func (r *ImageRepository) ListPublic(ctx context.Context) ([]entity.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images WHERE NOT is_private ORDER BY created_at DESC`)
}

func (r *ImageRepository) ListPublicByTag(ctx context.Context, tag string) ([]entity.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images WHERE NOT is_private AND tag = $1 ORDER BY created_at DESC`, tag)
}

func (r *ImageRepository) list(ctx context.Context, query string, args ...any) ([]entity.Image, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]entity.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ImageRepository = (*ImageRepository)(nil)

package repository

import (
	"context"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
)

// ImageRepository defines persistence for image posts.
type ImageRepository interface {
	Create(ctx context.Context, img *entity.Image) error
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	ListPublic(ctx context.Context) ([]entity.Image, error)
	ListPublicByTag(ctx context.Context, tag string) ([]entity.Image, error)
	Delete(ctx context.Context, id string) error
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/domain/entity"
	repo "github.com/oksasatya/go-image-share/internal/domain/repository"
	"github.com/oksasatya/go-image-share/internal/infrastructure/storage"
)

// ImageIndex is the search side of public images.
type ImageIndex interface {
	Index(ctx context.Context, img *entity.Image) error
	Remove(ctx context.Context, id string) error
	SearchByTag(ctx context.Context, tag string) ([]entity.Image, error)
}

type ImageService struct {
	Images     repo.ImageRepository
	Storage    storage.ObjectStorage
	Index      ImageIndex // optional
	MaxUploads int
	Logger     *logrus.Logger
}

func NewImageService(images repo.ImageRepository, store storage.ObjectStorage, index ImageIndex, maxUploads int, logger *logrus.Logger) *ImageService {
	if maxUploads <= 0 {
		maxUploads = 4
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageService{Images: images, Storage: store, Index: index, MaxUploads: maxUploads, Logger: logger}
}

type CreateImageInput struct {
	Caption   string
	IsPrivate bool
	Tag       string
}

// Create uploads files and records them as one post owned by userID.
// Objects already uploaded are removed again if a later step fails.
func (s *ImageService) Create(ctx context.Context, userID string, in CreateImageInput, files []Upload) (*entity.Image, error) {
	switch {
	case len(files) == 0:
		return nil, validationError(map[string]string{"images": "at least one image is required"})
	case len(files) > s.MaxUploads:
		return nil, validationError(map[string]string{"images": fmt.Sprintf("at most %d images per post", s.MaxUploads)})
	}
	for _, f := range files {
		if !f.IsImage() {
			return nil, validationError(map[string]string{"images": "Not an image! Please upload only images."})
		}
	}

	batch := uuid.NewString()
	keys := make([]string, 0, len(files))
	urls := make([]string, 0, len(files))
	for i, f := range files {
		key := storage.ImageKey(userID, fmt.Sprintf("%s-%d", batch, i), f.FileName)
		url, err := s.Storage.Put(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("image upload failed")
			s.cleanup(ctx, keys)
			return nil, internalError(err)
		}
		keys = append(keys, key)
		urls = append(urls, url)
	}

	img := &entity.Image{
		UserID:    userID,
		URLs:      urls,
		Caption:   strings.TrimSpace(in.Caption),
		IsPrivate: in.IsPrivate,
		Tag:       strings.TrimSpace(in.Tag),
	}
	if err := s.Images.Create(ctx, img); err != nil {
		s.cleanup(ctx, keys)
		return nil, internalError(err)
	}
	if !img.IsPrivate && s.Index != nil {
		if err := s.Index.Index(ctx, img); err != nil {
			s.Logger.WithError(err).WithField("image_id", img.ID).Warn("image index failed")
		}
	}
	return img, nil
}

func (s *ImageService) cleanup(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.Storage.Delete(ctx, k); err != nil {
			s.Logger.WithError(err).WithField("key", k).Warn("orphaned upload cleanup failed")
		}
	}
}

func (s *ImageService) ListPublic(ctx context.Context) ([]entity.Image, error) {
	images, err := s.Images.ListPublic(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return images, nil
}

// SearchByTag asks the search index first and falls back to the database
// when no index is configured or the index fails.
func (s *ImageService) SearchByTag(ctx context.Context, tag string) ([]entity.Image, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, validationError(map[string]string{"tag": "is required"})
	}
	if s.Index != nil {
		images, err := s.Index.SearchByTag(ctx, tag)
		if err == nil {
			return images, nil
		}
		s.Logger.WithError(err).WithField("tag", tag).Warn("image search failed, falling back to database")
	}
	images, err := s.Images.ListPublicByTag(ctx, tag)
	if err != nil {
		return nil, internalError(err)
	}
	return images, nil
}

// Get returns the image if userID may see it.
func (s *ImageService) Get(ctx context.Context, userID, id string) (*entity.Image, error) {
	img, err := s.Images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(KindNotFound, "No image found with that ID")
		}
		return nil, internalError(err)
	}
	if !img.VisibleTo(userID) {
		return nil, newError(KindUnauthorized, MsgNoPermission)
	}
	return img, nil
}

// Delete removes an image; only its owner may do so.
func (s *ImageService) Delete(ctx context.Context, userID, id string) error {
	img, err := s.Images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(KindNotFound, "No image found with that ID")
		}
		return internalError(err)
	}
	if !img.OwnedBy(userID) {
		return newError(KindUnauthorized, MsgNoPermission)
	}
	if err := s.Images.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return newError(KindNotFound, "No image found with that ID")
		}
		return internalError(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("image_id", id).Warn("image unindex failed")
		}
	}
	return nil
}

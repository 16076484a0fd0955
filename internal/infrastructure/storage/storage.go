package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/oksasatya/go-image-share/config"
)

// ObjectStorage stores uploaded files and hands back the URL clients fetch
// them from. Put on an existing key overwrites it.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// New builds the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "gcs", "":
		return NewGCSClient(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
	case "minio":
		return NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// ProfileImageKey is fixed per user so a new upload replaces the old one.
func ProfileImageKey(userID string) string {
	return path.Join(userID, "profile", userID)
}

// ImageKey places a post image under its owner's prefix.
func ImageKey(userID, imageID, fileName string) string {
	return path.Join(userID, "images", imageID+"-"+path.Base(fileName))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrKeyRequired is returned for an empty object key
var ErrKeyRequired = errors.New("storage key is required")

// ObjectStorage stores binary objects and hands out download URLs
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New returns the S3 storage when enabled, otherwise an in-memory storage
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if !cfg.Enabled {
		logger.Info("Object storage disabled, keeping objects in memory")
		return NewMemoryObjectStorage(""), nil
	}
	s, err := NewS3ObjectStorage(&cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Object storage ready", zap.String("bucket", s.Bucket()))
	return s, nil
}

// UserImageKey returns the key of a user's picture
func UserImageKey(userID uuid.UUID) string {
	return path.Join("users", userID.String()+".jpg")
}

// ArchiveKey returns a unique key for an archived document, grouped by month
func ArchiveKey(at time.Time, fileName string) string {
	name := strings.ReplaceAll(path.Base(fileName), " ", "-")
	return path.Join("archive", at.Format("2006/01"), fmt.Sprintf("%s-%s", uuid.NewString()[:8], name))
}

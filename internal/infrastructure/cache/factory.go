package cache

import (
	"context"
	"errors"
	"time"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CaptchaStore is implemented by RedisCaptchaStore and MemoryCaptchaStore
type CaptchaStore interface {
	Set(ctx context.Context, id, answer string, ttl time.Duration) error
	Take(ctx context.Context, id string) (string, bool, error)
	Close() error
}

// NewCaptchaStore returns the store selected by captcha.store. The Redis
// store needs a client; the memory store is used when client is nil.
func NewCaptchaStore(cfg config.CaptchaConfig, client *redis.Client, logger *zap.Logger) (CaptchaStore, error) {
	switch cfg.Store {
	case "redis":
		if client == nil {
			return nil, errors.New("captcha.store is redis but no redis client is available")
		}
		logger.Info("Using Redis captcha store")
		return NewRedisCaptchaStore(client), nil
	default:
		logger.Info("Using in-memory captcha store")
		return NewMemoryCaptchaStore(time.Minute), nil
	}
}

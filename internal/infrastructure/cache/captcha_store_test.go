package cache

import (
	"context"
	"testing"
	"time"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryCaptchaStore(t *testing.T) {
	ctx := context.Background()

	t.Run("take returns the answer once", func(t *testing.T) {
		store := NewMemoryCaptchaStore(time.Hour)
		defer store.Close()

		require.NoError(t, store.Set(ctx, "id-1", "E", time.Minute))

		answer, ok, err := store.Take(ctx, "id-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "E", answer)

		_, ok, err = store.Take(ctx, "id-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired answers are not returned", func(t *testing.T) {
		store := NewMemoryCaptchaStore(time.Hour)
		defer store.Close()
		now := time.Now()
		store.now = func() time.Time { return now }

		require.NoError(t, store.Set(ctx, "id-2", "A", time.Minute))
		store.now = func() time.Time { return now.Add(time.Minute) }

		_, ok, err := store.Take(ctx, "id-2")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("janitor removes expired answers", func(t *testing.T) {
		store := NewMemoryCaptchaStore(5 * time.Millisecond)
		defer store.Close()

		require.NoError(t, store.Set(ctx, "old", "A", time.Millisecond))
		require.NoError(t, store.Set(ctx, "fresh", "B", time.Hour))

		assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
		answer, ok, err := store.Take(ctx, "fresh")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "B", answer)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewMemoryCaptchaStore(time.Millisecond)
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}

func TestNewCaptchaStore(t *testing.T) {
	t.Run("defaults to memory", func(t *testing.T) {
		store, err := NewCaptchaStore(config.CaptchaConfig{Store: "memory"}, nil, zap.NewNop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryCaptchaStore{}, store)
	})

	t.Run("redis requires a client", func(t *testing.T) {
		_, err := NewCaptchaStore(config.CaptchaConfig{Store: "redis"}, nil, zap.NewNop())
		assert.Error(t, err)
	})
}

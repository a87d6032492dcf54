package captcha

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/captcha"
	"github.com/calculation/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedDictionary string

func (d fixedDictionary) RandomWord() (string, error) {
	return string(d), nil
}

type firstRandom struct{}

func (firstRandom) IntN(int) int { return 0 }

func newService(t *testing.T) *Service {
	t.Helper()
	store := cache.NewMemoryCaptchaStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	builder := captcha.NewBuilder(fixedDictionary("garden"), firstRandom{}, captcha.LetterGenerator{})
	return NewService(builder, store, time.Minute, nil, zap.NewNop())
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts the right answer once", func(t *testing.T) {
		svc := newService(t)
		challenge, err := svc.Issue(ctx)
		require.NoError(t, err)
		assert.True(t, strings.Contains(challenge.Question, "GARDEN"), challenge.Question)

		require.NoError(t, svc.Verify(ctx, challenge.ID, " g "))
		assert.ErrorIs(t, svc.Verify(ctx, challenge.ID, "g"), ErrExpired)
	})

	t.Run("rejects a wrong answer and consumes the challenge", func(t *testing.T) {
		svc := newService(t)
		challenge, err := svc.Issue(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Verify(ctx, challenge.ID, "x"), ErrInvalid)
		assert.ErrorIs(t, svc.Verify(ctx, challenge.ID, "g"), ErrExpired)
	})

	t.Run("requires an answer", func(t *testing.T) {
		assert.ErrorIs(t, newService(t).Verify(ctx, "", ""), ErrMissing)
	})

	t.Run("an empty answer consumes the challenge", func(t *testing.T) {
		svc := newService(t)
		challenge, err := svc.Issue(ctx)
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Verify(ctx, challenge.ID, ""), ErrMissing)
		assert.ErrorIs(t, svc.Verify(ctx, challenge.ID, "g"), ErrExpired)
	})

	t.Run("challenges expire after three minutes by default", func(t *testing.T) {
		store := cache.NewMemoryCaptchaStore(time.Minute)
		t.Cleanup(func() { _ = store.Close() })
		builder := captcha.NewBuilder(fixedDictionary("garden"), firstRandom{}, captcha.LetterGenerator{})
		svc := NewService(builder, store, 0, nil, zap.NewNop())

		challenge, err := svc.Issue(ctx)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(3*time.Minute), challenge.ExpiresAt, 5*time.Second)
		assert.Equal(t, 3*time.Minute, DefaultTTL)
	})
}

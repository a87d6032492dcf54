package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("a held key cannot be obtained twice", func(t *testing.T) {
		locker := NewLocalLocker()
		lk, err := locker.Obtain(ctx, "update", time.Minute)
		require.NoError(t, err)

		_, err = locker.Obtain(ctx, "update", time.Minute)
		assert.ErrorIs(t, err, ErrNotObtained)

		_, err = locker.Obtain(ctx, "archive", time.Minute)
		assert.NoError(t, err, "other keys are independent")

		require.NoError(t, lk.Release(ctx))
		_, err = locker.Obtain(ctx, "update", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("an expired lock can be obtained again", func(t *testing.T) {
		locker := NewLocalLocker()
		now := time.Now()
		locker.now = func() time.Time { return now }
		stale, err := locker.Obtain(ctx, "update", time.Second)
		require.NoError(t, err)

		locker.now = func() time.Time { return now.Add(2 * time.Second) }
		_, err = locker.Obtain(ctx, "update", time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale.Release(ctx))
		_, err = locker.Obtain(ctx, "update", time.Minute)
		assert.ErrorIs(t, err, ErrNotObtained, "releasing a stale lock keeps the new holder")
	})
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	t.Run("runs the function and releases the lock", func(t *testing.T) {
		ran := false
		err := WithLock(ctx, locker, "job", time.Minute, func(context.Context) error {
			ran = true
			_, err := locker.Obtain(ctx, "job", time.Minute)
			assert.ErrorIs(t, err, ErrNotObtained)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)

		_, err = locker.Obtain(ctx, "job", time.Minute)
		assert.NoError(t, err)
	})

	t.Run("returns the function error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithLock(ctx, locker, "other", time.Minute, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

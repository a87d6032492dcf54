package persistence

import (
	"context"
	"testing"

	"github.com/calculation/backend/internal/domain/margin"
	"github.com/calculation/backend/internal/domain/setting"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormGlobalMarginRepository(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormGlobalMarginRepository(db.DB)
	ctx := context.Background()

	newMargin := func(minimum, maximum, value string) margin.GlobalMargin {
		gm, err := margin.NewGlobalMargin(dec(minimum), dec(maximum), dec(value))
		require.NoError(t, err)
		return *gm
	}

	require.NoError(t, repo.ReplaceAll(ctx, []margin.GlobalMargin{
		newMargin("1000", "1000000", "1.05"),
		newMargin("0", "1000", "1.1"),
	}))

	t.Run("lists margins ordered by minimum", func(t *testing.T) {
		margins, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, margins, 2)
		assert.True(t, margins[0].Minimum.IsZero())
	})

	t.Run("finds the margin of an amount using half-open ranges", func(t *testing.T) {
		gm, err := repo.FindByAmount(ctx, dec("999.99"))
		require.NoError(t, err)
		assert.True(t, gm.Margin.Equal(dec("1.1")))

		gm, err = repo.FindByAmount(ctx, dec("1000"))
		require.NoError(t, err)
		assert.True(t, gm.Margin.Equal(dec("1.05")))

		_, err = repo.FindByAmount(ctx, dec("1000000"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("replaces every margin", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, []margin.GlobalMargin{newMargin("0", "10", "2")}))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, repo.ReplaceAll(ctx, nil))
		count, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("saves and deletes a single margin", func(t *testing.T) {
		gm := newMargin("0", "100", "1.3")
		require.NoError(t, repo.Save(ctx, &gm))

		loaded, err := repo.FindByID(ctx, gm.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Maximum.Equal(dec("100")))

		require.NoError(t, repo.Delete(ctx, gm.ID))
		assert.ErrorIs(t, repo.Delete(ctx, gm.ID), shared.ErrNotFound)
	})
}

func TestGormPropertyRepository(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormPropertyRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, []setting.Property{
		{Name: "min_margin", Value: "1.1"},
		{Name: "customer_name", Value: "ACME"},
	}))
	require.NoError(t, repo.SaveAll(ctx, []setting.Property{{Name: "min_margin", Value: "1.25"}}))
	require.NoError(t, repo.SaveAll(ctx, nil))

	props, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []setting.Property{
		{Name: "customer_name", Value: "ACME"},
		{Name: "min_margin", Value: "1.25"},
	}, props)
}

//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/catalog"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded migrations
func newPostgresDB(t *testing.T) (*gorm.DB, *migration.Migrator) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("calculation_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator := newMigrator(t, sqlDB)
	require.NoError(t, migrator.Up())
	return db, migrator
}

func newMigrator(t *testing.T, sqlDB *sql.DB) *migration.Migrator {
	t.Helper()
	migrator, err := migration.New(sqlDB, migration.Options{}, zap.NewNop())
	require.NoError(t, err)
	return migrator
}

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, migrator := newPostgresDB(t)
	ctx := context.Background()
	states := NewGormCalculationStateRepository(db)
	calculations := NewGormCalculationRepository(db)

	open, err := calculation.NewCalculationState("OPEN", "Open", true, "#00FF00")
	require.NoError(t, err)
	require.NoError(t, states.Save(ctx, open))
	archived, err := calculation.NewCalculationState("ARCHIVED", "Archived", false, "#808080")
	require.NoError(t, err)
	require.NoError(t, states.Save(ctx, archived))

	group, err := catalog.NewGroup("WORK", "Labour")
	require.NoError(t, err)
	require.NoError(t, NewGormGroupRepository(db).Save(ctx, group))
	category, err := catalog.NewCategory("PAINT", "Painting", group)
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Save(ctx, category))

	newCalculation := func(t *testing.T, date time.Time) *calculation.Calculation {
		t.Helper()
		calc, err := calculation.NewCalculation(date, "ACME", "Kitchen", open, "admin")
		require.NoError(t, err)
		it, err := calculation.NewCalculationItem("Primer", "l", decimal.RequireFromString("9.80"), decimal.NewFromInt(3))
		require.NoError(t, err)
		require.NoError(t, calc.AddItem(category, it))
		require.NoError(t, calculations.Save(ctx, calc))
		return calc
	}

	t.Run("the migrated schema stores a calculation tree", func(t *testing.T) {
		calc := newCalculation(t, time.Now())

		loaded, err := calculations.FindByID(ctx, calc.ID)
		require.NoError(t, err)
		assert.Equal(t, "OPEN", loaded.StateCode)
		require.Len(t, loaded.Groups, 1)
		require.Len(t, loaded.Groups[0].Categories, 1)
		items := loaded.Groups[0].Categories[0].Items
		require.Len(t, items, 1)
		assert.True(t, items[0].Price.Equal(decimal.RequireFromString("9.80")))
	})

	t.Run("state codes are unique", func(t *testing.T) {
		exists, err := states.ExistsByCode(ctx, "OPEN", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		duplicate, err := calculation.NewCalculationState("OPEN", "Again", true, "")
		require.NoError(t, err)
		assert.Error(t, states.Save(ctx, duplicate))
	})

	t.Run("archives the old calculations of the editable states", func(t *testing.T) {
		old := newCalculation(t, time.Now().AddDate(-1, 0, 0))

		found, err := calculations.FindForArchive(ctx, time.Now().AddDate(0, -6, 0), []uuid.UUID{open.ID})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, old.ID, found[0].ID)

		count, err := calculations.UpdateState(ctx, []uuid.UUID{old.ID}, archived, "scheduler")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		used, err := states.CountCalculations(ctx, archived.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), used)
	})

	t.Run("groups the totals by state", func(t *testing.T) {
		stats, err := calculations.StatsByState(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, stats)
	})

	t.Run("the schema can be rolled back", func(t *testing.T) {
		version, dirty, err := migrator.Version()
		require.NoError(t, err)
		assert.False(t, dirty)
		assert.Equal(t, uint(1), version)

		require.NoError(t, migrator.Down())
		_, err = calculations.FindByID(ctx, uuid.New())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

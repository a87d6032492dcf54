package main

import (
	"context"
	"fmt"

	calcapp "github.com/calculation/backend/internal/application/calculation"
	"github.com/calculation/backend/internal/application/seed"
	"github.com/calculation/backend/internal/application/setting"
	"github.com/calculation/backend/internal/infrastructure/cache"
	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/calculation/backend/internal/infrastructure/event"
	"github.com/calculation/backend/internal/infrastructure/lock"
	"github.com/calculation/backend/internal/infrastructure/logger"
	"github.com/calculation/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// consoleUser is recorded as the author of the changes made from the console
const consoleUser = "console"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Calculation maintenance console",
	Long: `Runs the maintenance jobs of the calculation backend against the configured database.

The configuration is read like the server does: config.toml, .env and CALC_* variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// environment holds the services used by the console commands
type environment struct {
	cfg          *config.Config
	log          *zap.Logger
	db           *persistence.Database
	redis        *redis.Client
	calculations *calcapp.CalculationService
	seeder       *seed.Seeder
}

// withEnvironment connects to the database and runs fn with the console services
func withEnvironment(ctx context.Context, fn func(env *environment) error) error {
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate || cfg.Database.Driver != config.DriverPostgres {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}

	env := &environment{cfg: cfg, log: log, db: db}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		env.redis, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = env.redis.Close() }()
		locker = lock.NewRedisLocker(env.redis)
	}

	stateRepo := persistence.NewGormCalculationStateRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	marginRepo := persistence.NewGormGlobalMarginRepository(db.DB)

	settings := setting.NewService(persistence.NewGormPropertyRepository(db.DB), stateRepo, categoryRepo,
		cfg.Calculation.MinMargin, log)
	env.calculations = calcapp.NewCalculationService(calcapp.Repositories{
		Calculations:  persistence.NewGormCalculationRepository(db.DB),
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		GlobalMargins: marginRepo,
	}, settings, event.NewInMemoryEventBus(log), locker, nil, cfg.Calculation, log)
	env.seeder = seed.NewSeeder(seed.Repositories{
		States:        stateRepo,
		Groups:        groupRepo,
		Categories:    categoryRepo,
		Products:      persistence.NewGormProductRepository(db.DB),
		GlobalMargins: marginRepo,
		Users:         persistence.NewGormUserRepository(db.DB),
	}, log)

	return fn(env)
}

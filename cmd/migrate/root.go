package main

import (
	"database/sql"
	"fmt"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/calculation/backend/internal/infrastructure/logger"
	"github.com/calculation/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrationsPath string
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Calculation database migration tool",
	Long: `Applies the PostgreSQL schema migrations.

The migrations embedded in the binary are used unless --path is given.
MySQL and SQLite databases are created by the server with auto-migration instead.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Directory of SQL migrations (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func newLogger() (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// withMigrator opens the configured database and runs fn with a migrator
func withMigrator(fn func(m *migration.Migrator, log *zap.Logger) error) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("SQL migrations target PostgreSQL, database.driver is %q: use database.auto_migrate instead", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresURL())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := migration.New(db, migration.Options{Path: migrationsPath}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return fn(m, log)
}

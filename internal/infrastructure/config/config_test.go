package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so that no config.toml or .env is picked up
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CALC_CONFIG", "")
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "calculation", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 3*time.Minute, cfg.Captcha.TTL)
		assert.Equal(t, "memory", cfg.Captcha.Store)
		assert.Equal(t, "1.1", cfg.Calculation.MinMargin.String())
		assert.Equal(t, "CH", cfg.Phone.DefaultRegion)
		assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	})

	t.Run("loads values from environment variables with CALC prefix", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_APP_NAME", "quotes")
		t.Setenv("CALC_DATABASE_DRIVER", "mysql")
		t.Setenv("CALC_DATABASE_HOST", "db.local")
		t.Setenv("CALC_DATABASE_PASSWORD", "secret")
		t.Setenv("CALC_CALCULATION_MIN_MARGIN", "1.25")
		t.Setenv("CALC_CAPTCHA_TTL", "5m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "quotes", cfg.App.Name)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, "1.25", cfg.Calculation.MinMargin.String())
		assert.Equal(t, 5*time.Minute, cfg.Captcha.TTL)
	})

	t.Run("loads values from the config file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "calc.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = "9090"

[log]
level = "debug"

[phone]
default_region = "FR"
`), 0o600))
		t.Setenv("CALC_CONFIG", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "FR", cfg.Phone.DefaultRegion)
	})

	t.Run("loads the .env file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CALC_APP_PORT=7070\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("CALC_APP_PORT") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.App.Port)
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("CALC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("redis captcha store requires redis", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_CAPTCHA_STORE", "redis")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.enabled")
	})

	t.Run("configures the daily maintenance", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 2, cfg.Scheduler.Hour)
		assert.Equal(t, time.Minute, cfg.Scheduler.CheckInterval)

		t.Setenv("CALC_SCHEDULER_HOUR", "0")
		t.Setenv("CALC_SCHEDULER_ARCHIVE_STATE", "closed")
		cfg, err = Load()
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Scheduler.Hour)
		assert.Equal(t, "closed", cfg.Scheduler.ArchiveState)

		t.Setenv("CALC_SCHEDULER_MINUTE", "75")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler")
	})

	t.Run("rejects an invalid min margin", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_CALCULATION_MIN_MARGIN", "abc")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_Production(t *testing.T) {
	t.Run("requires a strong JWT secret", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_APP_ENV", "production")
		t.Setenv("CALC_JWT_SECRET", "short")
		t.Setenv("CALC_DATABASE_PASSWORD", "secret")
		t.Setenv("CALC_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("requires a database password", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_APP_ENV", "production")
		t.Setenv("CALC_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("CALC_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("accepts a complete production configuration", func(t *testing.T) {
		isolate(t)
		t.Setenv("CALC_APP_ENV", "production")
		t.Setenv("CALC_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("CALC_DATABASE_PASSWORD", "secret")
		t.Setenv("CALC_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestLoadAndWatch(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "calc.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0o600))
	t.Setenv("CALC_CONFIG", path)

	changes := make(chan *Config, 4)
	cfg, err := LoadAndWatch(func(c *Config) { changes <- c })
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o600))

	select {
	case next := <-changes:
		assert.Equal(t, "debug", next.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "postgres escapes credentials",
			cfg:      DatabaseConfig{Driver: DriverPostgres, User: "calc", Password: "p@ss", Host: "db", Port: 5432, DBName: "calc", SSLMode: "disable"},
			expected: "postgres://calc:p%40ss@db:5432/calc?sslmode=disable",
		},
		{
			name:     "mysql parses time",
			cfg:      DatabaseConfig{Driver: DriverMySQL, User: "calc", Password: "pw", Host: "db", Port: 3306, DBName: "calc"},
			expected: "calc:pw@tcp(db:3306)/calc?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name:     "sqlite uses the file name",
			cfg:      DatabaseConfig{Driver: DriverSQLite, DBName: "file::memory:?cache=shared"},
			expected: "file::memory:?cache=shared",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

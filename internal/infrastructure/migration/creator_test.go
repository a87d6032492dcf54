package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/calculation/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add customer index", "add_customer_index"},
		{"Add-Customer-Index", "add_customer_index"},
		{"ADD_CUSTOMER_INDEX", "add_customer_index"},
		{"add__customer__index", "add_customer_index"},
		{"Add State 123", "add_state_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers the first migration 1", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "init schema", "Calculation tables")
		require.NoError(t, err)
		assert.Equal(t, uint(1), mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_init_schema.down.sql"), mf.DownPath)

		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Migration: init_schema")
		assert.Contains(t, string(content), "-- Description: Calculation tables")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_seed.up.sql"), nil, 0o644))

		mf, err := CreateMigration(dir, "add index", "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), mf.Version)
		assert.FileExists(t, filepath.Join(dir, "000008_add_index.up.sql"))
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "first", "")
		require.NoError(t, err)
		assert.DirExists(t, dir)
	})

	t.Run("rejects a name without letters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		require.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by version and ignores other files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_add_index.up.sql":     {},
			"000001_init_schema.up.sql":   {},
			"000001_init_schema.down.sql": {},
			"README.md":                   {},
			"notes.sql":                   {},
			"abc_broken.up.sql":           {},
			"sub/000003_nested.up.sql":    {},
		}

		list, err := ListMigrations(fsys)
		require.NoError(t, err)
		assert.Equal(t, []MigrationInfo{
			{Version: 1, Name: "init_schema", HasDown: true},
			{Version: 2, Name: "add_index", HasDown: false},
		}, list)
	})

	t.Run("returns an empty list for a missing directory", func(t *testing.T) {
		list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("lists the embedded schema", func(t *testing.T) {
		list, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, uint(1), list[0].Version)
		assert.True(t, list[0].HasDown)
	})
}

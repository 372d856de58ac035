package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"log_level":"debug","storage":{"cache_size":42}}`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 42, cfg.Storage.CacheSize)
		assert.Equal(t, "master", cfg.DefaultBranch)
		assert.Equal(t, 2, cfg.Storage.Compression.Level)
	})

	t.Run("ini", func(t *testing.T) {
		path := filepath.Join(dir, "config")
		data := "[core]\ndefaultBranch = main\n\n[storage]\ncompressionLevel = 3\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.DefaultBranch)
		assert.Equal(t, 3, cfg.Storage.Compression.Level)
		assert.Equal(t, 1000, cfg.Storage.CacheSize)
	})

	t.Run("invalid level", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"storage":{"cache_size":1,"compression":{"level":9}}}`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)

		cfg, err := LoadOrDefault(filepath.Join(dir, "nope"))
		require.NoError(t, err)
		assert.Equal(t, "master", cfg.DefaultBranch)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	cfg := Default()
	cfg.DefaultBranch = "trunk"
	cfg.Storage.Compression.MinSize = 16
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trunk", loaded.DefaultBranch)
	assert.Equal(t, 16, loaded.Storage.Compression.MinSize)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

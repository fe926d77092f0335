package testbed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "sync"
headless = true
duration_seconds = 2.5

[terrain]
grid_size = 128
patch_count = 16
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sync", config.Mode)
	assert.True(t, config.Headless)
	assert.Equal(t, 2.5, config.DurationSeconds)
	assert.Equal(t, 128, config.Terrain.GridSize)
	assert.Equal(t, 16, config.Terrain.PatchCount)

	// Untouched sections keep their defaults.
	assert.Equal(t, uint32(1280), config.Window.Width)
	assert.Equal(t, float32(20.0), config.Terrain.HeightScale)
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`mode = "turbo"`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

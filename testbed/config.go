package testbed

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/terrain"
)

type WindowConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	Title  string `toml:"title"`
}

type TerrainConfig struct {
	GridSize    int     `toml:"grid_size"`
	PatchCount  int     `toml:"patch_count"`
	CellSize    float32 `toml:"cell_size"`
	HeightScale float32 `toml:"height_scale"`
	Seed        uint64  `toml:"seed"`
}

type Config struct {
	// Mode selects the upload path: "async" drives the worker pipeline,
	// "sync" uploads patches on the render thread.
	Mode string `toml:"mode"`
	// Headless runs the benchmark against the in-memory device, without a
	// window. Useful on machines with no display.
	Headless bool `toml:"headless"`
	// DurationSeconds bounds the headless frame loop.
	DurationSeconds float64 `toml:"duration_seconds"`
	// ShaderDir holds the .vert/.frag sources for the windowed renderer.
	ShaderDir string `toml:"shader_dir"`
	LogLevel  string `toml:"log_level"`

	Window  WindowConfig  `toml:"window"`
	Terrain TerrainConfig `toml:"terrain"`
}

func DefaultConfig() Config {
	return Config{
		Mode:            "async",
		Headless:        false,
		DurationSeconds: 10,
		ShaderDir:       "shaders",
		LogLevel:        "info",
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Tectonic Upload Benchmark",
		},
		Terrain: TerrainConfig{
			GridSize:    256,
			PatchCount:  64,
			CellSize:    1.0,
			HeightScale: 20.0,
			Seed:        1,
		},
	}
}

// LoadConfig reads a TOML config file, applying defaults for anything not
// set. A missing file is not an error; defaults are returned.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("no config file at '%s', using defaults", path)
			return config, nil
		}
		return config, err
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}

	if config.Mode != "async" && config.Mode != "sync" {
		return config, fmt.Errorf("invalid mode %q: must be \"async\" or \"sync\"", config.Mode)
	}

	return config, nil
}

func (c Config) terrainConfig() terrain.Config {
	return terrain.Config{
		GridSize:    c.Terrain.GridSize,
		PatchCount:  c.Terrain.PatchCount,
		CellSize:    c.Terrain.CellSize,
		HeightScale: c.Terrain.HeightScale,
		Seed:        c.Terrain.Seed,
	}
}

func (c Config) logLevel() core.LogLevel {
	switch c.LogLevel {
	case "debug":
		return core.DebugLevel
	case "warn":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	default:
		return core.InfoLevel
	}
}

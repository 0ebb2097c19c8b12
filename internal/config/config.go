// Package config loads screennote.yaml.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ScreenNote/internal/state"
)

const (
	projectConfigName = "screennote.yaml"
	homeConfigDir     = ".screennote"
	homeConfigName    = "config.yaml"
)

type Config struct {
	Canvas CanvasConfig `yaml:"canvas"`
	Pen    PenConfig    `yaml:"pen"`
	Eraser EraserConfig `yaml:"eraser"`
	Bridge BridgeConfig `yaml:"bridge"`
	Log    LogConfig    `yaml:"log"`
}

// CanvasConfig tunes the hit index.
type CanvasConfig struct {
	CellSize     float64 `yaml:"cell_size"`
	HitThreshold float64 `yaml:"hit_threshold"`
}

type PenConfig struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

type EraserConfig struct {
	Width float64 `yaml:"width"`
}

// BridgeConfig controls the remote toolbar endpoint. An empty Addr disables
// it.
type BridgeConfig struct {
	Addr      string `yaml:"addr"`
	Advertise bool   `yaml:"advertise"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{CellSize: 48, HitThreshold: 10},
		Pen:    PenConfig{Color: "#000000", Width: 4},
		Eraser: EraserConfig{Width: 24},
		Log:    LogConfig{Level: "info"},
	}
}

// Discover resolves the config location with first-match semantics.
func Discover(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverFrom(explicitPath, cwd, home)
}

// DiscoverFrom is a testable variant of Discover.
func DiscoverFrom(explicitPath, cwd, home string) (string, bool, error) {
	explicit := strings.TrimSpace(explicitPath)
	var candidates []string
	if explicit != "" {
		candidates = []string{filepath.Clean(explicit)}
	} else {
		candidates = []string{
			filepath.Join(cwd, projectConfigName),
			filepath.Join(home, homeConfigDir, homeConfigName),
		}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if explicit != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// Load discovers and parses the config. Fields missing from the file keep
// their defaults; no file at all yields Default().
func Load(explicitPath string) (Config, string, error) {
	path, found, err := Discover(explicitPath)
	if err != nil {
		return Config{}, "", err
	}
	if !found {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile parses one config file over Default().
func LoadFile(path string) (Config, error) {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	if !finitePositive(c.Canvas.CellSize) {
		errs = append(errs, fmt.Errorf("canvas.cell_size must be a positive finite number, got %v", c.Canvas.CellSize))
	}
	if !finitePositive(c.Canvas.HitThreshold) {
		errs = append(errs, fmt.Errorf("canvas.hit_threshold must be a positive finite number, got %v", c.Canvas.HitThreshold))
	}
	if !state.ValidColor(c.Pen.Color) {
		errs = append(errs, fmt.Errorf("pen.color %q is not a hex color", c.Pen.Color))
	}
	if c.Pen.Width <= 0 {
		errs = append(errs, fmt.Errorf("pen.width must be positive, got %v", c.Pen.Width))
	}
	if c.Eraser.Width <= 0 {
		errs = append(errs, fmt.Errorf("eraser.width must be positive, got %v", c.Eraser.Width))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	return errors.Join(errs...)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

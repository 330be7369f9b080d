// Package config loads lifetrace settings from YAML and key=value overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lifetrace/pkg/sims/life"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable used by the CLI, the session and the viewer.
type Config struct {
	Board     BoardConfig     `yaml:"board"`
	Rules     RulesConfig     `yaml:"rules"`
	Engine    EngineConfig    `yaml:"engine"`
	Autoplay  AutoplayConfig  `yaml:"autoplay"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Logging   LoggingConfig   `yaml:"logging"`
	Store     StoreConfig     `yaml:"store"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BoardConfig holds the dimensions of new boards.
type BoardConfig struct {
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	Toroidal bool `yaml:"toroidal"`
}

// RulesConfig holds the survival and birth thresholds of new boards.
type RulesConfig struct {
	MinNeighbors    int `yaml:"min_neighbors"`
	MaxNeighbors    int `yaml:"max_neighbors"`
	NeededNeighbors int `yaml:"needed_neighbors"`
}

// EngineConfig tunes the replay engine.
type EngineConfig struct {
	CacheWindow uint64 `yaml:"cache_window"`
}

// AutoplayConfig controls continuous stepping.
type AutoplayConfig struct {
	Interval time.Duration `yaml:"interval"`
	Reverse  bool          `yaml:"reverse"`
}

// ViewerConfig controls the GUI window.
type ViewerConfig struct {
	Scale int `yaml:"scale"`
	TPS   int `yaml:"tps"`
}

// LoggingConfig sets the log verbosity: "info" (default), "debug" or "trace".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StoreConfig locates the save index database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig sets where per-step CSV files are written. Empty disables output.
type TelemetryConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the embedded defaults.
func Default() Config {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return c
}

// Load overlays the YAML file at path onto the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// FromMap applies flag-style key/value overrides on top of base.
func FromMap(base Config, kv map[string]string) (Config, error) {
	c := base
	for key, v := range kv {
		var err error
		switch key {
		case "w", "width":
			c.Board.Width, err = strconv.Atoi(v)
		case "h", "height":
			c.Board.Height, err = strconv.Atoi(v)
		case "toroidal":
			c.Board.Toroidal, err = strconv.ParseBool(v)
		case "min":
			c.Rules.MinNeighbors, err = strconv.Atoi(v)
		case "max":
			c.Rules.MaxNeighbors, err = strconv.Atoi(v)
		case "needed", "birth":
			c.Rules.NeededNeighbors, err = strconv.Atoi(v)
		case "cache_window":
			c.Engine.CacheWindow, err = strconv.ParseUint(v, 10, 64)
		case "interval":
			c.Autoplay.Interval, err = time.ParseDuration(v)
		case "reverse":
			c.Autoplay.Reverse, err = strconv.ParseBool(v)
		case "scale":
			c.Viewer.Scale, err = strconv.Atoi(v)
		case "tps":
			c.Viewer.TPS, err = strconv.Atoi(v)
		case "log_level":
			c.Logging.Level = v
		case "store":
			c.Store.Path = v
		case "telemetry_dir":
			c.Telemetry.Dir = v
		default:
			return base, fmt.Errorf("unknown setting %q", key)
		}
		if err != nil {
			return base, fmt.Errorf("setting %s=%q: %w", key, v, err)
		}
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

// ParsePairs splits "key=value,key=value" into a map for FromMap. Empty
// input yields an empty map.
func ParsePairs(s string) (map[string]string, error) {
	kv := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("override %q is not key=value", pair)
		}
		kv[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return kv, nil
}

// Settings converts the board and rule sections into engine settings.
func (c Config) Settings() life.Settings {
	return life.Settings{
		MinNeighbors:    c.Rules.MinNeighbors,
		MaxNeighbors:    c.Rules.MaxNeighbors,
		NeededNeighbors: c.Rules.NeededNeighbors,
		Width:           c.Board.Width,
		Height:          c.Board.Height,
		Toroidal:        c.Board.Toroidal,
	}
}

// Validate checks the rules and the ranges of the UI parameters.
func (c Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if c.Autoplay.Interval <= 0 {
		return fmt.Errorf("autoplay interval must be positive, got %v", c.Autoplay.Interval)
	}
	if c.Viewer.Scale <= 0 || c.Viewer.TPS <= 0 {
		return fmt.Errorf("viewer scale and tps must be positive, got %d and %d", c.Viewer.Scale, c.Viewer.TPS)
	}
	return nil
}

// StorePath returns the save index location, falling back to the user
// config directory.
func (c Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "lifetrace", "saves.db"), nil
}

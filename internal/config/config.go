package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tilewm/internal/layouts"
	"github.com/1broseidon/tilewm/internal/platform"
	"github.com/1broseidon/tilewm/internal/tiling"
)

// Padding reserves space around each screen's working area.
type Padding struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// Config is the daemon configuration.
type Config struct {
	// LayoutOrder is the per-screen layout rotation.
	LayoutOrder []string `yaml:"layout_order"`

	// GapSize is the inner gap in pixels between tiled windows.
	GapSize int `yaml:"gap_size"`

	// MasterRatio is the initial master pane share (0.20–0.80).
	MasterRatio float64 `yaml:"master_ratio"`

	// ScreenPadding shrinks the working area before arranging.
	ScreenPadding Padding `yaml:"screen_padding"`

	// Rules control which windows are ignored or start floating.
	Rules []tiling.Rule `yaml:"rules"`

	// Hotkeys maps input command names to X11 key sequences
	// (e.g. "down": "mod4-j"). Empty sequences disable the binding.
	Hotkeys map[string]string `yaml:"hotkeys"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		LayoutOrder: append([]string(nil), layouts.DefaultOrder...),
		GapSize:     0,
		MasterRatio: 0.55,
		Rules: []tiling.Rule{
			{Class: "krunner", Ignore: true},
			{Class: "plasmashell", Ignore: true},
			{Class: "pavucontrol", Floating: true},
		},
		Hotkeys: map[string]string{
			"up":           "mod4-k",
			"down":         "mod4-j",
			"shift-up":     "mod4-shift-k",
			"shift-down":   "mod4-shift-j",
			"increase":     "mod4-l",
			"decrease":     "mod4-h",
			"set-master":   "mod4-Return",
			"float":        "mod4-f",
			"cycle-layout": "mod4-space",
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tilewm", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from the given file, overlaying
// it on the defaults. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot work
// with.
func (c *Config) Validate() error {
	if len(c.LayoutOrder) == 0 {
		return fmt.Errorf("layout_order must not be empty")
	}
	for _, name := range c.LayoutOrder {
		if !layouts.KnownLayout(name) {
			return fmt.Errorf("unknown layout %q in layout_order", name)
		}
	}
	if c.GapSize < 0 {
		return fmt.Errorf("gap_size must not be negative")
	}
	if c.MasterRatio != 0 && (c.MasterRatio < 0.20 || c.MasterRatio > 0.80) {
		return fmt.Errorf("master_ratio must be between 0.20 and 0.80")
	}
	for name := range c.Hotkeys {
		if _, err := tiling.ParseInput(name); err != nil {
			return fmt.Errorf("hotkeys: %w", err)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel converts the configured level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LayoutOptions bundles the layout knobs for internal/layouts.
func (c *Config) LayoutOptions() layouts.Options {
	return layouts.Options{
		Gap:         c.GapSize,
		MasterRatio: c.MasterRatio,
	}
}

// Apply shrinks a working area by the configured screen padding. The
// result is clamped to a minimum size of 1x1.
func (p Padding) Apply(area platform.Rect) platform.Rect {
	area.X += p.Left
	area.Y += p.Top
	area.Width -= p.Left + p.Right
	area.Height -= p.Top + p.Bottom
	if area.Width < 1 {
		area.Width = 1
	}
	if area.Height < 1 {
		area.Height = 1
	}
	return area
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml"
	"github.com/spf13/pflag"

	"github.com/Dicklesworthstone/battnet/internal/theme"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "BATTNET_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config carries runtime options for battnet.
type Config struct {
	BatteryInterval    time.Duration `env:"BATTERY_INTERVAL"`
	NetworkInterval    time.Duration `env:"NETWORK_INTERVAL"`
	CPUInterval        time.Duration `env:"CPU_INTERVAL"`
	FullscreenInterval time.Duration `env:"FULLSCREEN_INTERVAL"`
	TooltipInterval    time.Duration `env:"TOOLTIP_INTERVAL"`
	BatteryCacheTTL    time.Duration `env:"BATTERY_CACHE_TTL"`
	WindowCacheTTL     time.Duration `env:"WINDOW_CACHE_TTL"`

	Samples int    `env:"SAMPLES"`
	Width   int    `env:"WIDTH"`
	Theme   string `env:"THEME"`

	CPUGraph         bool `env:"CPU_GRAPH"`
	Tooltips         bool `env:"TOOLTIPS"`
	HideOnFullscreen bool `env:"HIDE_ON_FULLSCREEN"`

	LogFile     string `env:"LOG_FILE"`
	LogLevel    string `env:"LOG_LEVEL"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

func Default() Config {
	return Config{
		BatteryInterval:    2 * time.Second,
		NetworkInterval:    time.Second,
		CPUInterval:        500 * time.Millisecond,
		FullscreenInterval: 500 * time.Millisecond,
		TooltipInterval:    time.Second,
		BatteryCacheTTL:    2 * time.Second,
		WindowCacheTTL:     time.Second,
		Samples:            50,
		Width:              22,
		Theme:              theme.Dark.Name,
		CPUGraph:           true,
		Tooltips:           true,
		HideOnFullscreen:   false,
		LogLevel:           "info",
	}
}

// Load layers an optional TOML file and then BATTNET_* variables over the
// defaults. Flags are applied afterwards with ApplyFlags.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := applyTOML(&cfg, data); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	durations := []struct {
		name string
		v    time.Duration
	}{
		{"battery interval", c.BatteryInterval},
		{"network interval", c.NetworkInterval},
		{"cpu interval", c.CPUInterval},
		{"fullscreen interval", c.FullscreenInterval},
		{"tooltip interval", c.TooltipInterval},
	}
	for _, d := range durations {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be > 0", ErrInvalid, d.name))
		}
	}
	if c.BatteryCacheTTL < 0 || c.WindowCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache ttl must be >= 0", ErrInvalid))
	}
	if c.Samples < 2 {
		errs = append(errs, fmt.Errorf("%w: samples must be >= 2", ErrInvalid))
	}
	if c.Width < 8 {
		errs = append(errs, fmt.Errorf("%w: width must be >= 8", ErrInvalid))
	}
	if _, ok := theme.ByName(c.Theme); !ok {
		errs = append(errs, fmt.Errorf("%w: unknown theme %q", ErrInvalid, c.Theme))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

// DarkTheme reports whether the overlay starts dark.
func (c Config) DarkTheme() bool { return c.Theme != theme.Light.Name }

func applyTOML(cfg *Config, data []byte) error {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return err
	}
	durations := map[string]*time.Duration{
		"battery_interval":    &cfg.BatteryInterval,
		"network_interval":    &cfg.NetworkInterval,
		"cpu_interval":        &cfg.CPUInterval,
		"fullscreen_interval": &cfg.FullscreenInterval,
		"tooltip_interval":    &cfg.TooltipInterval,
		"battery_cache_ttl":   &cfg.BatteryCacheTTL,
		"window_cache_ttl":    &cfg.WindowCacheTTL,
	}
	for key, dst := range durations {
		if !tree.Has(key) {
			continue
		}
		s, ok := tree.Get(key).(string)
		if !ok {
			return fmt.Errorf("%s: want a duration string", key)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	ints := map[string]*int{
		"samples": &cfg.Samples,
		"width":   &cfg.Width,
	}
	for key, dst := range ints {
		if !tree.Has(key) {
			continue
		}
		v, ok := tree.Get(key).(int64)
		if !ok {
			return fmt.Errorf("%s: want an integer", key)
		}
		*dst = int(v)
	}
	bools := map[string]*bool{
		"cpu_graph":          &cfg.CPUGraph,
		"tooltips":           &cfg.Tooltips,
		"hide_on_fullscreen": &cfg.HideOnFullscreen,
	}
	for key, dst := range bools {
		if !tree.Has(key) {
			continue
		}
		v, ok := tree.Get(key).(bool)
		if !ok {
			return fmt.Errorf("%s: want a boolean", key)
		}
		*dst = v
	}
	strs := map[string]*string{
		"theme":        &cfg.Theme,
		"log_file":     &cfg.LogFile,
		"log_level":    &cfg.LogLevel,
		"metrics_addr": &cfg.MetricsAddr,
	}
	for key, dst := range strs {
		if !tree.Has(key) {
			continue
		}
		v, ok := tree.Get(key).(string)
		if !ok {
			return fmt.Errorf("%s: want a string", key)
		}
		*dst = v
	}
	return nil
}

// BindFlags registers every option on fs, writing into dst.
func BindFlags(fs *pflag.FlagSet, dst *Config) {
	def := Default()
	*dst = def
	fs.DurationVar(&dst.BatteryInterval, "battery-interval", def.BatteryInterval, "battery refresh interval")
	fs.DurationVar(&dst.NetworkInterval, "network-interval", def.NetworkInterval, "network refresh interval")
	fs.DurationVar(&dst.CPUInterval, "cpu-interval", def.CPUInterval, "cpu sample interval")
	fs.DurationVar(&dst.FullscreenInterval, "fullscreen-interval", def.FullscreenInterval, "fullscreen check interval")
	fs.DurationVar(&dst.TooltipInterval, "tooltip-interval", def.TooltipInterval, "tooltip refresh interval")
	fs.DurationVar(&dst.BatteryCacheTTL, "battery-cache", def.BatteryCacheTTL, "reuse battery reads for this long (0 disables)")
	fs.DurationVar(&dst.WindowCacheTTL, "window-cache", def.WindowCacheTTL, "reuse window enumeration for this long")
	fs.IntVar(&dst.Samples, "samples", def.Samples, "cpu sparkline sample count")
	fs.IntVar(&dst.Width, "width", def.Width, "overlay width in cells")
	fs.StringVar(&dst.Theme, "theme", def.Theme, "initial theme: dark|light")
	fs.BoolVar(&dst.CPUGraph, "cpu-graph", def.CPUGraph, "draw the cpu sparkline")
	fs.BoolVar(&dst.Tooltips, "tooltips", def.Tooltips, "show hover tooltips")
	fs.BoolVar(&dst.HideOnFullscreen, "hide-on-fullscreen", def.HideOnFullscreen, "hide while a fullscreen window is up")
	fs.StringVar(&dst.LogFile, "log-file", def.LogFile, "write logs to this file")
	fs.StringVar(&dst.LogLevel, "log-level", def.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&dst.MetricsAddr, "metrics-addr", def.MetricsAddr, "serve prometheus metrics on this address")
}

// ApplyFlags copies only the flags the user set from src into dst, so that
// file and env values survive untouched flags.
func ApplyFlags(fs *pflag.FlagSet, src Config, dst *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "battery-interval":
			dst.BatteryInterval = src.BatteryInterval
		case "network-interval":
			dst.NetworkInterval = src.NetworkInterval
		case "cpu-interval":
			dst.CPUInterval = src.CPUInterval
		case "fullscreen-interval":
			dst.FullscreenInterval = src.FullscreenInterval
		case "tooltip-interval":
			dst.TooltipInterval = src.TooltipInterval
		case "battery-cache":
			dst.BatteryCacheTTL = src.BatteryCacheTTL
		case "window-cache":
			dst.WindowCacheTTL = src.WindowCacheTTL
		case "samples":
			dst.Samples = src.Samples
		case "width":
			dst.Width = src.Width
		case "theme":
			dst.Theme = src.Theme
		case "cpu-graph":
			dst.CPUGraph = src.CPUGraph
		case "tooltips":
			dst.Tooltips = src.Tooltips
		case "hide-on-fullscreen":
			dst.HideOnFullscreen = src.HideOnFullscreen
		case "log-file":
			dst.LogFile = src.LogFile
		case "log-level":
			dst.LogLevel = src.LogLevel
		case "metrics-addr":
			dst.MetricsAddr = src.MetricsAddr
		}
	})
}

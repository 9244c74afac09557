// Package config loads process settings from ARTIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"ArtistBoard/internal/render"
	"ArtistBoard/internal/replay"
)

// ErrInvalid is returned by Validate for settings that cannot be used.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "ARTIST_"

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config is the validated process configuration.
type Config struct {
	Width      int     `env:"WIDTH" envDefault:"500"`
	Height     int     `env:"HEIGHT" envDefault:"500"`
	Background string  `env:"BACKGROUND" envDefault:"#cccccc"`
	LineWeight float64 `env:"LINE_WEIGHT" envDefault:"1"`
	LineColor  string  `env:"LINE_COLOR" envDefault:"black"`

	Storage     string `env:"STORAGE" envDefault:"sqlite"`
	StoragePath string `env:"STORAGE_PATH"`
	StorageKey  string `env:"STORAGE_KEY" envDefault:"data"`

	Pacing      string        `env:"PACING" envDefault:"uniform"`
	MinInterval time.Duration `env:"MIN_INTERVAL" envDefault:"1ms"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	background color.Color
	style      render.Style
	pacing     replay.Pacing
	level      slog.Level
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and resolves the parsed forms returned by the
// accessors. It fills in StoragePath when it is empty.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	bg, err := render.ParseColor(c.Background)
	if err != nil {
		return fmt.Errorf("%w: background: %w", ErrInvalid, err)
	}
	lc, err := render.ParseColor(c.LineColor)
	if err != nil {
		return fmt.Errorf("%w: line color: %w", ErrInvalid, err)
	}
	st := render.Style{Weight: c.LineWeight, Color: lc}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageSQLite:
		if c.StoragePath == "" {
			c.StoragePath = "artistboard.db"
		}
	case StorageFile:
		if c.StoragePath == "" {
			c.StoragePath = "artistboard"
		}
	case StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalid, c.Storage)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("%w: storage key is empty", ErrInvalid)
	}

	pacing, err := replay.ParsePacing(c.Pacing)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("%w: min interval %v", ErrInvalid, c.MinInterval)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalid, err)
	}

	c.background = bg
	c.style = st
	c.pacing = pacing
	c.level = level
	return nil
}

func (c Config) BackgroundColor() color.Color { return c.background }
func (c Config) Style() render.Style          { return c.style }
func (c Config) PacingMode() replay.Pacing    { return c.pacing }
func (c Config) Level() slog.Level            { return c.level }

// Package config loads editor settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-flow/pkg/history"
	"github.com/dd0wney/cluso-flow/pkg/logging"
	"github.com/dd0wney/cluso-flow/pkg/validation"
)

// Environment overrides
const (
	EnvLogLevel     = "LOG_LEVEL"
	EnvHistoryLimit = "CLUSO_FLOW_HISTORY_LIMIT"
)

// MaxHistoryLimit bounds the undo depth a config file may ask for
const MaxHistoryLimit = 10000

// Config holds editor configuration
type Config struct {
	History   HistoryConfig   `yaml:"history"`
	Duplicate DuplicateConfig `yaml:"duplicate"`
	Footprint FootprintConfig `yaml:"footprint"`
	Arrange   ArrangeConfig   `yaml:"arrange"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HistoryConfig controls the undo stack
type HistoryConfig struct {
	// Limit is the number of snapshots kept (default: 100)
	Limit int `yaml:"limit"`
}

// DuplicateConfig controls where duplicated nodes are placed
type DuplicateConfig struct {
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

// FootprintConfig is the canvas size of a node, used to place nodes created
// from a paused solder next to the cursor.
type FootprintConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ArrangeConfig controls auto layout spacing
type ArrangeConfig struct {
	ColumnGap float64 `yaml:"column_gap"`
	RowGap    float64 `yaml:"row_gap"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		History:   HistoryConfig{Limit: history.DefaultLimit},
		Duplicate: DuplicateConfig{OffsetX: 40, OffsetY: 40},
		Footprint: FootprintConfig{Width: 200, Height: 60},
		Arrange:   ArrangeConfig{ColumnGap: 80, RowGap: 40},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Logging.Level = getEnvOrDefault(EnvLogLevel, c.Logging.Level)

	if v := os.Getenv(EnvHistoryLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHistoryLimit, v, err)
		}
		c.History.Limit = limit
	}
	return nil
}

// Validate checks every setting and reports all problems at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config")
	cv.RangeInt("history.limit", c.History.Limit, 1, MaxHistoryLimit).
		NonNegativeFloat("duplicate.offset_x", c.Duplicate.OffsetX).
		NonNegativeFloat("duplicate.offset_y", c.Duplicate.OffsetY).
		PositiveFloat("footprint.width", c.Footprint.Width).
		PositiveFloat("footprint.height", c.Footprint.Height).
		NonNegativeFloat("arrange.column_gap", c.Arrange.ColumnGap).
		NonNegativeFloat("arrange.row_gap", c.Arrange.RowGap).
		OneOf("logging.level", c.Logging.Level, logging.LevelNames).
		Custom("duplicate", func() error {
			if c.Duplicate.OffsetX == 0 && c.Duplicate.OffsetY == 0 {
				return errors.New("offset must move duplicates off their originals")
			}
			return nil
		})
	return cv.Validate()
}

// LogLevel returns the configured level
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	return validation.DefaultOr(os.Getenv(key), defaultValue)
}

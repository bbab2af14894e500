package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ExcludeModeGlob      = "glob"
	ExcludeModeSubstring = "substring"
)

var (
	ErrInvalidInterval    = errors.New("check interval must be positive")
	ErrInvalidExcludeMode = errors.New("unknown exclude mode")
	ErrEmptyWatchDir      = errors.New("watch directory is empty")
)

// Config is loaded once at startup.
//
// cleanenv applies env-default to zero values, so an explicit
// check_interval of 0 reads as the 5000ms default and only negative
// intervals reach Validate as invalid. For the same reason booleans
// default to false, and a negative history_keep keeps the whole history.
type Config struct {
	Env             string   `yaml:"env" env:"ENV" env-default:"local"`
	WatchDir        string   `yaml:"watch_dir" env:"WATCH_DIR" env-default:"."`
	LogFile         string   `yaml:"log_file" env:"LOG_FILE" env-default:"file-changes.log"`
	CheckInterval   int      `yaml:"check_interval" env:"CHECK_INTERVAL" env-default:"5000"`
	ExcludePatterns []string `yaml:"exclude_patterns" env:"EXCLUDE_PATTERNS" env-separator:"," env-default:".git,node_modules,.DS_Store"`
	ExcludeMode     string   `yaml:"exclude_mode" env:"EXCLUDE_MODE" env-default:"glob"`
	StateDir        string   `yaml:"state_dir" env:"STATE_DIR" env-default:".dirwatch"`
	DisableHistory  bool     `yaml:"disable_history" env:"DISABLE_HISTORY"`
	HistoryKeep     int      `yaml:"history_keep" env:"HISTORY_KEEP" env-default:"10000"`
}

// Interval returns the scan period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CheckInterval) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.WatchDir == "" {
		return ErrEmptyWatchDir
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, c.CheckInterval)
	}
	switch c.ExcludeMode {
	case ExcludeModeGlob, ExcludeModeSubstring:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExcludeMode, c.ExcludeMode)
	}
	return nil
}

// Resolve turns the relative paths of the config into absolute ones.
// Relative log file and state paths are taken relative to the working
// directory, like the watch directory itself.
func (c *Config) Resolve() error {
	var err error
	if c.WatchDir, err = filepath.Abs(c.WatchDir); err != nil {
		return fmt.Errorf("failed to resolve watch dir: %w", err)
	}
	if c.LogFile, err = filepath.Abs(c.LogFile); err != nil {
		return fmt.Errorf("failed to resolve log file: %w", err)
	}
	if c.StateDir, err = filepath.Abs(c.StateDir); err != nil {
		return fmt.Errorf("failed to resolve state dir: %w", err)
	}
	return nil
}

// Load reads the config file when configPath is set, otherwise only the
// environment and defaults are used.
// Priority: env > file > default.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	} else {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

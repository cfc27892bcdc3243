package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store selects where per-file preferences are kept.
type Store struct {
	Backend string `toml:"backend" yaml:"backend"` // sqlite, file, memory
	Path    string `toml:"path" yaml:"path"`
}

// Sync tunes the subtitle follower.
type Sync struct {
	AutoSync  bool `toml:"auto_sync" yaml:"auto_sync"`
	MinWaitMs int  `toml:"min_wait_ms" yaml:"min_wait_ms"`
	// nudge step for d+ / d- in the play command
	NudgeStepMs int `toml:"nudge_step_ms" yaml:"nudge_step_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // auto, console, json
}

type Config struct {
	Store   Store   `toml:"store" yaml:"store"`
	Sync    Sync    `toml:"sync" yaml:"sync"`
	Logging Logging `toml:"logging" yaml:"logging"`
}

// environment overrides, applied after the config file
const (
	envStoreBackend = "LIPIPLAY_STORE_BACKEND"
	envStorePath    = "LIPIPLAY_STORE_PATH"
	envAutoSync     = "LIPIPLAY_AUTO_SYNC"
	envMinWait      = "LIPIPLAY_MIN_WAIT_MS"
	envLogLevel     = "LIPIPLAY_LOG_LEVEL"
	envLogFormat    = "LIPIPLAY_LOG_FORMAT"
)

// DefaultPath is the config file used when none is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "lipiplay", "config.toml"), nil
}

// Load builds the configuration: defaults, then the file at path (or
// DefaultPath when empty), then a .env file in the working directory and
// LIPIPLAY_* variables. It returns the resolved file path and whether the
// file existed. A missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved := strings.TrimSpace(path)
	if resolved == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = p
	}
	resolved, err := expandHome(resolved)
	if err != nil {
		return nil, "", false, err
	}

	exists := true
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	default:
		if err := decode(resolved, data, cfg); err != nil {
			return nil, resolved, true, err
		}
	}

	// a missing .env is normal
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, resolved, exists, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}

	return cfg, resolved, exists, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) applyEnv() error {
	if v := os.Getenv(envStoreBackend); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(envStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(envAutoSync); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envAutoSync, err)
		}
		c.Sync.AutoSync = b
	}
	if v := os.Getenv(envMinWait); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envMinWait, err)
		}
		c.Sync.MinWaitMs = n
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		c.Logging.Format = v
	}
	return nil
}

func (c *Config) normalize() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	path := strings.TrimSpace(c.Store.Path)
	if path == "" && c.Store.Backend != "memory" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		name := "prefs.db"
		if c.Store.Backend == "file" {
			name = "prefs.json"
		}
		path = filepath.Join(dir, name)
	}
	if path != "" {
		expanded, err := expandHome(path)
		if err != nil {
			return err
		}
		path = expanded
	}
	c.Store.Path = path
	return nil
}

// dataDir follows XDG_DATA_HOME, falling back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lipiplay"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lipiplay"), nil
}

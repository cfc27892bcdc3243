package config

import "fmt"

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("store.backend must be sqlite, file or memory, got %q", c.Store.Backend)
	}
	if c.Sync.MinWaitMs <= 0 {
		return fmt.Errorf("sync.min_wait_ms must be positive, got %d", c.Sync.MinWaitMs)
	}
	if c.Sync.NudgeStepMs <= 0 {
		return fmt.Errorf("sync.nudge_step_ms must be positive, got %d", c.Sync.NudgeStepMs)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	return nil
}

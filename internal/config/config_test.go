package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	for _, key := range []string{
		envStoreBackend, envStorePath, envAutoSync, envMinWait, envLogLevel, envLogFormat,
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "missing.toml")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, "data", "lipiplay", "prefs.db"), cfg.Store.Path)
	assert.True(t, cfg.Sync.AutoSync)
	assert.Equal(t, 10, cfg.Sync.MinWaitMs)
	assert.Equal(t, 100, cfg.Sync.NudgeStepMs)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
}

func TestLoadTOML(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "config.toml")
	writeFile(t, path, `
[store]
backend = "File"

[sync]
auto_sync = false
min_wait_ms = 25

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, "data", "lipiplay", "prefs.json"), cfg.Store.Path)
	assert.False(t, cfg.Sync.AutoSync)
	assert.Equal(t, 25, cfg.Sync.MinWaitMs)
	assert.Equal(t, 100, cfg.Sync.NudgeStepMs, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadYAML(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "config.yaml")
	writeFile(t, path, `
store:
  backend: memory
sync:
  nudge_step_ms: 250
`)

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, 250, cfg.Sync.NudgeStepMs)
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolateEnv(t)
	path := filepath.Join(home, "config.toml")
	writeFile(t, path, "[sync]\nauto_sync = true\n")

	t.Setenv(envAutoSync, "false")
	t.Setenv(envMinWait, "40")
	t.Setenv(envStorePath, "~/prefs/custom.db")
	t.Setenv(envLogLevel, "warn")

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Sync.AutoSync)
	assert.Equal(t, 40, cfg.Sync.MinWaitMs)
	assert.Equal(t, filepath.Join(home, "prefs", "custom.db"), cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		env     map[string]string
	}{
		{name: "bad toml", file: "c.toml", content: "[store\n"},
		{name: "bad yaml", file: "c.yaml", content: "store: [\n"},
		{name: "unknown backend", file: "c.toml", content: "[store]\nbackend = \"redis\"\n"},
		{name: "zero min wait", file: "c.toml", content: "[sync]\nmin_wait_ms = 0\n"},
		{name: "bad level", file: "c.toml", content: "[logging]\nlevel = \"loud\"\n"},
		{name: "bad format", file: "c.toml", content: "[logging]\nformat = \"xml\"\n"},
		{name: "bad env bool", file: "c.toml", env: map[string]string{envAutoSync: "maybe"}},
		{name: "bad env int", file: "c.toml", env: map[string]string{envMinWait: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(home, tt.file)
			writeFile(t, path, tt.content)

			_, _, _, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	home := isolateEnv(t)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config", "lipiplay", "config.toml"), path)
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, toml.Unmarshal([]byte(SampleConfig()), cfg))

	want := Default()
	assert.Equal(t, want.Store.Backend, cfg.Store.Backend)
	assert.Equal(t, want.Sync, cfg.Sync)
	assert.Equal(t, want.Logging, cfg.Logging)
}

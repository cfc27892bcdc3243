package config

// Default returns the built-in configuration. Store.Path is left empty
// and resolved by normalize.
func Default() *Config {
	return &Config{
		Store: Store{
			Backend: "sqlite",
		},
		Sync: Sync{
			AutoSync:    true,
			MinWaitMs:   10,
			NudgeStepMs: 100,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// TOML written by `lipiplay config init`
const sampleConfig = `# lipiplay configuration

[store]
# sqlite, file or memory
backend = "sqlite"
# defaults to the user data dir when empty
path = ""

[sync]
auto_sync = true
min_wait_ms = 10
nudge_step_ms = 100

[logging]
# debug, info, warn, error
level = "info"
# auto, console or json
format = "auto"
`

func SampleConfig() string {
	return sampleConfig
}

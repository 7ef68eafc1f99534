// Package config loads user settings for termtactoe: player names, the UI
// theme, pacing and logging.
package config

// DefaultConfig returns the configuration described by the env-default tags,
// with any TERMTACTOE_* overrides from the environment applied.
func DefaultConfig() (*Config, error) {
	return Load("")
}

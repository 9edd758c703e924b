// Package config loads saiten's grading and column-hint configuration.
package config

import "os"

// Environment variables naming default files.
const (
	EnvConfig  = "SAITEN_CONFIG"
	EnvColumns = "SAITEN_COLUMNS"
	EnvEvents  = "SAITEN_EVENTS"
)

// ResolvePath returns flagValue when set, else the value of the environment
// variable env. An empty result means "use built-in defaults".
func ResolvePath(flagValue, env string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(env)
}

// Load resolves the config and column-hint paths from flags and the
// environment and returns the merged configuration. With neither set it
// returns the defaults.
func Load(configFlag, columnsFlag string) (*Config, error) {
	cfg := Default()
	if path := ResolvePath(configFlag, EnvConfig); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if path := ResolvePath(columnsFlag, EnvColumns); path != "" {
		hints, err := LoadColumnsFile(path)
		if err != nil {
			return nil, err
		}
		cfg.MergeHints(hints)
	}
	return cfg, nil
}

// Package config handles configuration for the kartoteka CLI,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the kartoteka CLI.
//
// Fields:
//   - DatabaseDSN: path to the collection database file.
//   - LogLevel: minimum log level ("debug", "info", "warn", "error").
//   - BusyTimeout: sqlite busy timeout applied on open.
type Config struct {
	DatabaseDSN string
	LogLevel    string
	BusyTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "kartoteka.db"
	c.LogLevel = "info"
	c.BusyTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

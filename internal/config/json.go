package config

import (
	"encoding/json"
	"os"

	"github.com/andrejsk/kartoteka/internal/flagx"
	"github.com/andrejsk/kartoteka/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the busy timeout either as a string
// like "5s" or as integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN string         `json:"database_dsn"`
	LogLevel    string         `json:"log_level"`
	BusyTimeout timex.Duration `json:"busy_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, nothing is loaded.
// Only fields present in the JSON override the defaults.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.BusyTimeout.Duration > 0 {
		cfg.BusyTimeout = jc.BusyTimeout.Duration
	}
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/andrejsk/kartoteka/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   collection database path
//	-l string   log level ("debug", "info", "warn", "error")
//	-t int      sqlite busy timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so subcommands and their arguments pass through
// untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "collection database path")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	busyTimeout := fs.Int("t", int(config.BusyTimeout.Seconds()), "sqlite busy timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.BusyTimeout = time.Duration(*busyTimeout) * time.Second
}

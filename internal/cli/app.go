// Package cli implements the kartoteka command-line application. It is a
// thin layer over the collection package: each subcommand parses its
// arguments, invokes one collection operation and prints the result.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/andrejsk/kartoteka/internal/collection"
	"github.com/andrejsk/kartoteka/internal/config"
	"github.com/andrejsk/kartoteka/internal/logging"
)

type App struct {
	config *config.Config
	coll   *collection.Collection
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))

	coll, err := collection.Open(ctx, cfg.DatabaseDSN, cfg.BusyTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}

	return &App{config: cfg, coll: coll, out: os.Stdout}, nil
}

func (a *App) Close() error {
	return a.coll.Close()
}

// Run dispatches the first positional argument as a subcommand. Flag-style
// arguments consumed by the config layer are skipped when locating it.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "add":
		return a.runAdd(ctx, rest)
	case "rename":
		return a.runRename(ctx, rest)
	case "list":
		return a.runList(ctx)
	case "undo":
		return a.runUndo(ctx)
	case "recover":
		return a.runRecover(ctx, rest)
	case "":
		return fmt.Errorf("usage: kartoteka [-d dsn] [-c config.json] [-l level] <add|rename|list|undo|recover> ...")
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// splitCommand finds the first positional argument and returns it together
// with everything that follows. Leading flags and their values belong to
// the config layer and are skipped.
func splitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return arg, args[i+1:]
		}
		if !strings.Contains(arg, "=") {
			i++ // skip the flag value
		}
	}
	return "", nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

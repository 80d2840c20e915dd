package main

import (
	"context"
	"log"
	"os"

	"github.com/andrejsk/kartoteka/internal/buildinfo"
	"github.com/andrejsk/kartoteka/internal/cli"
	"github.com/andrejsk/kartoteka/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		app.Close()
		log.Fatalf("%v", err)
	}

	if err := app.Close(); err != nil {
		log.Fatalf("%v", err)
	}
}

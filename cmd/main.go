package main

import (
	"context"
	"os"

	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.ResolveConfig("config.toml", ".env")
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if err := shared.ConfigureLogLevel(logger, config.Log.Level); err != nil {
		logger.Fatalf("failed to configure logger: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "mediatrack",
		Usage:    "Track movies, books, games and shows across media",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

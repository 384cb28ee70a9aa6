// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Migrate the database, seed sample data and serve the REST API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "no-seed",
				Usage: "Skip first-run sample data",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing, initialize the database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// rollbackCommand reverts the newest migration.
func rollbackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "rollback",
		Usage:  "Roll back the most recently applied migration",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Rollback,
	}
}

// statusCommand lists applied migrations.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "List the applied migrations",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// seedCommand inserts sample data regardless of existing users.
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert reference data and sample users, skipping emails already taken",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Seed,
	}
}

// exportCommand writes activity histories to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export user activity histories",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: mediatrack_export_{timestamp})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent export workers (max 10)",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Histories loaded per second",
				Value: 20,
			},
			&cli.StringSliceFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User ID or email to export, repeatable (default: all users)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the export summary as JSON",
			},
		},
		Action: r.Export,
	}
}

// browseCommand returns the top-level TUI command.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse users and their activity in an interactive terminal UI",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Format for exports started from the browser",
				Value: "markdown",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Directory for exports started from the browser",
				Value: "exports",
			},
		},
		Action: r.Browse,
	}
}

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/desertthunder/mediatrack/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal UI over users and their activity.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/mediatrack-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, repositories.NewStore(db), ui.Options{
		Format:    cmd.String("format"),
		OutputDir: cmd.String("out"),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

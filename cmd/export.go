package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/desertthunder/mediatrack/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes the activity history of the selected users (all users by default) to disk.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if !slices.Contains(tasks.Formats, format) {
		return fmt.Errorf("%w: --format must be one of %s, got %q", shared.ErrInvalidFlag, strings.Join(tasks.Formats, ", "), format)
	}
	if cmd.Int("workers") < 1 {
		return fmt.Errorf("%w: --workers must be at least 1", shared.ErrInvalidFlag)
	}

	db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repositories.NewStore(db)

	ids, err := resolveUserIDs(ctx, store, cmd.StringSlice("user"))
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		r.logger.Warn("no users to export")
		r.writePlain("No users to export\n")
		return nil
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("out"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("exporting histories", "users", len(ids), "format", opts.Format)

	prog := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := tasks.NewExporter(store).BulkExport(ctx, prog, ids, opts)
	close(prog)
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Manifest(), true)
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Users:      %d\n", result.TotalUsers)
	r.writePlain("Successful: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	r.writePlain("Manifest:   %s\n", result.ManifestPath)

	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %v\n", res.UserName, res.Error)
		}
	}
	return nil
}

// resolveUserIDs maps the --user values to user IDs. A value containing "@" is looked up by email.
// With no values every user is selected.
func resolveUserIDs(ctx context.Context, store *repositories.Store, values []string) ([]string, error) {
	if len(values) == 0 {
		users, err := store.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		ids := make([]string, len(users))
		for i, u := range users {
			ids[i] = u.UserID
		}
		return ids, nil
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if !strings.Contains(v, "@") {
			ids = append(ids, v)
			continue
		}

		user, err := store.Users.GetByEmail(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %s: %w", v, err)
		}
		ids = append(ids, user.UserID)
	}
	return ids, nil
}

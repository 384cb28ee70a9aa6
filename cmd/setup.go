package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config, err := shared.ResolveConfig(configPath, ".env")
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, applied)
	return nil
}

// Rollback reverts the most recently applied migration.
func (r *Runner) Rollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigration(ctx, db)
	if errors.Is(err, shared.ErrNoMigrations) {
		r.logger.Warn("nothing to roll back")
		r.writePlain("No migrations to roll back\n")
		return nil
	} else if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	r.logger.Info("rolled back migration", "version", version)
	r.writePlain("✓ Rolled back migration %d\n", version)
	return nil
}

// Status lists the applied migrations, oldest first.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.MigrationStatus(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(applied, false)
	}

	if len(applied) == 0 {
		r.writePlain("No migrations applied\n")
		return nil
	}

	r.writePlainHeader("Applied Migrations")
	for _, m := range applied {
		r.writePlain("  %04d  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
	}
	return nil
}

// Seed inserts reference data and the sample users, skipping users whose email already exists.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	res, err := repositories.NewStore(db).ForceSeed(ctx)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]int{"users": res.Users}, false)
	}

	r.writePlain("✓ Seeded %d sample users\n", res.Users)
	return nil
}

// openDatabase opens the database named by the resolved config.
func (r *Runner) openDatabase(cmd *cli.Command) (*sql.DB, error) {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

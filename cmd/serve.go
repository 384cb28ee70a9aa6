package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mediatrack/internal/repositories"
	"github.com/desertthunder/mediatrack/internal/server"
	"github.com/desertthunder/mediatrack/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve migrates the database, optionally seeds it and serves the API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	serverCfg := config.Server
	if cmd.IsSet("host") {
		serverCfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		serverCfg.Port = int(cmd.Int("port"))
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	applied, err := shared.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Info("database ready", "path", config.Database.Path, "migrations_applied", applied)

	store := repositories.NewStore(db)

	if config.Seed.Enabled && !cmd.Bool("no-seed") {
		if res, err := store.Seed(ctx); err != nil {
			r.logger.Warn("failed to seed sample data", "error", err)
		} else if !res.Skipped {
			r.logger.Info("seeded sample data", "users", res.Users)
		}
	}

	srv := &http.Server{
		Addr:         serverCfg.Addr(),
		Handler:      server.New(store, r.logger, serverCfg),
		ReadTimeout:  serverCfg.ReadTimeout(),
		WriteTimeout: serverCfg.WriteTimeout(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down", "timeout", serverCfg.ShutdownTimeout())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	r.logger.Info("server stopped")
	return nil
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mediatrack/internal/formatter"
	"github.com/desertthunder/mediatrack/internal/shared"
	tu "github.com/desertthunder/mediatrack/internal/testing"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func newTestRunner() (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output}), output
}

func runApp(r *Runner, args ...string) error {
	app := &cli.Command{Name: "mediatrack", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"mediatrack"}, args...))
}

// writeConfig writes a config file pointing at a database inside dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[database]\npath = %q\n\n[log]\nlevel = \"error\"\n", filepath.Join(dir, "app.db"))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := newTestRunner()

		var names []string
		for _, c := range runner.register() {
			names = append(names, c.Name)
		}

		want := "serve,setup,rollback,status,seed,export,browse"
		if got := strings.Join(names, ","); got != want {
			t.Errorf("expected commands %s, got %s", want, got)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			runner, output := newTestRunner()
			if err := runner.writeJSON(map[string]int{"users": 3}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if output.String() != "{\"users\":3}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			runner, output := newTestRunner()
			if err := runner.writeJSON(map[string]int{"users": 3}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "  \"users\": 3") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("unmarshalable value", func(t *testing.T) {
			runner, _ := newTestRunner()
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &tu.FWriter{}})
			if err := runner.writeJSON("x", false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("newline failure", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &w})
			if err := runner.writeJSON("x", false); err == nil || !strings.Contains(err.Error(), "newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		runner, output := newTestRunner()
		if err := runner.writePlain("%d users\n", 3); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		runner.writePlainHeader("Title")

		if !strings.HasPrefix(output.String(), "3 users\n═") || !strings.Contains(output.String(), "Title\n") {
			t.Errorf("unexpected output %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("setup creates config and database", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		runner, output := newTestRunner()
		if err := runApp(runner, "setup"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "data", "app.db"))
		if !strings.Contains(output.String(), "1 migrations applied") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("setup with existing config", func(t *testing.T) {
		dir := t.TempDir()
		config := writeConfig(t, dir)

		runner, output := newTestRunner()
		if err := runApp(runner, "setup", "-c", config); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := runApp(runner, "setup", "-c", config); err != nil {
			t.Fatalf("second setup failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "app.db"))
		if !strings.Contains(output.String(), "0 migrations applied") {
			t.Errorf("second setup should apply nothing, got %q", output.String())
		}
		if runner.config.Database.Path != filepath.Join(dir, "app.db") {
			t.Errorf("runner config not updated: %s", runner.config.Database.Path)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("[server]\nport = 0\n"), 0644); err != nil {
			t.Fatal(err)
		}

		runner, _ := newTestRunner()
		if err := runApp(runner, "setup", "-c", path); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		config := writeConfig(t, t.TempDir())
		runner, output := newTestRunner()

		if err := runApp(runner, "setup", "-c", config); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := runApp(runner, "rollback", "-c", config); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if err := runApp(runner, "rollback", "-c", config); err != nil {
			t.Fatalf("second rollback failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Rolled back migration 0") {
			t.Errorf("expected rollback message, got %q", out)
		}
		if !strings.Contains(out, "No migrations to roll back") {
			t.Errorf("expected empty rollback message, got %q", out)
		}
	})

	t.Run("status", func(t *testing.T) {
		config := writeConfig(t, t.TempDir())
		runner, output := newTestRunner()

		if err := runApp(runner, "status", "-c", config); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "No migrations applied") {
			t.Errorf("expected empty status, got %q", output.String())
		}

		if err := runApp(runner, "setup", "-c", config); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		output.Reset()

		if err := runApp(runner, "status", "-c", config); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Applied Migrations") || !strings.Contains(output.String(), "  0000  ") {
			t.Errorf("unexpected status output %q", output.String())
		}

		output.Reset()
		if err := runApp(runner, "status", "-c", config, "--json"); err != nil {
			t.Fatalf("status --json failed: %v", err)
		}
		var applied []shared.AppliedMigration
		if err := json.Unmarshal(output.Bytes(), &applied); err != nil {
			t.Fatalf("status output is not valid JSON: %v\n%s", err, output.String())
		}
		if len(applied) != 1 || applied[0].Version != 0 {
			t.Errorf("unexpected applied migrations %+v", applied)
		}
	})

	t.Run("seed", func(t *testing.T) {
		config := writeConfig(t, t.TempDir())
		runner, output := newTestRunner()

		if err := runApp(runner, "seed", "-c", config); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if !strings.Contains(output.String(), "Seeded 3 sample users") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := runApp(runner, "seed", "-c", config, "--json"); err != nil {
			t.Fatalf("second seed failed: %v", err)
		}
		if output.String() != "{\"users\":0}\n" {
			t.Errorf("second seed should skip existing emails, got %q", output.String())
		}
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("no users", func(t *testing.T) {
		config := writeConfig(t, t.TempDir())
		runner, output := newTestRunner()

		if err := runApp(runner, "export", "-c", config); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(output.String(), "No users to export") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("all users as csv", func(t *testing.T) {
		dir := t.TempDir()
		config := writeConfig(t, dir)
		out := filepath.Join(dir, "exports")
		runner, output := newTestRunner()

		if err := runApp(runner, "seed", "-c", config); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		output.Reset()

		if err := runApp(runner, "export", "-c", config, "--format", "csv", "--out", out, "--rate", "1000"); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		summary := output.String()
		if !strings.Contains(summary, "Successful: 3") || !strings.Contains(summary, "Failed:     0") {
			t.Errorf("unexpected summary %q", summary)
		}
		tu.AssertFileExists(t, filepath.Join(out, "export_manifest.json"))
	})

	t.Run("selected users as json summary", func(t *testing.T) {
		dir := t.TempDir()
		config := writeConfig(t, dir)
		runner, output := newTestRunner()

		if err := runApp(runner, "seed", "-c", config); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		output.Reset()

		err := runApp(runner, "export", "-c", config, "--out", filepath.Join(dir, "out"),
			"--user", "missing", "--rate", "1000", "--json")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		var manifest formatter.Manifest
		if err := json.Unmarshal(output.Bytes(), &manifest); err != nil {
			t.Fatalf("summary is not valid JSON: %v\n%s", err, output.String())
		}
		if manifest.Format != "json" || manifest.Total != 1 || manifest.Failed != 1 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		if len(manifest.Entries) != 1 || !strings.Contains(manifest.Entries[0].Error, "not found") {
			t.Errorf("expected not found entry, got %+v", manifest.Entries)
		}
	})

	t.Run("user selected by email", func(t *testing.T) {
		dir := t.TempDir()
		config := writeConfig(t, dir)
		runner, output := newTestRunner()

		if err := runApp(runner, "seed", "-c", config); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		output.Reset()

		err := runApp(runner, "export", "-c", config, "--out", filepath.Join(dir, "out"),
			"--user", "jane.smith@example.com", "--rate", "1000", "--json")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		var manifest formatter.Manifest
		if err := json.Unmarshal(output.Bytes(), &manifest); err != nil {
			t.Fatalf("summary is not valid JSON: %v\n%s", err, output.String())
		}
		if manifest.Successful != 1 || len(manifest.Entries) != 1 || manifest.Entries[0].UserName != "Jane Smith" {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		err = runApp(runner, "export", "-c", config, "--out", filepath.Join(dir, "out"), "--user", "nobody@example.com")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invalid flags", func(t *testing.T) {
		dir := t.TempDir()
		config := writeConfig(t, dir)
		runner, _ := newTestRunner()

		err := runApp(runner, "export", "-c", config, "--format", "xml", "--out", filepath.Join(dir, "out"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag for --format, got %v", err)
		}

		err = runApp(runner, "export", "-c", config, "--workers", "0", "--out", filepath.Join(dir, "out"))
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag for --workers, got %v", err)
		}
	})
}

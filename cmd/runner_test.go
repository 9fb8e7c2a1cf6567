package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/loganravin4/lokedex/internal/shared"
	tu "github.com/loganravin4/lokedex/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestRunner(t *testing.T, config *shared.Config) (*Runner, *bytes.Buffer) {
	t.Helper()

	if config == nil {
		config = &shared.Config{
			Server: shared.ServerConfig{Host: "localhost", Port: 4321},
		}
	}

	var out bytes.Buffer
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(&out),
		Output: &out,
	})

	return runner, &out
}

func TestNewRunner(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil || runner.spotify == nil || runner.api == nil {
			t.Error("expected all dependencies to be defaulted")
		}
		if runner.logger == nil || runner.output == nil {
			t.Error("expected logger and output to be defaulted")
		}
	})

	t.Run("Registers All Commands", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil)

		commands := runner.register()
		if len(commands) != 6 {
			t.Fatalf("expected 6 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "auth", "now-playing", "stats", "widget", "init"} {
			if !names[want] {
				t.Errorf("missing command %s", want)
			}
		}
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("Compact Output", func(t *testing.T) {
		runner, out := newTestRunner(t, nil)

		if err := runner.writeJSON(map[string]string{"k": "v"}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.String() != "{\"k\":\"v\"}\n" {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Write Failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writeJSON(map[string]string{"k": "v"}, false); err == nil {
			t.Error("expected a write error")
		}
	})
}

func TestNowPlayingCommand(t *testing.T) {
	t.Run("Missing Credentials Prints Null", func(t *testing.T) {
		runner, out := newTestRunner(t, nil)

		app := &cli.Command{Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"lokedex", "now-playing"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out.String(), "null") {
			t.Errorf("expected null output, got %q", out.String())
		}
	})
}

func TestStatsCommand(t *testing.T) {
	t.Run("Missing Credentials Prints Null", func(t *testing.T) {
		runner, out := newTestRunner(t, nil)

		app := &cli.Command{Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"lokedex", "stats"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(out.String(), "null") {
			t.Errorf("expected null output, got %q", out.String())
		}
	})
}

func TestAuthCommand(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		runner, _ := newTestRunner(t, nil)

		app := &cli.Command{Commands: runner.register()}
		err := app.Run(context.Background(), []string{"lokedex", "auth"})
		if err == nil {
			t.Fatal("expected an error without credentials")
		}
		if !strings.Contains(err.Error(), "client_id") {
			t.Errorf("expected instructive error, got %v", err)
		}
	})
}

func TestInitCommand(t *testing.T) {
	t.Run("Writes Config", func(t *testing.T) {
		runner, out := newTestRunner(t, nil)
		path := t.TempDir() + "/config.toml"

		app := &cli.Command{Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"lokedex", "init", "--config", path}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("generated config failed to load: %v", err)
		}
		if !strings.Contains(out.String(), path) {
			t.Errorf("expected the path in output, got %q", out.String())
		}
	})
}

func TestBuildRouter(t *testing.T) {
	runner, _ := newTestRunner(t, nil)

	router := runner.buildRouter()
	if router == nil {
		t.Fatal("expected a router")
	}
}

// Package handlers implements the business logic for CLI commands.
//
// Handlers load configuration, open the record store, run one operation
// through the orchestration runner and print its journal. They are called
// by the commands package and tested without cobra.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory/store"
	"github.com/imamik/switchyard/internal/orchestration"
	"github.com/imamik/switchyard/internal/provisioning"
)

// Options are the flags shared by every run command.
type Options struct {
	ConfigPath string
	Verbosity  int
	// Commit applies changes. Without it every run is a dry run.
	Commit bool
	// JSON prints the run report as JSON instead of a table.
	JSON bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the runtime configuration.
	loadConfig = config.Load

	// openStore opens the record store named by the config.
	openStore = func(cfg *config.Config) (*store.Store, error) {
		return store.Open(store.Config{
			Driver: cfg.Inventory.Driver,
			DSN:    cfg.Inventory.DSN,
			Debug:  cfg.Inventory.Debug,
		})
	}

	// newClients builds the external clients of a run.
	newClients = orchestration.DefaultClients

	// stdout receives reports, stderr receives logs.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// colorOutput reports whether stdout is a terminal.
	colorOutput = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// session is an open config, store and runner for one command.
type session struct {
	cfg    *config.Config
	store  *store.Store
	runner *orchestration.Runner
}

func (s *session) Close() error {
	return s.store.Close()
}

func openSession(opts Options) (*session, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory store: %w", err)
	}
	observer := provisioning.NewLogrObserver(provisioning.NewFuncrLogger(stderr, opts.Verbosity))
	return &session{
		cfg:    cfg,
		store:  st,
		runner: orchestration.NewRunner(cfg, st, observer, newClients()),
	}, nil
}

// run opens a session, runs op and prints what it produced.
func run(ctx context.Context, opts Options, op func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error)) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	out, err := op(ctx, s.runner)
	if out != nil && out.Journal != nil {
		if perr := printOutcome(out, opts.JSON); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return err
	}
	if out == nil || out.Journal == nil {
		return nil
	}
	if n := out.Journal.Count(provisioning.LevelFailure); n > 0 {
		return fmt.Errorf("%s run %s finished with %d failure(s)", out.Journal.Operation(), out.Journal.RunID(), n)
	}
	return nil
}

func printOutcome(out *orchestration.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	_, err := fmt.Fprint(stdout, out.Journal.Render(colorOutput()))
	if err == nil && out.ArchiveKey != "" {
		_, err = fmt.Fprintf(stdout, "report archived as %s\n", out.ArchiveKey)
	}
	return err
}

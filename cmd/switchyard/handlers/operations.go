package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/switchyard/internal/inventory/catalog"
	"github.com/imamik/switchyard/internal/orchestration"
)

// CreateSite builds a site and its floors.
func CreateSite(ctx context.Context, opts Options, in orchestration.SiteInput) error {
	return run(ctx, opts, func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error) {
		return r.CreateSite(ctx, in, opts.Commit)
	})
}

// AddSwitches names and records a batch of switches.
func AddSwitches(ctx context.Context, opts Options, in orchestration.SwitchesInput) error {
	return run(ctx, opts, func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error) {
		return r.AddSwitches(ctx, in, opts.Commit)
	})
}

// AssignAddresses gives planned switches of a tenant their management address.
func AssignAddresses(ctx context.Context, opts Options, in orchestration.AddressesInput) error {
	return run(ctx, opts, func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error) {
		return r.AssignAddresses(ctx, in, opts.Commit)
	})
}

// Promote validates switches and marks the passing ones active.
func Promote(ctx context.Context, opts Options, in orchestration.PromoteInput) error {
	return run(ctx, opts, func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error) {
		return r.Promote(ctx, in, opts.Commit)
	})
}

// ImportCatalog loads reference records from a YAML file.
func ImportCatalog(ctx context.Context, opts Options, path string) error {
	c, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	return run(ctx, opts, func(ctx context.Context, r *orchestration.Runner) (*orchestration.Outcome, error) {
		return r.ImportCatalog(ctx, c, opts.Commit)
	})
}

package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/imamik/switchyard/internal/inventory"
)

// errDryRun rolls back the dry-run transaction after all phases succeed.
var errDryRun = errors.New("dry run")

// RunPhases executes all provisioning phases sequentially and stops at the
// first aborting error. Dry runs execute inside a store transaction that is
// always rolled back.
func RunPhases(ctx *Context, phases []Phase) error {
	if ctx.Commit {
		return runPhases(ctx, phases)
	}

	err := ctx.Store.InTx(ctx, func(tx inventory.Store) error {
		if err := runPhases(ctx.WithStore(tx), phases); err != nil {
			return err
		}
		return errDryRun
	})
	if errors.Is(err, errDryRun) {
		LogInfo(ctx.Observer, "", "dry run: changes rolled back, rerun with commit to apply")
		return nil
	}
	return err
}

func runPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting run with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Run completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

package promotion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/provisioning"
)

// Outcome lists what Promote did per device.
type Outcome struct {
	Promoted  []string `json:"promoted"`
	Unchanged []string `json:"unchanged"`
	Missing   []string `json:"missing"`
	Failed    []string `json:"failed"`
}

// Promoter flips validated devices from planned to active.
type Promoter struct{}

// Promote activates every planned device that passed. Active devices are
// left untouched and other statuses are reported unchanged with a warning.
// Devices that failed validation keep their status.
func (p *Promoter) Promote(ctx *provisioning.Context, report *Report) *Outcome {
	out := &Outcome{}
	for _, res := range report.Results {
		if !res.Passed {
			metrics.Promotion(metrics.ResultSkipped)
			provisioning.LogSkipped(ctx.Observer, phase, res.Device, "left planned: "+res.Reason)
			out.Failed = append(out.Failed, res.Device)
			continue
		}
		if res.DeviceID == 0 && strings.TrimSpace(res.Device) == "" {
			metrics.Promotion(metrics.ResultFailure)
			provisioning.LogFailure(ctx.Observer, phase, res.Device, errors.New("target has no device name"))
			out.Failed = append(out.Failed, res.Device)
			continue
		}

		filter := inventory.DeviceFilter{Name: res.Device}
		if res.DeviceID != 0 {
			filter = inventory.DeviceFilter{ID: res.DeviceID}
		}
		device, err := ctx.Store.GetDevice(ctx, filter)
		switch {
		case inventory.IsNotFound(err):
			metrics.Promotion(metrics.ResultWarning)
			provisioning.LogWarning(ctx.Observer, phase, fmt.Sprintf("device %s not found in inventory", res.Device))
			out.Missing = append(out.Missing, res.Device)
			continue
		case err != nil:
			metrics.Promotion(metrics.ResultFailure)
			provisioning.LogFailure(ctx.Observer, phase, res.Device, fmt.Errorf("looking up device: %w", err))
			out.Failed = append(out.Failed, res.Device)
			continue
		}

		link := ctx.Link(provisioning.LinkDevices, device.ID)
		switch device.Status {
		case inventory.StatusPlanned:
		case inventory.StatusActive:
			metrics.Promotion(metrics.ResultSkipped)
			provisioning.LogResourceExists(ctx.Observer, phase, "device", device.Name+" (already active)", link)
			out.Unchanged = append(out.Unchanged, device.Name)
			continue
		default:
			metrics.Promotion(metrics.ResultWarning)
			provisioning.LogWarning(ctx.Observer, phase,
				fmt.Sprintf("device %s is %s, not planned; left unchanged", device.Name, device.Status))
			out.Unchanged = append(out.Unchanged, device.Name)
			continue
		}

		from := device.Status
		device.Status = inventory.StatusActive
		if err := ctx.Store.UpdateDevice(ctx, device); err != nil {
			metrics.Promotion(metrics.ResultFailure)
			provisioning.LogFailure(ctx.Observer, phase, device.Name, fmt.Errorf("setting status active: %w", err))
			out.Failed = append(out.Failed, device.Name)
			continue
		}
		metrics.Promotion(metrics.ResultSuccess)
		provisioning.LogResourceUpdated(ctx.Observer, phase, "device", device.Name, link,
			fmt.Sprintf("status %s -> %s", from, inventory.StatusActive))
		out.Promoted = append(out.Promoted, device.Name)
	}
	return out
}

// Run is one validate-and-promote pass.
type Run struct {
	Validator *Validator
	Promoter  *Promoter
	// Targets is called inside the run so store-backed testbeds see the
	// run's transaction.
	Targets func(ctx *provisioning.Context) ([]Target, error)
}

// RunResult holds both halves of a promotion run.
type RunResult struct {
	Report  *Report  `json:"report"`
	Outcome *Outcome `json:"outcome"`
}

// Phase adapts the run to provisioning.RunPhases.
func (r *Run) Phase(out **RunResult) provisioning.Phase {
	return provisioning.PhaseFunc{
		PhaseName: phase,
		Fn: func(ctx *provisioning.Context) error {
			targets, err := r.Targets(ctx)
			if err != nil {
				return err
			}
			report := r.Validator.Run(ctx, targets)
			res := &RunResult{Report: report, Outcome: r.Promoter.Promote(ctx, report)}
			if out != nil {
				*out = res
			}
			return nil
		},
	}
}

// StoreTargets builds targets from the run's store.
func StoreTargets(ctx *provisioning.Context) ([]Target, error) {
	return TestbedFromStore(ctx, ctx.Store, ctx.Config.Validation)
}

// FixedTargets returns a Targets func handing out targets.
func FixedTargets(targets []Target) func(*provisioning.Context) ([]Target, error) {
	return func(*provisioning.Context) ([]Target, error) { return targets, nil }
}

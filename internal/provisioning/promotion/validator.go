// Package promotion validates planned switches and promotes the ones that
// pass to active.
package promotion

import (
	"context"
	"fmt"

	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/util/async"
)

const phase = "promotion"

// DefaultConcurrency checks one device at a time.
const DefaultConcurrency = 1

// Result is the verdict for one device.
type Result struct {
	DeviceID uint   `json:"device_id,omitempty"`
	Device   string `json:"device"`
	Passed   bool   `json:"passed"`
	Reason   string `json:"reason,omitempty"`
}

// Report holds one result per validated target, in target order.
type Report struct {
	Results []Result `json:"results"`
}

// Passed returns the names of devices that passed.
func (r *Report) Passed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Passed {
			out = append(out, res.Device)
		}
	}
	return out
}

// Validator runs a Checker against every target.
type Validator struct {
	Checker Checker
	// Concurrency defaults to DefaultConcurrency.
	Concurrency int
}

// Run checks targets, Concurrency at a time, and journals each verdict in target order.
func (v *Validator) Run(ctx *provisioning.Context, targets []Target) *Report {
	report := &Report{}
	if len(targets) == 0 {
		provisioning.LogInfo(ctx.Observer, phase, "no devices to validate")
		return report
	}

	limit := v.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	tasks := make([]async.Task, len(targets))
	for i, t := range targets {
		tasks[i] = async.Task{Name: t.Name, Func: func(c context.Context) error {
			return v.Checker.Check(c, t)
		}}
	}
	results := async.RunParallel(ctx, tasks, limit)

	for i, r := range results {
		res := Result{DeviceID: targets[i].DeviceID, Device: r.Name, Passed: r.Err == nil}
		if r.Err != nil {
			res.Reason = r.Err.Error()
			ctx.Observer.Event(provisioning.Event{
				Type:     provisioning.EventValidationError,
				Phase:    phase,
				Resource: r.Name,
				Message:  res.Reason,
			})
		} else {
			ctx.Observer.Event(provisioning.Event{
				Type:     provisioning.EventValidationPassed,
				Phase:    phase,
				Resource: r.Name,
				Message:  fmt.Sprintf("%s passed validation", r.Name),
			})
		}
		report.Results = append(report.Results, res)
	}
	return report
}

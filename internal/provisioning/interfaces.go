package provisioning

import "context"

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// PhaseFunc adapts a function to Phase.
type PhaseFunc struct {
	PhaseName string
	Fn        func(ctx *Context) error
}

// Name implements Phase.
func (p PhaseFunc) Name() string { return p.PhaseName }

// Provision implements Phase.
func (p PhaseFunc) Provision(ctx *Context) error { return p.Fn(ctx) }

// Notifier fires the CI pipeline. Implemented by internal/platform/gitlab.Trigger.
type Notifier interface {
	Fire(ctx context.Context, variable string) error
}

// Pipeline variables set to true on the trigger call.
const (
	SitePipeline   = "SITE_PIPELINE"
	SwitchPipeline = "SWITCH_PIPELINE"
)

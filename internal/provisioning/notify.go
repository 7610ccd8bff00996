package provisioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/platform/gitlab"
)

// NotifyPipeline fires the pipeline with variable after a committing run.
// Failures are journaled and never returned.
func NotifyPipeline(ctx *Context, n Notifier, phase, variable string) {
	if !ctx.Commit {
		LogInfo(ctx.Observer, phase, "dry run: pipeline not triggered")
		return
	}
	if n == nil {
		LogInfo(ctx.Observer, phase, "pipeline trigger not configured")
		return
	}

	err := n.Fire(ctx, variable)
	var unexpected *gitlab.UnexpectedStatusError
	switch {
	case err == nil:
		metrics.PipelineTrigger(variable, metrics.ResultSuccess)
		ctx.Observer.Event(Event{
			Type:    EventPipelineTriggered,
			Phase:   phase,
			Message: fmt.Sprintf("pipeline triggered with %s", variable),
			Link:    pipelinesLink(ctx),
		})
	case errors.As(err, &unexpected):
		metrics.PipelineTrigger(variable, metrics.ResultWarning)
		ctx.Observer.Event(Event{
			Type:    EventValidationWarning,
			Phase:   phase,
			Message: fmt.Sprintf("pipeline trigger returned HTTP %d, expected 201", unexpected.StatusCode),
			Link:    pipelinesLink(ctx),
		})
	default:
		metrics.PipelineTrigger(variable, metrics.ResultFailure)
		ctx.Observer.Event(Event{
			Type:    EventPipelineFailed,
			Phase:   phase,
			Message: fmt.Sprintf("pipeline trigger failed: %v", err),
		})
	}
}

func pipelinesLink(ctx *Context) string {
	if ctx.Config == nil || ctx.Config.Pipeline.WebURL == "" {
		return ""
	}
	return strings.TrimRight(ctx.Config.Pipeline.WebURL, "/") + "/-/pipelines"
}

package testing

import (
	"context"
	"testing"
	"time"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RunContext returns a provisioning context journaling into a MockObserver.
// The journal is reachable through ctx.Journal, the observer through Observer(ctx).
func RunContext(t *testing.T, store inventory.Store, cfg *config.Config, commit bool) *provisioning.Context {
	t.Helper()
	if cfg == nil {
		cfg = MinimalConfig()
	}
	journal := provisioning.NewJournal("test", commit, NewMockObserver())
	return provisioning.NewContext(TestContext(t), cfg, store, journal, commit)
}

// EventsOfType returns the journaled events of type et.
func EventsOfType(ctx *provisioning.Context, et provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range ctx.Journal.Events() {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// EventsAtLevel returns the journaled events at level.
func EventsAtLevel(ctx *provisioning.Context, level provisioning.Level) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range ctx.Journal.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

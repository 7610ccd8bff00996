package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/provisioning"
)

// Operation names, used for journals, metrics and archive keys.
const (
	OpSite      = "site"
	OpSwitches  = "switches"
	OpAddresses = "addresses"
	OpPromote   = "promote"
	OpCatalog   = "catalog"
)

// Runner executes operations one at a time.
type Runner struct {
	config   *config.Config
	store    inventory.Store
	observer provisioning.Observer
	clients  Clients

	mu sync.Mutex
}

// NewRunner creates a Runner. observer receives every journaled event and
// may be nil.
func NewRunner(cfg *config.Config, store inventory.Store, observer provisioning.Observer, clients Clients) *Runner {
	return &Runner{config: cfg, store: store, observer: observer, clients: clients}
}

// Outcome is what a run leaves behind. Journal is always set once phases
// started, including when they failed.
type Outcome struct {
	Journal    *provisioning.Journal
	Result     any
	ArchiveKey string
}

// MarshalJSON encodes the outcome as the journal report plus the result.
func (o *Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Report     provisioning.Report `json:"report"`
		Result     any                 `json:"result,omitempty"`
		ArchiveKey string              `json:"archive_key,omitempty"`
	}{o.Journal.Report(), o.Result, o.ArchiveKey})
}

// execute runs phases under a new journal. result is read after the
// phases ran.
func (r *Runner) execute(ctx context.Context, operation string, commit bool, phases []provisioning.Phase, result func() any) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	journal := provisioning.NewJournal(operation, commit, r.observer)
	pctx := provisioning.NewContext(ctx, r.config, r.store, journal, commit)

	runErr := provisioning.RunPhases(pctx, phases)
	switch {
	case runErr != nil:
		metrics.Run(operation, metrics.ResultFailure)
	case journal.Count(provisioning.LevelFailure) > 0:
		metrics.Run(operation, metrics.ResultWarning)
	default:
		metrics.Run(operation, metrics.ResultSuccess)
	}

	out := &Outcome{Journal: journal}
	if result != nil {
		out.Result = result()
	}
	out.ArchiveKey = r.archive(ctx, journal)
	return out, runErr
}

// archive uploads the report when archiving is configured. Failures are
// journaled and never fail the run.
func (r *Runner) archive(ctx context.Context, journal *provisioning.Journal) string {
	if r.clients.Archiver == nil {
		return ""
	}
	archiver, err := r.clients.Archiver(ctx, r.config)
	if err != nil {
		provisioning.LogWarning(journal, "archive", fmt.Sprintf("report archive unavailable: %v", err))
		return ""
	}
	if archiver == nil {
		return ""
	}

	report := journal.Report()
	data, err := json.Marshal(report)
	if err != nil {
		provisioning.LogWarning(journal, "archive", fmt.Sprintf("encoding report: %v", err))
		return ""
	}
	key, err := archiver.Upload(ctx, report.RunID, report.StartedAt, data)
	if err != nil {
		provisioning.LogWarning(journal, "archive", fmt.Sprintf("report upload failed: %v", err))
		return ""
	}
	provisioning.LogInfo(journal, "archive", "report archived as "+key)
	return key
}

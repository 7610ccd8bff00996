package provisioning

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
)

// Context wraps all dependencies needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Store    inventory.Store
	Observer Observer
	Journal  *Journal
	// Commit is false for dry runs: every write is rolled back at the end of
	// the run and the pipeline is not triggered.
	Commit bool
}

// NewContext creates a provisioning context whose observer is journal.
func NewContext(ctx context.Context, cfg *config.Config, store inventory.Store, journal *Journal, commit bool) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Store:    store,
		Observer: journal,
		Journal:  journal,
		Commit:   commit,
	}
}

// RunID returns the journal's run ID, or "" without a journal.
func (c *Context) RunID() string {
	if c.Journal == nil {
		return ""
	}
	return c.Journal.RunID()
}

// WithStore returns a shallow copy bound to store.
func (c *Context) WithStore(store inventory.Store) *Context {
	cp := *c
	cp.Store = store
	return &cp
}

// WithObserver returns a shallow copy logging through observer.
func (c *Context) WithObserver(observer Observer) *Context {
	cp := *c
	cp.Observer = observer
	return &cp
}

// Link returns the inventory UI URL for a record, e.g. /dcim/devices/7/.
// It is empty when no inventory URL is configured.
func (c *Context) Link(kind string, id uint) string {
	if c.Config == nil || c.Config.Inventory.URL == "" || id == 0 {
		return ""
	}
	return fmt.Sprintf("%s/%s/%d/", strings.TrimRight(c.Config.Inventory.URL, "/"), kind, id)
}

// Record kinds accepted by Link.
const (
	LinkSites       = "dcim/sites"
	LinkLocations   = "dcim/locations"
	LinkDevices     = "dcim/devices"
	LinkInterfaces  = "dcim/interfaces"
	LinkPrefixes    = "ipam/prefixes"
	LinkIPAddresses = "ipam/ip-addresses"
)

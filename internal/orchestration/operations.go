package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/inventory/catalog"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	"github.com/imamik/switchyard/internal/provisioning/promotion"
	"github.com/imamik/switchyard/internal/provisioning/site"
	"github.com/imamik/switchyard/internal/provisioning/switches"
)

// SiteInput is a site request with unresolved references.
type SiteInput struct {
	Tenant      inventory.Ref `json:"tenant"`
	Region      inventory.Ref `json:"region"`
	Name        string        `json:"name"`
	Address     string        `json:"address"`
	Floors      int           `json:"floors"`
	LowestFloor int           `json:"lowest_floor"`
}

// SwitchesInput is a switch batch with unresolved references.
type SwitchesInput struct {
	Tenant     inventory.Ref `json:"tenant"`
	Site       inventory.Ref `json:"site"`
	DeviceType inventory.Ref `json:"device_type"`
	DeviceRole inventory.Ref `json:"role"`
	Uplink     inventory.Ref `json:"uplink"`
	Serials    string        `json:"serials"`
}

// AddressesInput selects the tenant new addresses are assigned to.
type AddressesInput struct {
	Tenant inventory.Ref `json:"tenant"`
}

// PromoteInput selects the devices to validate. With neither field set the
// testbed is built from the store.
type PromoteInput struct {
	TestbedFile string             `json:"-"`
	Targets     []promotion.Target `json:"targets,omitempty"`
}

// resolveErr turns a failed reference lookup into an input error.
func resolveErr(field string, err error) error {
	return provisioning.ValidationError{Field: field, Message: err.Error()}
}

// CreateSite runs the site builder.
func (r *Runner) CreateSite(ctx context.Context, in SiteInput, commit bool) (*Outcome, error) {
	tenant, err := inventory.ResolveTenant(ctx, r.store, in.Tenant)
	if err != nil {
		return nil, resolveErr("tenant", err)
	}
	region, err := inventory.ResolveRegion(ctx, r.store, in.Region)
	if err != nil {
		return nil, resolveErr("region", err)
	}
	req := site.Request{
		Tenant:      tenant,
		Region:      region,
		Name:        in.Name,
		Address:     in.Address,
		Floors:      in.Floors,
		LowestFloor: in.LowestFloor,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	geocoder, err := r.clients.Geocoder(r.config)
	if err != nil {
		return nil, err
	}
	notifier, err := r.notifier()
	if err != nil {
		return nil, err
	}

	var res *site.Result
	b := &site.Builder{Geocoder: geocoder, Notifier: notifier}
	return r.execute(ctx, OpSite, commit, []provisioning.Phase{b.Phase(req, &res)}, func() any { return res })
}

// AddSwitches runs the switch provisioner, including address assignment.
func (r *Runner) AddSwitches(ctx context.Context, in SwitchesInput, commit bool) (*Outcome, error) {
	req, err := r.resolveSwitches(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	notifier, err := r.notifier()
	if err != nil {
		return nil, err
	}

	var res *switches.Result
	p := &switches.Provisioner{
		Addressing: &addressing.Orchestrator{Connect: r.clients.Resolver(r.config)},
		Notifier:   notifier,
	}
	return r.execute(ctx, OpSwitches, commit, []provisioning.Phase{p.Phase(req, &res)}, func() any { return res })
}

func (r *Runner) resolveSwitches(ctx context.Context, in SwitchesInput) (switches.Request, error) {
	var req switches.Request
	var err error
	if req.Tenant, err = inventory.ResolveTenant(ctx, r.store, in.Tenant); err != nil {
		return req, resolveErr("tenant", err)
	}
	if req.Site, err = inventory.ResolveSite(ctx, r.store, in.Site); err != nil {
		return req, resolveErr("site", err)
	}
	if req.DeviceType, err = inventory.ResolveDeviceType(ctx, r.store, in.DeviceType); err != nil {
		return req, resolveErr("device_type", err)
	}
	if req.DeviceRole, err = inventory.ResolveDeviceRole(ctx, r.store, in.DeviceRole); err != nil {
		return req, resolveErr("role", err)
	}
	if req.Uplink, err = inventory.ResolveInterfaceTemplate(ctx, r.store, req.DeviceType, in.Uplink); err != nil {
		return req, resolveErr("uplink", err)
	}
	req.Serials = in.Serials
	return req, nil
}

// AssignAddresses runs the address orchestrator on its own.
func (r *Runner) AssignAddresses(ctx context.Context, in AddressesInput, commit bool) (*Outcome, error) {
	tenant, err := inventory.ResolveTenant(ctx, r.store, in.Tenant)
	if err != nil {
		return nil, resolveErr("tenant", err)
	}

	var res *addressing.Result
	o := &addressing.Orchestrator{Connect: r.clients.Resolver(r.config)}
	return r.execute(ctx, OpAddresses, commit, []provisioning.Phase{o.Phase(tenant, &res)}, func() any { return res })
}

// Promote validates devices and promotes the ones that pass.
func (r *Runner) Promote(ctx context.Context, in PromoteInput, commit bool) (*Outcome, error) {
	for i, t := range in.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return nil, provisioning.ValidationError{Field: "targets", Message: fmt.Sprintf("target %d has no name", i)}
		}
		if t.Host == "" {
			return nil, provisioning.ValidationError{Field: "targets", Message: fmt.Sprintf("target %s has no host", t.Name)}
		}
	}

	checker, err := r.clients.Checker(r.config)
	if err != nil {
		return nil, err
	}

	targets := promotion.StoreTargets
	switch {
	case len(in.Targets) > 0:
		targets = promotion.FixedTargets(promotion.WithDefaults(in.Targets, r.config.Validation))
	case in.TestbedFile != "":
		loaded, err := promotion.LoadTestbed(in.TestbedFile, r.config.Validation)
		if err != nil {
			return nil, provisioning.ValidationError{Field: "testbed", Message: err.Error()}
		}
		targets = promotion.FixedTargets(loaded)
	}

	var res *promotion.RunResult
	run := &promotion.Run{
		Validator: &promotion.Validator{Checker: checker, Concurrency: r.config.Validation.Concurrency},
		Promoter:  &promotion.Promoter{},
		Targets:   targets,
	}
	return r.execute(ctx, OpPromote, commit, []provisioning.Phase{run.Phase(&res)}, func() any { return res })
}

// ImportCatalog applies reference records.
func (r *Runner) ImportCatalog(ctx context.Context, c *catalog.Catalog, commit bool) (*Outcome, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	var res *catalog.Summary
	return r.execute(ctx, OpCatalog, commit, []provisioning.Phase{catalog.Phase(c, &res)}, func() any { return res })
}

func (r *Runner) notifier() (provisioning.Notifier, error) {
	if r.clients.Notifier == nil {
		return nil, nil
	}
	return r.clients.Notifier(r.config)
}

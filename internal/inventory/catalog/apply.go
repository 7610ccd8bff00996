package catalog

import (
	"fmt"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/provisioning"
)

const phase = "catalog"

// Summary counts created and existing records.
type Summary struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// Apply creates every record that does not exist yet. Records are matched by
// slug (VLANs by name) and existing ones are never modified, so applying the
// same catalog twice is a no-op. Missing interface templates are added to
// existing device types.
func Apply(ctx *provisioning.Context, c *Catalog) (*Summary, error) {
	a := &applier{ctx: ctx, summary: &Summary{}}

	for _, r := range c.Tenants {
		if err := ensure(a, "tenant", r.Slug, func() error {
			_, err := ctx.Store.GetTenant(ctx, inventory.RecordFilter{Slug: r.Slug})
			return err
		}, func() error {
			t := &inventory.Tenant{Name: r.Name, Slug: r.Slug}
			return ctx.Store.CreateTenant(ctx, t)
		}); err != nil {
			return a.summary, err
		}
	}
	for _, r := range c.Regions {
		if err := ensure(a, "region", r.Slug, func() error {
			_, err := ctx.Store.GetRegion(ctx, inventory.RecordFilter{Slug: r.Slug})
			return err
		}, func() error {
			reg := &inventory.Region{Name: r.Name, Slug: r.Slug}
			return ctx.Store.CreateRegion(ctx, reg)
		}); err != nil {
			return a.summary, err
		}
	}
	for _, r := range c.DeviceRoles {
		if err := ensure(a, "device role", r.Slug, func() error {
			_, err := ctx.Store.GetDeviceRole(ctx, inventory.RecordFilter{Slug: r.Slug})
			return err
		}, func() error {
			role := &inventory.DeviceRole{Name: r.Name, Slug: r.Slug}
			return ctx.Store.CreateDeviceRole(ctx, role)
		}); err != nil {
			return a.summary, err
		}
	}
	for _, v := range c.VLANs {
		if err := ensure(a, "vlan", v.Name, func() error {
			_, err := ctx.Store.GetVLAN(ctx, inventory.VLANFilter{Name: v.Name})
			return err
		}, func() error {
			vlan := &inventory.VLAN{VID: v.VID, Name: v.Name}
			return ctx.Store.CreateVLAN(ctx, vlan)
		}); err != nil {
			return a.summary, err
		}
	}
	for _, dt := range c.DeviceTypes {
		if err := a.deviceType(dt); err != nil {
			return a.summary, err
		}
	}
	return a.summary, nil
}

type applier struct {
	ctx     *provisioning.Context
	summary *Summary
}

// ensure runs get, and create when get reports not found.
func ensure(a *applier, kind, key string, get func() error, create func() error) error {
	err := get()
	if err == nil {
		a.summary.Existing++
		provisioning.LogResourceExists(a.ctx.Observer, phase, kind, key, "")
		return nil
	}
	if !inventory.IsNotFound(err) {
		return fmt.Errorf("looking up %s %s: %w", kind, key, err)
	}
	if err := create(); err != nil {
		return fmt.Errorf("creating %s %s: %w", kind, key, err)
	}
	a.summary.Created++
	provisioning.LogResourceCreated(a.ctx.Observer, phase, kind, key, "")
	return nil
}

func (a *applier) deviceType(dt DeviceType) error {
	ctx := a.ctx
	existing, err := ctx.Store.GetDeviceType(ctx, inventory.RecordFilter{Slug: dt.Slug})
	if inventory.IsNotFound(err) {
		rec := &inventory.DeviceType{
			Manufacturer: dt.Manufacturer,
			Model:        dt.Model,
			Slug:         dt.Slug,
			PartNumber:   dt.PartNumber,
		}
		for _, iface := range dt.Interfaces {
			rec.InterfaceTemplates = append(rec.InterfaceTemplates, inventory.InterfaceTemplate{Name: iface.Name, Type: iface.Type})
		}
		if err := ctx.Store.CreateDeviceType(ctx, rec); err != nil {
			return fmt.Errorf("creating device type %s: %w", dt.Slug, err)
		}
		a.summary.Created++
		provisioning.LogResourceCreated(ctx.Observer, phase, "device type",
			fmt.Sprintf("%s (%d interfaces)", dt.Slug, len(rec.InterfaceTemplates)), "")
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up device type %s: %w", dt.Slug, err)
	}

	a.summary.Existing++
	provisioning.LogResourceExists(ctx.Observer, phase, "device type", dt.Slug, "")
	have := make(map[string]bool, len(existing.InterfaceTemplates))
	for _, t := range existing.InterfaceTemplates {
		have[t.Name] = true
	}
	for _, iface := range dt.Interfaces {
		if have[iface.Name] {
			continue
		}
		tmpl := &inventory.InterfaceTemplate{DeviceTypeID: existing.ID, Name: iface.Name, Type: iface.Type}
		if err := ctx.Store.CreateInterfaceTemplate(ctx, tmpl); err != nil {
			return fmt.Errorf("adding interface %s to %s: %w", iface.Name, dt.Slug, err)
		}
		a.summary.Created++
		provisioning.LogResourceCreated(ctx.Observer, phase, "interface template", dt.Slug+" "+iface.Name, "")
	}
	return nil
}

// Phase adapts Apply to provisioning.RunPhases.
func Phase(c *Catalog, out **Summary) provisioning.Phase {
	return provisioning.PhaseFunc{
		PhaseName: phase,
		Fn: func(ctx *provisioning.Context) error {
			s, err := Apply(ctx, c)
			if out != nil {
				*out = s
			}
			return err
		},
	}
}

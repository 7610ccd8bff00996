// Package switches onboards switches by serial number.
package switches

import (
	"fmt"
	"strings"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/provisioning/addressing"
	"github.com/imamik/switchyard/internal/util/naming"
)

const phase = "switches"

// Device custom fields consumed by the day-0 template job.
const (
	FieldTemplateName = "ccc_template_name"
	FieldPID          = "ccc_pid"

	day0Template = "Ansible_Day0-Template"
)

// Request describes a batch of switches to add. Reference records are
// already resolved.
type Request struct {
	Tenant     *inventory.Tenant
	Site       *inventory.Site
	DeviceType *inventory.DeviceType
	DeviceRole *inventory.DeviceRole
	Uplink     *inventory.InterfaceTemplate
	// Serials is a comma-separated list.
	Serials string
}

// Validate checks the request before anything is written.
func (r *Request) Validate() error {
	var errs provisioning.ValidationErrors
	if r.Tenant == nil {
		errs.Add("tenant", "is required")
	}
	if r.Site == nil {
		errs.Add("site", "is required")
	}
	if r.DeviceType == nil {
		errs.Add("device_type", "is required")
	}
	if r.DeviceRole == nil {
		errs.Add("role", "is required")
	}
	if r.Uplink == nil {
		errs.Add("uplink", "is required")
	} else if r.DeviceType != nil && r.Uplink.DeviceTypeID != r.DeviceType.ID {
		errs.Add("uplink", "template %q does not belong to device type %s", r.Uplink.Name, r.DeviceType.Slug)
	}
	return errs.Err()
}

// ParseSerials splits a comma-separated serial list, trimming blanks and
// dropping empty entries. Order and duplicates are preserved.
func ParseSerials(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Result lists per-serial outcomes.
type Result struct {
	Created []inventory.Device
	Skipped []string
	// Failed maps serials to the reason they were not fully provisioned.
	Failed map[string]string
	// Addressing is nil when no device was created.
	Addressing *addressing.Result
}

func (r *Result) fail(serial string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[serial] = err.Error()
}

// Provisioner creates switches and binds their management addresses.
type Provisioner struct {
	// Addressing runs once after the batch; nil disables it.
	Addressing *addressing.Orchestrator
	// Notifier is optional; nil disables the pipeline trigger.
	Notifier provisioning.Notifier
}

// Add creates one planned device per new serial. Per-serial problems are
// journaled and the batch continues; only invalid input or a failed index
// lookup is returned as an error.
func (p *Provisioner) Add(ctx *provisioning.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	result := &Result{}

	serials := ParseSerials(req.Serials)
	if len(serials) == 0 {
		provisioning.LogWarning(ctx.Observer, phase, "no serial numbers given, nothing to do")
		return result, nil
	}

	siteNumber := naming.SiteNumber(req.Site.Name)
	if siteNumber == naming.UnknownSiteNumber {
		provisioning.LogWarning(ctx.Observer, phase,
			fmt.Sprintf("site %q has no trailing number, switches are named %s<n>", req.Site.Name, naming.SwitchPrefix(siteNumber)))
	}
	index, err := NextIndex(ctx, ctx.Store, req.Site)
	if err != nil {
		return nil, err
	}

	for _, serial := range serials {
		name := naming.SwitchName(siteNumber, index)
		device, consumed, err := p.addOne(ctx, req, serial, name)
		if consumed {
			index++
		}
		switch {
		case err != nil:
			result.fail(serial, err)
		case device == nil:
			result.Skipped = append(result.Skipped, serial)
		default:
			result.Created = append(result.Created, *device)
		}
	}

	if len(result.Created) > 0 && p.Addressing != nil {
		res, err := p.Addressing.Assign(ctx, req.Tenant)
		if err != nil {
			provisioning.LogFailure(ctx.Observer, phase, "address assignment", err)
		}
		result.Addressing = res
	}

	provisioning.NotifyPipeline(ctx, p.Notifier, phase, provisioning.SwitchPipeline)
	return result, nil
}

// addOne provisions a single serial. consumed reports whether name is now
// taken by a stored device.
func (p *Provisioner) addOne(ctx *provisioning.Context, req Request, serial, name string) (device *inventory.Device, consumed bool, err error) {
	existing, err := ctx.Store.GetDevice(ctx, inventory.DeviceFilter{Serial: serial})
	switch {
	case err == nil:
		metrics.SerialSkipped("exists")
		provisioning.LogSkipped(ctx.Observer, phase, serial,
			fmt.Sprintf("serial already registered as %s", existing.Name))
		return nil, false, nil
	case !inventory.IsNotFound(err):
		metrics.SerialSkipped("lookup_failed")
		err = fmt.Errorf("looking up serial: %w", err)
		provisioning.LogFailure(ctx.Observer, phase, serial, err)
		return nil, false, err
	}

	device = &inventory.Device{
		Name:         name,
		SiteID:       req.Site.ID,
		TenantID:     req.Tenant.ID,
		DeviceTypeID: req.DeviceType.ID,
		DeviceRoleID: req.DeviceRole.ID,
		Serial:       serial,
		Status:       inventory.StatusPlanned,
		CustomFields: inventory.CustomFields{
			FieldTemplateName: day0Template,
			FieldPID:          req.DeviceType.PartNumber,
		},
	}
	if err := ctx.Store.CreateDevice(ctx, device); err != nil {
		metrics.SerialSkipped("create_failed")
		err = fmt.Errorf("creating device %s: %w", name, err)
		provisioning.LogFailure(ctx.Observer, phase, serial, err)
		return nil, false, err
	}
	metrics.DeviceCreated(req.Site.Name)
	provisioning.LogResourceCreated(ctx.Observer, phase, "device", fmt.Sprintf("%s (%s) at %s", name, serial, req.Site.Name),
		ctx.Link(provisioning.LinkDevices, device.ID))

	if err := labelUplink(ctx, device, req.Uplink); err != nil {
		err = fmt.Errorf("labelling uplink of %s: %w", name, err)
		provisioning.LogFailure(ctx.Observer, phase, serial, err)
		return nil, true, err
	}
	return device, true, nil
}

func labelUplink(ctx *provisioning.Context, device *inventory.Device, uplink *inventory.InterfaceTemplate) error {
	iface, err := ctx.Store.GetInterface(ctx, inventory.InterfaceFilter{DeviceID: device.ID, Name: uplink.Name})
	if err != nil {
		return err
	}
	iface.Label = inventory.LabelUplink
	if err := ctx.Store.UpdateInterface(ctx, iface); err != nil {
		return err
	}
	provisioning.LogResourceUpdated(ctx.Observer, phase, "interface", device.Name+" "+iface.Name,
		ctx.Link(provisioning.LinkInterfaces, iface.ID), "label "+inventory.LabelUplink)
	return nil
}

// Phase adapts Add to provisioning.RunPhases.
func (p *Provisioner) Phase(req Request, out **Result) provisioning.Phase {
	return provisioning.PhaseFunc{
		PhaseName: phase,
		Fn: func(ctx *provisioning.Context) error {
			res, err := p.Add(ctx, req)
			if out != nil {
				*out = res
			}
			return err
		},
	}
}

// Package addressing binds management addresses to planned switches.
//
// For every planned device without a primary IPv4 the onboarding inventory
// is asked for the address the switch bootstrapped with. The address is
// stored on a Vlan1 sub-interface of the uplink, inside a /24 prefix bound to
// the management VLAN, and becomes the device's primary IPv4.
package addressing

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/metrics"
	"github.com/imamik/switchyard/internal/provisioning"
	"github.com/imamik/switchyard/internal/util/naming"
	"github.com/imamik/switchyard/internal/util/ptr"
)

const phase = "addressing"

// MgmtInterface is the management sub-interface created under the uplink.
const MgmtInterface = "Vlan1"

// Resolver reports the address a switch bootstrapped with, or "" when the
// onboarding inventory does not know it yet. Implemented by catalyst.Client.
type Resolver interface {
	DeviceIP(ctx context.Context, serial string) (string, error)
}

// ConnectFunc opens a Resolver for one orchestration run. The returned
// close function is called when the run ends.
type ConnectFunc func(ctx context.Context) (Resolver, func() error, error)

// Static returns a ConnectFunc handing out r.
func Static(r Resolver) ConnectFunc {
	return func(context.Context) (Resolver, func() error, error) {
		return r, func() error { return nil }, nil
	}
}

// Result counts per-device outcomes.
type Result struct {
	Assigned []string
	Skipped  []string
	Failed   map[string]string
}

func (r *Result) fail(device string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]string)
	}
	r.Failed[device] = err.Error()
}

// Orchestrator assigns management addresses.
type Orchestrator struct {
	Connect ConnectFunc
	// VLAN is the management VLAN name; the configured one when empty.
	VLAN string
}

// Assign resolves and binds addresses for every planned device without a
// primary IPv4. Per-device problems are journaled and the loop continues;
// an error is returned only when nothing could be attempted.
func (o *Orchestrator) Assign(ctx *provisioning.Context, tenant *inventory.Tenant) (*Result, error) {
	if tenant == nil {
		return nil, errors.New("tenant is required")
	}
	vlanName := o.VLAN
	if vlanName == "" && ctx.Config != nil {
		vlanName = ctx.Config.Inventory.MgmtVLAN
	}
	vlan, err := ctx.Store.GetVLAN(ctx, inventory.VLANFilter{Name: vlanName})
	if err != nil {
		return nil, fmt.Errorf("management VLAN %q: %w", vlanName, err)
	}

	devices, err := ctx.Store.ListDevices(ctx, inventory.DeviceFilter{
		Status:             inventory.StatusPlanned,
		WithoutPrimaryIPv4: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing unassigned devices: %w", err)
	}
	result := &Result{}
	if len(devices) == 0 {
		provisioning.LogInfo(ctx.Observer, phase, "no planned devices without a management address")
		return result, nil
	}

	resolver, closeFn, err := o.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to onboarding inventory: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			ctx.Observer.Printf("closing onboarding inventory session: %v", err)
		}
	}()

	for i := range devices {
		a := assignment{ctx: ctx, tenant: tenant, vlan: vlan, device: &devices[i]}
		outcome, err := a.run(resolver)
		switch {
		case err != nil:
			metrics.AddressAssigned(metrics.ResultFailure)
			provisioning.LogFailure(ctx.Observer, phase, a.device.Name, err)
			result.fail(a.device.Name, err)
		case outcome == outcomeSkipped:
			metrics.AddressAssigned(metrics.ResultSkipped)
			result.Skipped = append(result.Skipped, a.device.Name)
		default:
			metrics.AddressAssigned(metrics.ResultSuccess)
			result.Assigned = append(result.Assigned, a.device.Name)
		}
	}
	return result, nil
}

// Phase adapts Assign to provisioning.RunPhases.
func (o *Orchestrator) Phase(tenant *inventory.Tenant, out **Result) provisioning.Phase {
	return provisioning.PhaseFunc{
		PhaseName: phase,
		Fn: func(ctx *provisioning.Context) error {
			res, err := o.Assign(ctx, tenant)
			if out != nil {
				*out = res
			}
			return err
		},
	}
}

type outcome int

const (
	outcomeAssigned outcome = iota
	outcomeSkipped
)

// assignment binds the address of one device.
type assignment struct {
	ctx    *provisioning.Context
	tenant *inventory.Tenant
	vlan   *inventory.VLAN
	device *inventory.Device
}

func (a *assignment) run(resolver Resolver) (outcome, error) {
	ctx := a.ctx
	ip, err := resolver.DeviceIP(ctx, a.device.Serial)
	if err != nil {
		provisioning.LogSkipped(ctx.Observer, phase, a.device.Name,
			fmt.Sprintf("no address for serial %s yet: %v", a.device.Serial, err))
		return outcomeSkipped, nil
	}
	if ip == "" {
		provisioning.LogSkipped(ctx.Observer, phase, a.device.Name,
			fmt.Sprintf("serial %s is not known to the onboarding inventory yet", a.device.Serial))
		return outcomeSkipped, nil
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return 0, fmt.Errorf("onboarding inventory reported %q for serial %s, expected an IPv4 address", ip, a.device.Serial)
	}
	ip = addr.String()

	uplink, err := ctx.Store.GetInterface(ctx, inventory.InterfaceFilter{DeviceID: a.device.ID, Label: inventory.LabelUplink})
	if err != nil {
		return 0, fmt.Errorf("uplink interface: %w", err)
	}

	mgmt, err := a.mgmtInterface(uplink)
	if err != nil {
		return 0, err
	}
	if err := a.ensurePrefix(ip); err != nil {
		return 0, err
	}

	address, err := a.hostAddress(mgmt, naming.HostAddress(ip))
	if err != nil {
		return 0, err
	}

	a.device.PrimaryIPv4ID = ptr.To(address.ID)
	if err := ctx.Store.UpdateDevice(ctx, a.device); err != nil {
		return 0, fmt.Errorf("setting primary address: %w", err)
	}
	provisioning.LogResourceUpdated(ctx.Observer, phase, "device", a.device.Name,
		ctx.Link(provisioning.LinkDevices, a.device.ID), "primary IPv4 "+address.Address)
	return outcomeAssigned, nil
}

// mgmtInterface returns the Vlan1 sub-interface of uplink, creating it on
// first use.
func (a *assignment) mgmtInterface(uplink *inventory.Interface) (*inventory.Interface, error) {
	ctx := a.ctx
	iface, err := ctx.Store.GetInterface(ctx, inventory.InterfaceFilter{DeviceID: a.device.ID, Name: MgmtInterface})
	if err == nil {
		provisioning.LogResourceExists(ctx.Observer, phase, "interface", a.device.Name+" "+MgmtInterface,
			ctx.Link(provisioning.LinkInterfaces, iface.ID))
		return iface, nil
	}
	if !inventory.IsNotFound(err) {
		return nil, fmt.Errorf("looking up %s: %w", MgmtInterface, err)
	}

	iface = &inventory.Interface{
		DeviceID: a.device.ID,
		Name:     MgmtInterface,
		Type:     inventory.InterfaceTypeVirtual,
		ParentID: ptr.To(uplink.ID),
		Label:    inventory.LabelMgmt,
		Enabled:  true,
	}
	if err := ctx.Store.CreateInterface(ctx, iface); err != nil {
		return nil, fmt.Errorf("creating %s: %w", MgmtInterface, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "interface", a.device.Name+" "+MgmtInterface,
		ctx.Link(provisioning.LinkInterfaces, iface.ID))
	return iface, nil
}

// hostAddress returns the address already bound to mgmt, creating it on
// first use.
func (a *assignment) hostAddress(mgmt *inventory.Interface, host string) (*inventory.IPAddress, error) {
	ctx := a.ctx
	address, err := ctx.Store.GetIPAddress(ctx, inventory.IPAddressFilter{Address: host, InterfaceID: mgmt.ID})
	if err == nil {
		provisioning.LogResourceExists(ctx.Observer, phase, "ip address", address.Address,
			ctx.Link(provisioning.LinkIPAddresses, address.ID))
		return address, nil
	}
	if !inventory.IsNotFound(err) {
		return nil, fmt.Errorf("looking up address %s: %w", host, err)
	}

	address = &inventory.IPAddress{
		Address:     host,
		InterfaceID: ptr.To(mgmt.ID),
		TenantID:    a.tenant.ID,
		Status:      inventory.StatusActive,
	}
	if err := ctx.Store.CreateIPAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("creating address %s: %w", address.Address, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "ip address", address.Address,
		ctx.Link(provisioning.LinkIPAddresses, address.ID))
	return address, nil
}

// ensurePrefix creates the /24 around ip unless it already exists.
func (a *assignment) ensurePrefix(ip string) error {
	ctx := a.ctx
	cidr, err := naming.PrefixCIDR(ip)
	if err != nil {
		return err
	}
	existing, err := ctx.Store.GetPrefix(ctx, inventory.PrefixFilter{Prefix: cidr})
	if err == nil {
		provisioning.LogResourceExists(ctx.Observer, phase, "prefix", cidr, ctx.Link(provisioning.LinkPrefixes, existing.ID))
		return nil
	}
	if !inventory.IsNotFound(err) {
		return fmt.Errorf("looking up prefix %s: %w", cidr, err)
	}

	prefix := &inventory.Prefix{
		Prefix:   cidr,
		TenantID: a.tenant.ID,
		VLANID:   ptr.To(a.vlan.ID),
		Status:   inventory.StatusActive,
	}
	if err := ctx.Store.CreatePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("creating prefix %s: %w", cidr, err)
	}
	provisioning.LogResourceCreated(ctx.Observer, phase, "prefix", cidr, ctx.Link(provisioning.LinkPrefixes, prefix.ID))
	return nil
}

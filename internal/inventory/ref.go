package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ref names a record either by numeric ID or by slug/name, the way operators
// type it on the command line or send it to the API.
type Ref string

// ID returns the numeric ID when the ref is all digits.
func (r Ref) ID() (uint, bool) {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IsZero reports whether the ref is empty.
func (r Ref) IsZero() bool { return strings.TrimSpace(string(r)) == "" }

func (r Ref) String() string { return strings.TrimSpace(string(r)) }

// UnmarshalJSON accepts both `12` and `"access-switch"`.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("reference must be a string or an integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("reference must be a string or an integer: %w", err)
	}
	*r = Ref(n.String())
	return nil
}

// resolve looks a ref up by ID, then by slug, then by name.
func resolve[T any](ctx context.Context, kind string, ref Ref, get func(context.Context, RecordFilter) (*T, error)) (*T, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%s reference is empty", kind)
	}
	if id, ok := ref.ID(); ok {
		rec, err := get(ctx, RecordFilter{ID: id})
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, ref, err)
		}
		return rec, nil
	}
	rec, err := get(ctx, RecordFilter{Slug: ref.String()})
	if err == nil {
		return rec, nil
	}
	if !IsNotFound(err) {
		return nil, fmt.Errorf("%s %q: %w", kind, ref, err)
	}
	rec, err = get(ctx, RecordFilter{Name: ref.String()})
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, ref, err)
	}
	return rec, nil
}

// ResolveTenant resolves a tenant ref.
func ResolveTenant(ctx context.Context, s CatalogStore, ref Ref) (*Tenant, error) {
	return resolve(ctx, "tenant", ref, s.GetTenant)
}

// ResolveRegion resolves a region ref.
func ResolveRegion(ctx context.Context, s CatalogStore, ref Ref) (*Region, error) {
	return resolve(ctx, "region", ref, s.GetRegion)
}

// ResolveDeviceRole resolves a device role ref.
func ResolveDeviceRole(ctx context.Context, s CatalogStore, ref Ref) (*DeviceRole, error) {
	return resolve(ctx, "device role", ref, s.GetDeviceRole)
}

// ResolveDeviceType resolves a device type ref (ID, slug or model).
func ResolveDeviceType(ctx context.Context, s CatalogStore, ref Ref) (*DeviceType, error) {
	return resolve(ctx, "device type", ref, s.GetDeviceType)
}

// ResolveSite resolves a site ref.
func ResolveSite(ctx context.Context, s SiteStore, ref Ref) (*Site, error) {
	return resolve(ctx, "site", ref, func(ctx context.Context, f RecordFilter) (*Site, error) {
		return s.GetSite(ctx, SiteFilter{ID: f.ID, Slug: f.Slug, Name: f.Name})
	})
}

// ResolveInterfaceTemplate resolves an interface template ref scoped to a
// device type. Numeric refs must belong to that type.
func ResolveInterfaceTemplate(ctx context.Context, s CatalogStore, deviceType *DeviceType, ref Ref) (*InterfaceTemplate, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("interface template reference is empty")
	}
	filter := InterfaceTemplateFilter{DeviceTypeID: deviceType.ID, Name: ref.String()}
	if id, ok := ref.ID(); ok {
		filter = InterfaceTemplateFilter{DeviceTypeID: deviceType.ID, ID: id}
	}
	tmpl, err := s.GetInterfaceTemplate(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("interface template %q on device type %s: %w", ref, deviceType.Slug, err)
	}
	return tmpl, nil
}

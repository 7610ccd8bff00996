package inventory

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get* when no record matches the filter.
	ErrNotFound = errors.New("record not found")
	// ErrMultipleResults is returned by Get* when more than one record matches.
	ErrMultipleResults = errors.New("multiple records match")
	// ErrConflict is returned by Create* when a unique key is already taken.
	ErrConflict = errors.New("record conflicts with an existing record")
)

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err means a unique key was already taken.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// RecordFilter selects a reference record by ID, slug or name.
// Zero-valued fields are ignored.
type RecordFilter struct {
	ID   uint
	Slug string
	Name string
}

// SiteFilter selects sites. Zero-valued fields are ignored.
type SiteFilter struct {
	ID   uint
	Name string
	Slug string
}

// LocationFilter selects locations. Zero-valued fields are ignored.
type LocationFilter struct {
	SiteID uint
	Slug   string
}

// DeviceFilter selects devices. Zero-valued fields are ignored.
type DeviceFilter struct {
	ID         uint
	Name       string
	Serial     string
	SiteID     uint
	NamePrefix string
	Status     Status
	// WithoutPrimaryIPv4 restricts results to devices with no primary address.
	WithoutPrimaryIPv4 bool
}

// InterfaceFilter selects interfaces. Zero-valued fields are ignored.
type InterfaceFilter struct {
	ID       uint
	DeviceID uint
	Name     string
	Label    string
}

// InterfaceTemplateFilter selects interface templates. Zero-valued fields are ignored.
type InterfaceTemplateFilter struct {
	ID           uint
	DeviceTypeID uint
	Name         string
}

// PrefixFilter selects prefixes. Zero-valued fields are ignored.
type PrefixFilter struct {
	Prefix string
}

// IPAddressFilter selects IP addresses. Zero-valued fields are ignored.
type IPAddressFilter struct {
	ID          uint
	Address     string
	InterfaceID uint
}

// VLANFilter selects VLANs. Zero-valued fields are ignored.
type VLANFilter struct {
	ID   uint
	Name string
}

// SiteStore manages sites and their locations.
type SiteStore interface {
	CreateSite(ctx context.Context, site *Site) error
	GetSite(ctx context.Context, filter SiteFilter) (*Site, error)
	ListSites(ctx context.Context, filter SiteFilter) ([]Site, error)
	CreateLocation(ctx context.Context, location *Location) error
	ListLocations(ctx context.Context, filter LocationFilter) ([]Location, error)
}

// DeviceStore manages devices and their interfaces.
type DeviceStore interface {
	// CreateDevice stores the device and instantiates one interface per
	// template of its device type.
	CreateDevice(ctx context.Context, device *Device) error
	GetDevice(ctx context.Context, filter DeviceFilter) (*Device, error)
	ListDevices(ctx context.Context, filter DeviceFilter) ([]Device, error)
	UpdateDevice(ctx context.Context, device *Device) error

	CreateInterface(ctx context.Context, iface *Interface) error
	GetInterface(ctx context.Context, filter InterfaceFilter) (*Interface, error)
	ListInterfaces(ctx context.Context, filter InterfaceFilter) ([]Interface, error)
	UpdateInterface(ctx context.Context, iface *Interface) error
}

// IPAMStore manages prefixes, addresses and VLANs.
type IPAMStore interface {
	CreatePrefix(ctx context.Context, prefix *Prefix) error
	GetPrefix(ctx context.Context, filter PrefixFilter) (*Prefix, error)
	ListPrefixes(ctx context.Context, filter PrefixFilter) ([]Prefix, error)

	CreateIPAddress(ctx context.Context, addr *IPAddress) error
	GetIPAddress(ctx context.Context, filter IPAddressFilter) (*IPAddress, error)
	ListIPAddresses(ctx context.Context, filter IPAddressFilter) ([]IPAddress, error)

	CreateVLAN(ctx context.Context, vlan *VLAN) error
	GetVLAN(ctx context.Context, filter VLANFilter) (*VLAN, error)
}

// CatalogStore manages reference records that provisioning only reads.
type CatalogStore interface {
	CreateTenant(ctx context.Context, tenant *Tenant) error
	GetTenant(ctx context.Context, filter RecordFilter) (*Tenant, error)

	CreateRegion(ctx context.Context, region *Region) error
	GetRegion(ctx context.Context, filter RecordFilter) (*Region, error)

	CreateDeviceRole(ctx context.Context, role *DeviceRole) error
	GetDeviceRole(ctx context.Context, filter RecordFilter) (*DeviceRole, error)

	// CreateDeviceType stores the type together with its interface templates.
	CreateDeviceType(ctx context.Context, deviceType *DeviceType) error
	// GetDeviceType matches Name against the model and loads interface templates.
	GetDeviceType(ctx context.Context, filter RecordFilter) (*DeviceType, error)
	CreateInterfaceTemplate(ctx context.Context, tmpl *InterfaceTemplate) error
	GetInterfaceTemplate(ctx context.Context, filter InterfaceTemplateFilter) (*InterfaceTemplate, error)
}

// Store is the full record store.
type Store interface {
	SiteStore
	DeviceStore
	IPAMStore
	CatalogStore

	// InTx runs fn against a transactional view of the store. Everything fn
	// wrote is rolled back when it returns an error.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}

package testing

import (
	"context"
	"testing"

	"github.com/imamik/switchyard/internal/inventory"
	"github.com/imamik/switchyard/internal/inventory/store"
)

// Uplink and access port names of the fixture device type.
const (
	FixtureUplink = "GigabitEthernet1/1/1"
	FixtureAccess = "GigabitEthernet1/0/1"
)

// InventoryFixture is an in-memory store seeded with the reference records
// every provisioning flow needs.
type InventoryFixture struct {
	Store      *store.Store
	Tenant     *inventory.Tenant
	Region     *inventory.Region
	Role       *inventory.DeviceRole
	DeviceType *inventory.DeviceType
	Uplink     *inventory.InterfaceTemplate
	VLAN       *inventory.VLAN
	Site       *inventory.Site
}

// NewStore opens an empty in-memory store closed at test cleanup.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewInventoryFixture seeds tenant acme, region emea, role access-switch,
// device type C9300-48P with an access and an uplink template, VLAN MGMT
// and site Site-12.
func NewInventoryFixture(t *testing.T) *InventoryFixture {
	t.Helper()
	return SeedInventory(t, NewStore(t))
}

// SeedInventory writes the NewInventoryFixture records into s.
func SeedInventory(t *testing.T, s *store.Store) *InventoryFixture {
	t.Helper()
	ctx := context.Background()
	fx := &InventoryFixture{Store: s}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
	}

	fx.Tenant = &inventory.Tenant{Name: "Acme", Slug: "acme"}
	must(s.CreateTenant(ctx, fx.Tenant))
	fx.Region = &inventory.Region{Name: "EMEA", Slug: "emea"}
	must(s.CreateRegion(ctx, fx.Region))
	fx.Role = &inventory.DeviceRole{Name: "Access Switch", Slug: "access-switch"}
	must(s.CreateDeviceRole(ctx, fx.Role))

	fx.DeviceType = &inventory.DeviceType{
		Manufacturer: "Cisco",
		Model:        "C9300-48P",
		Slug:         "c9300-48p",
		PartNumber:   "C9300-48P-E",
		InterfaceTemplates: []inventory.InterfaceTemplate{
			{Name: FixtureAccess, Type: inventory.InterfaceType1GE},
			{Name: FixtureUplink, Type: inventory.InterfaceType1GE},
		},
	}
	must(s.CreateDeviceType(ctx, fx.DeviceType))
	for i := range fx.DeviceType.InterfaceTemplates {
		if fx.DeviceType.InterfaceTemplates[i].Name == FixtureUplink {
			fx.Uplink = &fx.DeviceType.InterfaceTemplates[i]
		}
	}

	fx.VLAN = &inventory.VLAN{VID: 10, Name: "MGMT"}
	must(s.CreateVLAN(ctx, fx.VLAN))

	fx.Site = &inventory.Site{
		Name:     "Site-12",
		Slug:     "site-12",
		TenantID: fx.Tenant.ID,
		RegionID: fx.Region.ID,
		Status:   inventory.StatusPlanned,
	}
	must(s.CreateSite(ctx, fx.Site))
	return fx
}

// AddDevice stores a device of the fixture type at the fixture site.
func (fx *InventoryFixture) AddDevice(t *testing.T, name, serial string, status inventory.Status) *inventory.Device {
	t.Helper()
	d := &inventory.Device{
		Name:         name,
		SiteID:       fx.Site.ID,
		TenantID:     fx.Tenant.ID,
		DeviceTypeID: fx.DeviceType.ID,
		DeviceRoleID: fx.Role.ID,
		Serial:       serial,
		Status:       status,
	}
	if err := fx.Store.CreateDevice(context.Background(), d); err != nil {
		t.Fatalf("add device %s: %v", name, err)
	}
	return d
}

// LabelUplink labels the fixture uplink interface of d as Uplink.
func (fx *InventoryFixture) LabelUplink(t *testing.T, d *inventory.Device) *inventory.Interface {
	t.Helper()
	ctx := context.Background()
	iface, err := fx.Store.GetInterface(ctx, inventory.InterfaceFilter{DeviceID: d.ID, Name: FixtureUplink})
	if err != nil {
		t.Fatalf("get uplink of %s: %v", d.Name, err)
	}
	iface.Label = inventory.LabelUplink
	if err := fx.Store.UpdateInterface(ctx, iface); err != nil {
		t.Fatalf("label uplink of %s: %v", d.Name, err)
	}
	return iface
}

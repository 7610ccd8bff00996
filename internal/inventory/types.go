package inventory

import (
	"time"
)

// Status is the lifecycle stage of a site, location, device, prefix or address.
type Status string

const (
	StatusPlanned         Status = "planned"
	StatusStaged          Status = "staged"
	StatusActive          Status = "active"
	StatusOffline         Status = "offline"
	StatusDecommissioning Status = "decommissioning"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusStaged, StatusActive, StatusOffline, StatusDecommissioning:
		return true
	}
	return false
}

// CustomFields holds free-form attributes consumed by downstream automation.
type CustomFields map[string]any

// Interface types used by the provisioner.
const (
	InterfaceTypeVirtual = "virtual"
	InterfaceType1GE     = "1000base-t"
)

// Interface labels with meaning to the provisioning flow.
const (
	LabelUplink = "Uplink"
	LabelMgmt   = "MGMT"
)

// Tenant owns sites, devices and addresses.
type Tenant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// Region groups sites geographically.
type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// DeviceRole classifies devices (access switch, distribution, ...).
type DeviceRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// DeviceType is a hardware model. Every device created from it gets one
// interface per template.
type DeviceType struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	Manufacturer       string              `json:"manufacturer"`
	Model              string              `gorm:"not null" json:"model"`
	Slug               string              `gorm:"uniqueIndex;not null" json:"slug"`
	PartNumber         string              `json:"part_number"`
	InterfaceTemplates []InterfaceTemplate `gorm:"foreignKey:DeviceTypeID" json:"interface_templates,omitempty"`
	CreatedAt          time.Time           `json:"created"`
	UpdatedAt          time.Time           `json:"last_updated"`
}

// InterfaceTemplate describes an interface instantiated on every device of a type.
type InterfaceTemplate struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	DeviceTypeID uint   `gorm:"uniqueIndex:idx_template_name;not null" json:"device_type"`
	Name         string `gorm:"uniqueIndex:idx_template_name;not null" json:"name"`
	Type         string `json:"type"`
}

// VLAN is a pre-existing layer-2 segment referenced by prefixes.
type VLAN struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VID       uint16    `gorm:"column:vid" json:"vid"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// TableName keeps the table name stable across naming strategies.
func (VLAN) TableName() string { return "vlans" }

// Site is a physical facility.
type Site struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug            string    `gorm:"uniqueIndex;not null" json:"slug"`
	TenantID        uint      `json:"tenant"`
	RegionID        uint      `json:"region"`
	Status          Status    `gorm:"not null" json:"status"`
	PhysicalAddress string    `json:"physical_address"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	CreatedAt       time.Time `json:"created"`
	UpdatedAt       time.Time `json:"last_updated"`
}

// Location is a floor inside a site.
type Location struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	SiteID       uint         `gorm:"uniqueIndex:idx_location_slug;not null" json:"site"`
	TenantID     uint         `json:"tenant"`
	Name         string       `gorm:"not null" json:"name"`
	Slug         string       `gorm:"uniqueIndex:idx_location_slug;not null" json:"slug"`
	Status       Status       `gorm:"not null" json:"status"`
	CustomFields CustomFields `gorm:"serializer:json" json:"custom_fields"`
	CreatedAt    time.Time    `json:"created"`
	UpdatedAt    time.Time    `json:"last_updated"`
}

// Device is a managed switch.
type Device struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"uniqueIndex:idx_device_site_name;not null" json:"name"`
	SiteID        uint         `gorm:"uniqueIndex:idx_device_site_name;not null" json:"site"`
	TenantID      uint         `json:"tenant"`
	DeviceTypeID  uint         `gorm:"not null" json:"device_type"`
	DeviceRoleID  uint         `json:"role"`
	Serial        string       `gorm:"uniqueIndex;not null" json:"serial"`
	Status        Status       `gorm:"index;not null" json:"status"`
	PrimaryIPv4ID *uint        `gorm:"column:primary_ipv4_id" json:"primary_ip4,omitempty"`
	CustomFields  CustomFields `gorm:"serializer:json" json:"custom_fields"`
	CreatedAt     time.Time    `json:"created"`
	UpdatedAt     time.Time    `json:"last_updated"`
}

// Interface is a physical or virtual port on a device.
type Interface struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  uint      `gorm:"uniqueIndex:idx_interface_name;not null" json:"device"`
	Name      string    `gorm:"uniqueIndex:idx_interface_name;not null" json:"name"`
	Type      string    `json:"type"`
	ParentID  *uint     `json:"parent,omitempty"`
	Label     string    `gorm:"index" json:"label"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// Prefix is a network block. At most one record exists per CIDR.
type Prefix struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prefix    string    `gorm:"uniqueIndex;not null" json:"prefix"`
	TenantID  uint      `json:"tenant"`
	VLANID    *uint     `gorm:"column:vlan_id" json:"vlan,omitempty"`
	Status    Status    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"last_updated"`
}

// IPAddress is an address with mask bound to one interface.
type IPAddress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Address     string    `gorm:"index;not null" json:"address"`
	InterfaceID *uint     `gorm:"index" json:"assigned_object_id,omitempty"`
	TenantID    uint      `json:"tenant"`
	Status      Status    `gorm:"not null" json:"status"`
	CreatedAt   time.Time `json:"created"`
	UpdatedAt   time.Time `json:"last_updated"`
}

// TableName keeps the table name stable across naming strategies.
func (IPAddress) TableName() string { return "ip_addresses" }

// Models lists every persisted type in dependency order, for migrations.
func Models() []any {
	return []any{
		&Tenant{}, &Region{}, &DeviceRole{}, &DeviceType{}, &InterfaceTemplate{}, &VLAN{},
		&Site{}, &Location{}, &Device{}, &Interface{}, &Prefix{}, &IPAddress{},
	}
}

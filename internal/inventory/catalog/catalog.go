// Package catalog loads reference records (tenants, regions, roles, VLANs
// and device types) from a YAML file into the store.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imamik/switchyard/internal/util/naming"
)

// Catalog is the file layout.
type Catalog struct {
	Tenants     []Record     `yaml:"tenants"`
	Regions     []Record     `yaml:"regions"`
	DeviceRoles []Record     `yaml:"device_roles"`
	VLANs       []VLAN       `yaml:"vlans"`
	DeviceTypes []DeviceType `yaml:"device_types"`
}

// Record is a named reference record. Slug defaults to Slugify(Name).
type Record struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// VLAN is a layer-2 segment keyed by name.
type VLAN struct {
	VID  uint16 `yaml:"vid"`
	Name string `yaml:"name"`
}

// DeviceType is a hardware model with its interfaces.
type DeviceType struct {
	Manufacturer string      `yaml:"manufacturer"`
	Model        string      `yaml:"model"`
	Slug         string      `yaml:"slug"`
	PartNumber   string      `yaml:"part_number"`
	Interfaces   []Interface `yaml:"interfaces"`
}

// Interface is an interface template.
type Interface struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML, fills default slugs and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c.fillSlugs()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) fillSlugs() {
	for _, list := range [][]Record{c.Tenants, c.Regions, c.DeviceRoles} {
		for i := range list {
			if list[i].Slug == "" {
				list[i].Slug = naming.Slugify(list[i].Name)
			}
		}
	}
	for i := range c.DeviceTypes {
		if c.DeviceTypes[i].Slug == "" {
			c.DeviceTypes[i].Slug = naming.Slugify(c.DeviceTypes[i].Model)
		}
	}
}

// Validate checks for missing names and duplicate keys.
func (c *Catalog) Validate() error {
	check := func(kind string, records []Record) error {
		seen := map[string]bool{}
		for i, r := range records {
			if r.Name == "" || r.Slug == "" {
				return fmt.Errorf("%s[%d]: name is required", kind, i)
			}
			if seen[r.Slug] {
				return fmt.Errorf("%s: duplicate slug %q", kind, r.Slug)
			}
			seen[r.Slug] = true
		}
		return nil
	}
	if err := check("tenants", c.Tenants); err != nil {
		return err
	}
	if err := check("regions", c.Regions); err != nil {
		return err
	}
	if err := check("device_roles", c.DeviceRoles); err != nil {
		return err
	}

	vlans := map[string]bool{}
	for i, v := range c.VLANs {
		if v.Name == "" {
			return fmt.Errorf("vlans[%d]: name is required", i)
		}
		if v.VID < 1 || v.VID > 4094 {
			return fmt.Errorf("vlan %s: vid %d out of range 1-4094", v.Name, v.VID)
		}
		if vlans[v.Name] {
			return fmt.Errorf("vlans: duplicate name %q", v.Name)
		}
		vlans[v.Name] = true
	}

	types := map[string]bool{}
	for i, dt := range c.DeviceTypes {
		if dt.Model == "" || dt.Slug == "" {
			return fmt.Errorf("device_types[%d]: model is required", i)
		}
		if types[dt.Slug] {
			return fmt.Errorf("device_types: duplicate slug %q", dt.Slug)
		}
		types[dt.Slug] = true
		ifaces := map[string]bool{}
		for _, iface := range dt.Interfaces {
			if iface.Name == "" {
				return fmt.Errorf("device type %s: interface name is required", dt.Slug)
			}
			if ifaces[iface.Name] {
				return fmt.Errorf("device type %s: duplicate interface %q", dt.Slug, iface.Name)
			}
			ifaces[iface.Name] = true
		}
	}
	return nil
}

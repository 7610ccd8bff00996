package promotion

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamik/switchyard/internal/config"
	"github.com/imamik/switchyard/internal/inventory"
)

// Target is a device to validate and how to log in to it.
type Target struct {
	// DeviceID pins the target to one inventory device. Zero means look up by Name.
	DeviceID uint   `json:"device_id,omitempty"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// TestbedFromStore returns one target per planned device with a primary
// IPv4, ordered by device ID. Credentials come from cfg.
func TestbedFromStore(ctx context.Context, store inventory.Store, cfg config.Validation) ([]Target, error) {
	devices, err := store.ListDevices(ctx, inventory.DeviceFilter{Status: inventory.StatusPlanned})
	if err != nil {
		return nil, fmt.Errorf("listing planned devices: %w", err)
	}

	var targets []Target
	for _, d := range devices {
		if d.PrimaryIPv4ID == nil {
			continue
		}
		addr, err := store.GetIPAddress(ctx, inventory.IPAddressFilter{ID: *d.PrimaryIPv4ID})
		if err != nil {
			return nil, fmt.Errorf("primary address of %s: %w", d.Name, err)
		}
		host, err := hostOf(addr.Address)
		if err != nil {
			return nil, fmt.Errorf("primary address of %s: %w", d.Name, err)
		}
		targets = append(targets, Target{
			DeviceID: d.ID,
			Name:     d.Name,
			Host:     host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	return targets, nil
}

func hostOf(address string) (string, error) {
	if !strings.Contains(address, "/") {
		a, err := netip.ParseAddr(address)
		if err != nil {
			return "", err
		}
		return a.String(), nil
	}
	p, err := netip.ParsePrefix(address)
	if err != nil {
		return "", err
	}
	return p.Addr().String(), nil
}

// testbedFile mirrors the subset of a pyATS testbed file that is used.
type testbedFile struct {
	Devices map[string]struct {
		Connections struct {
			CLI struct {
				IP   string `yaml:"ip"`
				Port int    `yaml:"port"`
			} `yaml:"cli"`
		} `yaml:"connections"`
		Credentials struct {
			Default struct {
				Username string `yaml:"username"`
				Password string `yaml:"password"`
			} `yaml:"default"`
		} `yaml:"credentials"`
	} `yaml:"devices"`
}

// LoadTestbed reads a testbed YAML file. Missing ports and credentials fall
// back to cfg. Targets are sorted by name.
func LoadTestbed(path string, cfg config.Validation) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testbed: %w", err)
	}
	return ParseTestbed(data, cfg)
}

// ParseTestbed parses testbed YAML; see LoadTestbed.
func ParseTestbed(data []byte, cfg config.Validation) ([]Target, error) {
	var tb testbedFile
	if err := yaml.Unmarshal(data, &tb); err != nil {
		return nil, fmt.Errorf("failed to parse testbed: %w", err)
	}

	targets := make([]Target, 0, len(tb.Devices))
	for name, d := range tb.Devices {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("testbed device with empty name")
		}
		if d.Connections.CLI.IP == "" {
			return nil, fmt.Errorf("testbed device %s: connections.cli.ip is required", name)
		}
		targets = append(targets, Target{
			Name:     name,
			Host:     d.Connections.CLI.IP,
			Port:     d.Connections.CLI.Port,
			Username: d.Credentials.Default.Username,
			Password: d.Credentials.Default.Password,
		})
	}
	slices.SortFunc(targets, func(a, b Target) int { return strings.Compare(a.Name, b.Name) })
	return WithDefaults(targets, cfg), nil
}

// WithDefaults fills missing ports and credentials from cfg.
func WithDefaults(targets []Target, cfg config.Validation) []Target {
	out := make([]Target, len(targets))
	for i, t := range targets {
		if t.Port == 0 {
			t.Port = cfg.Port
		}
		if t.Username == "" {
			t.Username = cfg.Username
		}
		if t.Password == "" {
			t.Password = cfg.Password
		}
		out[i] = t
	}
	return out
}

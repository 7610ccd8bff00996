package config

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the answers collected by RunWizard.
type WizardResult struct {
	Driver       string
	DSN          string
	InventoryURL string
	CatalystHost string
	CatalystUser string
	Insecure     bool
	PipelineURL  string
	NTPPeer      string
	DeviceUser   string
}

// RunWizard asks for the settings that differ per deployment. Secrets are
// left out on purpose; they belong in environment variables.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	d := Defaults()
	result := &WizardResult{
		Driver:  d.Inventory.Driver,
		DSN:     d.Inventory.DSN,
		NTPPeer: d.Validation.NTPPeer,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Record store").
				Description("Where inventory records live").
				Options(
					huh.NewOption("SQLite file (single operator)", "sqlite"),
					huh.NewOption("PostgreSQL", "postgres"),
					huh.NewOption("MySQL / MariaDB", "mysql"),
				).
				Value(&result.Driver),
			huh.NewInput().
				Title("Connection string").
				Description("File path for sqlite, DSN for postgres or mysql").
				Value(&result.DSN).
				Validate(validateNotEmpty("connection string")),
			huh.NewInput().
				Title("Inventory UI URL (optional)").
				Description("Used to link created records in run messages").
				Placeholder("https://netbox.example.com").
				Value(&result.InventoryURL).
				Validate(validateOptionalURL),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Catalyst Center host").
				Description("Onboarding inventory that reports switch bootstrap addresses").
				Placeholder("dnac.example.com").
				Value(&result.CatalystHost).
				Validate(validateHost),
			huh.NewInput().
				Title("Catalyst Center user").
				Value(&result.CatalystUser).
				Validate(validateNotEmpty("user")),
			huh.NewConfirm().
				Title("Skip TLS verification?").
				Description("Only for lab controllers with self-signed certificates").
				Value(&result.Insecure),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Pipeline trigger URL (optional)").
				Placeholder("https://gitlab.example.com/api/v4/projects/42/trigger/pipeline").
				Value(&result.PipelineURL).
				Validate(validateOptionalURL),
			huh.NewInput().
				Title("Expected NTP peer").
				Value(&result.NTPPeer).
				Validate(validateIP),
			huh.NewInput().
				Title("Switch CLI user").
				Description("Used to log in for post-deployment validation").
				Value(&result.DeviceUser),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}
	return result, nil
}

// ToConfig converts the answers into a full Config with defaults applied.
func (r *WizardResult) ToConfig() *Config {
	cfg := Defaults()
	cfg.Inventory.Driver = r.Driver
	cfg.Inventory.DSN = r.DSN
	cfg.Inventory.URL = strings.TrimRight(r.InventoryURL, "/")
	cfg.Catalyst.Host = r.CatalystHost
	cfg.Catalyst.Username = r.CatalystUser
	cfg.Catalyst.Insecure = r.Insecure
	cfg.Pipeline.TriggerURL = r.PipelineURL
	cfg.Validation.NTPPeer = r.NTPPeer
	cfg.Validation.Username = r.DeviceUser
	return cfg
}

func validateNotEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateOptionalURL(s string) error {
	if s == "" {
		return nil
	}
	return validateURL(s)
}

func validateHost(s string) error {
	if s == "" {
		return fmt.Errorf("host is required")
	}
	if strings.Contains(s, "://") || strings.Contains(s, "/") {
		return fmt.Errorf("enter the host name only, without scheme or path")
	}
	return nil
}

func validateIP(s string) error {
	if net.ParseIP(s) == nil {
		return fmt.Errorf("%q is not an IP address", s)
	}
	return nil
}

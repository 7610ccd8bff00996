package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// ValidDrivers lists the supported record store backends.
var ValidDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"mysql":    true,
}

// Validate checks settings every command depends on. Settings needed only by
// one operation are checked by the Require* helpers when that operation runs.
func (c *Config) Validate() error {
	var errs []error

	if !ValidDrivers[c.Inventory.Driver] {
		errs = append(errs, fmt.Errorf("inventory.driver %q: must be one of sqlite, postgres, mysql", c.Inventory.Driver))
	}
	if c.Inventory.DSN == "" {
		errs = append(errs, fmt.Errorf("inventory.dsn is required"))
	}
	if c.Inventory.MgmtVLAN == "" {
		errs = append(errs, fmt.Errorf("inventory.mgmt_vlan is required"))
	}
	if c.Inventory.URL != "" {
		if err := validateURL(c.Inventory.URL); err != nil {
			errs = append(errs, fmt.Errorf("inventory.url: %w", err))
		}
	}
	if c.Pipeline.TriggerURL != "" {
		if err := validateURL(c.Pipeline.TriggerURL); err != nil {
			errs = append(errs, fmt.Errorf("pipeline.trigger_url: %w", err))
		}
	}
	if c.Validation.Port < 1 || c.Validation.Port > 65535 {
		errs = append(errs, fmt.Errorf("validation.port %d: must be between 1 and 65535", c.Validation.Port))
	}
	if c.Validation.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("validation.concurrency must be at least 1"))
	}
	if c.Validation.NTPPeer != "" && net.ParseIP(c.Validation.NTPPeer) == nil {
		errs = append(errs, fmt.Errorf("validation.ntp_peer %q: not an IP address", c.Validation.NTPPeer))
	}
	if c.Timeouts.HTTP <= 0 {
		errs = append(errs, fmt.Errorf("timeouts.http must be positive"))
	}
	if c.Timeouts.SSHDial <= 0 {
		errs = append(errs, fmt.Errorf("timeouts.ssh_dial must be positive"))
	}
	if c.Timeouts.SSHAttempts < 1 {
		errs = append(errs, fmt.Errorf("timeouts.ssh_attempts must be at least 1"))
	}

	return errors.Join(errs...)
}

// RequireCatalyst checks the onboarding inventory settings.
func (c *Config) RequireCatalyst() error {
	return required(map[string]string{
		"catalyst.host":     c.Catalyst.Host,
		"catalyst.username": c.Catalyst.Username,
		"catalyst.password": c.Catalyst.Password,
	})
}

// RequireGeocode checks the geocoding settings.
func (c *Config) RequireGeocode() error {
	return required(map[string]string{"geocode.api_key": c.Geocode.APIKey})
}

// RequireValidation checks the device login settings.
func (c *Config) RequireValidation() error {
	return required(map[string]string{
		"validation.username": c.Validation.Username,
		"validation.password": c.Validation.Password,
		"validation.ntp_peer": c.Validation.NTPPeer,
	})
}

// RequireAPIAuth checks the token signing settings.
func (c *Config) RequireAPIAuth() error {
	if err := required(map[string]string{"api.jwt_secret": c.API.JWTSecret}); err != nil {
		return err
	}
	if len(c.API.JWTSecret) < 32 {
		return fmt.Errorf("api.jwt_secret must be at least 32 characters")
	}
	return nil
}

func required(fields map[string]string) error {
	var missing []string
	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

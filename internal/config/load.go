package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// SWITCHYARD_CATALYST_HOST.
const EnvPrefix = "SWITCHYARD"

// DefaultConfigName is the file looked up when no path is given.
const DefaultConfigName = "switchyard"

// legacyEnv maps config keys to the variable names the Ansible playbooks
// read from vars.json and the CI environment.
var legacyEnv = map[string]string{
	"inventory.url":        "NETBOX_API",
	"catalyst.host":        "DNAC_HOST",
	"catalyst.username":    "DNAC_USER",
	"catalyst.password":    "DNAC_PASSWORD",
	"geocode.api_key":      "GOOGLE_API_KEY",
	"pipeline.trigger_url": "GITLAB_API",
	"pipeline.token":       "GITLAB_TRIGGER_TOKEN",
	"pipeline.web_url":     "GITLAB_URL",
	"validation.username":  "DNAC_CLI_USER",
	"validation.password":  "DNAC_CLI_PASSWORD",
}

// Load reads the configuration. With an empty path it looks for
// switchyard.yaml in the working directory and in $HOME/.config/switchyard
// and silently uses defaults when neither exists. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "switchyard"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("inventory.driver", d.Inventory.Driver)
	v.SetDefault("inventory.dsn", d.Inventory.DSN)
	v.SetDefault("inventory.url", d.Inventory.URL)
	v.SetDefault("inventory.debug", d.Inventory.Debug)
	v.SetDefault("inventory.mgmt_vlan", d.Inventory.MgmtVLAN)

	v.SetDefault("catalyst.host", d.Catalyst.Host)
	v.SetDefault("catalyst.username", d.Catalyst.Username)
	v.SetDefault("catalyst.password", d.Catalyst.Password)
	v.SetDefault("catalyst.insecure", d.Catalyst.Insecure)

	v.SetDefault("geocode.api_key", d.Geocode.APIKey)
	v.SetDefault("geocode.base_url", d.Geocode.BaseURL)

	v.SetDefault("pipeline.trigger_url", d.Pipeline.TriggerURL)
	v.SetDefault("pipeline.token", d.Pipeline.Token)
	v.SetDefault("pipeline.web_url", d.Pipeline.WebURL)

	v.SetDefault("validation.ntp_peer", d.Validation.NTPPeer)
	v.SetDefault("validation.username", d.Validation.Username)
	v.SetDefault("validation.password", d.Validation.Password)
	v.SetDefault("validation.port", d.Validation.Port)
	v.SetDefault("validation.command", d.Validation.Command)
	v.SetDefault("validation.concurrency", d.Validation.Concurrency)

	v.SetDefault("archive.bucket", d.Archive.Bucket)
	v.SetDefault("archive.prefix", d.Archive.Prefix)
	v.SetDefault("archive.endpoint", d.Archive.Endpoint)
	v.SetDefault("archive.region", d.Archive.Region)
	v.SetDefault("archive.access_key", d.Archive.AccessKey)
	v.SetDefault("archive.secret_key", d.Archive.SecretKey)

	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.jwt_secret", d.API.JWTSecret)
	v.SetDefault("api.token_ttl", d.API.TokenTTL)

	v.SetDefault("timeouts.http", d.Timeouts.HTTP)
	v.SetDefault("timeouts.ssh_dial", d.Timeouts.SSHDial)
	v.SetDefault("timeouts.ssh_attempts", d.Timeouts.SSHAttempts)
	v.SetDefault("timeouts.ssh_retry_delay", d.Timeouts.SSHRetryDelay)
}

// Save writes cfg as YAML readable only by the owner.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

package config

import "time"

// Config is the complete runtime configuration.
type Config struct {
	Inventory  Inventory  `mapstructure:"inventory" yaml:"inventory"`
	Catalyst   Catalyst   `mapstructure:"catalyst" yaml:"catalyst"`
	Geocode    Geocode    `mapstructure:"geocode" yaml:"geocode"`
	Pipeline   Pipeline   `mapstructure:"pipeline" yaml:"pipeline"`
	Validation Validation `mapstructure:"validation" yaml:"validation"`
	Archive    Archive    `mapstructure:"archive" yaml:"archive"`
	API        API        `mapstructure:"api" yaml:"api"`
	Timeouts   Timeouts   `mapstructure:"timeouts" yaml:"timeouts"`
}

// Inventory configures the record store.
type Inventory struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	// URL is the base of the inventory web UI, used for links in run messages.
	URL   string `mapstructure:"url" yaml:"url,omitempty"`
	Debug bool   `mapstructure:"debug" yaml:"debug,omitempty"`
	// MgmtVLAN is the VLAN attached to management prefixes.
	MgmtVLAN string `mapstructure:"mgmt_vlan" yaml:"mgmt_vlan"`
}

// Catalyst configures the onboarding inventory (Catalyst Center PnP).
type Catalyst struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
}

// Geocode configures the address lookup.
type Geocode struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// Pipeline configures the CI trigger fired after committed runs.
type Pipeline struct {
	TriggerURL string `mapstructure:"trigger_url" yaml:"trigger_url"`
	Token      string `mapstructure:"token" yaml:"token,omitempty"`
	// WebURL is the project page, used to link the pipelines view.
	WebURL string `mapstructure:"web_url" yaml:"web_url,omitempty"`
}

// Validation configures the post-deployment NTP check.
type Validation struct {
	NTPPeer  string `mapstructure:"ntp_peer" yaml:"ntp_peer"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Command  string `mapstructure:"command" yaml:"command"`

	// Concurrency is how many devices are checked at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// Archive configures uploads of run reports to S3-compatible storage.
type Archive struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
}

// Enabled reports whether run reports should be uploaded.
func (a Archive) Enabled() bool { return a.Bucket != "" }

// API configures the HTTP server.
type API struct {
	Addr      string        `mapstructure:"addr" yaml:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// Timeouts bounds every blocking external call.
type Timeouts struct {
	HTTP          time.Duration `mapstructure:"http" yaml:"http"`
	SSHDial       time.Duration `mapstructure:"ssh_dial" yaml:"ssh_dial"`
	SSHAttempts   int           `mapstructure:"ssh_attempts" yaml:"ssh_attempts"`
	SSHRetryDelay time.Duration `mapstructure:"ssh_retry_delay" yaml:"ssh_retry_delay"`
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		Inventory: Inventory{
			Driver:   "sqlite",
			DSN:      "switchyard.db",
			MgmtVLAN: "MGMT",
		},
		Validation: Validation{
			NTPPeer: "198.18.133.141",
			Port:    22,
			Command: "show ntp associations",

			Concurrency: 1,
		},
		Archive: Archive{
			Prefix: "runs",
			Region: "us-east-1",
		},
		API: API{
			Addr:     ":8080",
			TokenTTL: 24 * time.Hour,
		},
		Timeouts: Timeouts{
			HTTP:          30 * time.Second,
			SSHDial:       10 * time.Second,
			SSHAttempts:   3,
			SSHRetryDelay: 5 * time.Second,
		},
	}
}

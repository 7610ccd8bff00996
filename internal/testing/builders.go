package testing

import (
	"github.com/imamik/switchyard/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder starting from the defaults
// with an in-memory store.
func NewConfigBuilder() *ConfigBuilder {
	cfg := *config.Defaults()
	cfg.Inventory.DSN = ":memory:"
	cfg.Timeouts.SSHRetryDelay = 0
	cfg.Timeouts.SSHAttempts = 1
	return &ConfigBuilder{cfg: cfg}
}

// WithInventoryURL sets the inventory UI URL used for links.
func (b *ConfigBuilder) WithInventoryURL(url string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Inventory.URL = url
	return newBuilder
}

// WithDSN points the sqlite store at dsn.
func (b *ConfigBuilder) WithDSN(dsn string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Inventory.DSN = dsn
	return newBuilder
}

// WithMgmtVLAN sets the management VLAN name.
func (b *ConfigBuilder) WithMgmtVLAN(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Inventory.MgmtVLAN = name
	return newBuilder
}

// WithNTPPeer sets the expected NTP peer.
func (b *ConfigBuilder) WithNTPPeer(peer string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Validation.NTPPeer = peer
	return newBuilder
}

// WithDeviceCredentials sets the switch CLI login.
func (b *ConfigBuilder) WithDeviceCredentials(user, password string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Validation.Username = user
	newBuilder.cfg.Validation.Password = password
	return newBuilder
}

// WithPipeline sets the pipeline trigger.
func (b *ConfigBuilder) WithPipeline(triggerURL, token string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Pipeline.TriggerURL = triggerURL
	newBuilder.cfg.Pipeline.Token = token
	return newBuilder
}

// WithJWTSecret sets the API signing secret.
func (b *ConfigBuilder) WithJWTSecret(secret string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.API.JWTSecret = secret
	return newBuilder
}

// Build returns a copy of the configured Config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}

// clone creates a copy of the builder. Config holds no maps or slices, so a
// value copy is deep.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	return &ConfigBuilder{cfg: b.cfg}
}

// MinimalConfig returns the default test config.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}

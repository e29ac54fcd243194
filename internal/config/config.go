// Package config provides configuration management for Nebula.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nebulaai/nebula/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Provider ProviderConfig `yaml:"provider"`
	Network  NetworkConfig  `yaml:"network"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig defines wallet provider bridge settings.
type ProviderConfig struct {
	// BridgeURL is the JSON-RPC endpoint of the wallet bridge. Empty means
	// no provider is available and operations fail with PROVIDER_UNAVAILABLE.
	BridgeURL string `yaml:"bridge_url"`

	// EventPollMS is how often provider events are polled, in milliseconds.
	EventPollMS int `yaml:"event_poll_ms"`

	// RatePerSecond limits outgoing provider calls.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// RateBurst is the rate limiter burst size.
	RateBurst int `yaml:"rate_burst"`
}

// NetworkConfig defines chain selection settings.
type NetworkConfig struct {
	// PreferredChainID is the hex chain id the session steers toward when
	// the wallet reports an unsupported chain.
	PreferredChainID string `yaml:"preferred_chain_id"`
}

// CheckoutConfig defines GPU rental payment settings.
type CheckoutConfig struct {
	// PaymentAddress receives rental payments.
	PaymentAddress string `yaml:"payment_address"`

	// ReceiptPollSeconds is the interval between receipt polls.
	ReceiptPollSeconds int `yaml:"receipt_poll_seconds"`

	// ReceiptMaxAttempts bounds receipt polling before reporting timeout.
	ReceiptMaxAttempts int `yaml:"receipt_max_attempts"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the nebula home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetBridgeURL returns the wallet bridge endpoint.
func (c *Config) GetBridgeURL() string {
	return c.Provider.BridgeURL
}

// GetPreferredChainID returns the preferred hex chain id.
func (c *Config) GetPreferredChainID() string {
	return c.Network.PreferredChainID
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// EventPollInterval returns the provider event poll cadence.
func (c *Config) EventPollInterval() time.Duration {
	if c.Provider.EventPollMS <= 0 {
		return time.Duration(DefaultEventPollMS) * time.Millisecond
	}
	return time.Duration(c.Provider.EventPollMS) * time.Millisecond
}

// ReceiptPollInterval returns the transaction receipt poll cadence.
func (c *Config) ReceiptPollInterval() time.Duration {
	if c.Checkout.ReceiptPollSeconds <= 0 {
		return time.Duration(DefaultReceiptPollSeconds) * time.Second
	}
	return time.Duration(c.Checkout.ReceiptPollSeconds) * time.Second
}

// DefaultHome returns the default nebula home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nebula"
	}
	return filepath.Join(home, ".nebula")
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome           = "NEBULA_HOME"
	EnvBridgeURL      = "NEBULA_BRIDGE_URL"
	EnvPreferredChain = "NEBULA_PREFERRED_CHAIN"
	EnvOutputFormat   = "NEBULA_OUTPUT_FORMAT"
	EnvVerbose        = "NEBULA_VERBOSE"
	EnvLogLevel       = "NEBULA_LOG_LEVEL"
	EnvNoColor        = "NO_COLOR"
	EnvReceiptPoll    = "NEBULA_RECEIPT_POLL_SECONDS"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvBridgeURL); v != "" {
		cfg.Provider.BridgeURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvPreferredChain); v != "" {
		cfg.Network.PreferredChainID = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	if v := os.Getenv(EnvReceiptPoll); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Checkout.ReceiptPollSeconds = secs
		}
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided bridge URLs that may contain copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

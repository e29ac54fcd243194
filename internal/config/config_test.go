package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "0x1", cfg.Network.PreferredChainID)
	assert.Equal(t, config.DefaultPaymentAddress, cfg.Checkout.PaymentAddress)
	assert.Equal(t, 1, cfg.Checkout.ReceiptPollSeconds)
	assert.Equal(t, "auto", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := config.Defaults()
	cfg.Provider.BridgeURL = "http://localhost:9999"
	cfg.Network.PreferredChainID = "0x89"

	require.NoError(t, config.Save(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", loaded.GetBridgeURL())
	assert.Equal(t, "0x89", loaded.GetPreferredChainID())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("network:\n  preferred_chain_id: \"0xa\"\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0xa", cfg.Network.PreferredChainID)
	// Untouched sections keep defaults
	assert.Equal(t, config.DefaultPaymentAddress, cfg.Checkout.PaymentAddress)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(config.EnvBridgeURL, " http://bridge:1234 ")
	t.Setenv(config.EnvPreferredChain, "0xA4B1")
	t.Setenv(config.EnvVerbose, "yes")
	t.Setenv(config.EnvLogLevel, "DEBUG")

	cfg := config.Defaults()
	config.ApplyEnvironment(cfg)

	assert.Equal(t, "http://bridge:1234", cfg.Provider.BridgeURL)
	assert.Equal(t, "0xa4b1", cfg.Network.PreferredChainID)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvironment_NoColor(t *testing.T) {
	t.Setenv(config.EnvNoColor, "1")

	cfg := config.Defaults()
	config.ApplyEnvironment(cfg)

	assert.Equal(t, "never", cfg.Output.Color)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/nebula", "config.yaml"), config.Path("/tmp/nebula"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, config.LogLevelOff, config.ParseLogLevel("off"))
	assert.Equal(t, config.LogLevelDebug, config.ParseLogLevel("Debug"))
	assert.Equal(t, config.LogLevelError, config.ParseLogLevel("error"))
	assert.Equal(t, config.LogLevelError, config.ParseLogLevel("bogus"))
}

func TestLogger_WritesAtLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nebula.log")

	logger, err := config.NewLogger(config.LogLevelDebug, path)
	require.NoError(t, err)

	logger.Debug("debug %s", "message")
	logger.Error("error message")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path) // #nosec G304 -- test temp dir
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug message")
	assert.Contains(t, string(data), "error message")
}

func TestLogger_OffDiscards(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nebula.log")

	logger, err := config.NewLogger(config.LogLevelOff, path)
	require.NoError(t, err)

	logger.Error("should not appear")
	require.NoError(t, logger.Close())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNullLogger(t *testing.T) {
	logger := config.NullLogger()
	logger.Debug("no-op")
	logger.Error("no-op")
	assert.Equal(t, config.LogLevelOff, logger.Level())
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/config"
	"github.com/nebulaai/nebula/internal/output"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify Nebula configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.nebula/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  nebula config init
  nebula config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.

Examples:
  nebula config get provider.bridge_url
  nebula config get network.preferred_chain_id
  nebula config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.
The configuration file will be updated immediately.

Examples:
  nebula config set provider.bridge_url http://127.0.0.1:8547
  nebula config set network.preferred_chain_id 0x89
  nebula config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return nebulaerr.WithSuggestion(
			nebulaerr.Wrap(nebulaerr.ErrGeneral, "configuration already exists at %s", configPath),
			"Use --force to overwrite",
		)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - provider.bridge_url: Your wallet bridge endpoint")
	outln(w, "  - network.preferred_chain_id: Preferred hex chain id")
	outln(w, "  - output.default_format: Output format (text/json)")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, cfg)
	}

	out(w, "home: %s\n", cfg.Home)
	out(w, "provider.bridge_url: %s\n", cfg.Provider.BridgeURL)
	out(w, "provider.event_poll_ms: %d\n", cfg.Provider.EventPollMS)
	out(w, "network.preferred_chain_id: %s\n", cfg.Network.PreferredChainID)
	out(w, "checkout.payment_address: %s\n", cfg.Checkout.PaymentAddress)
	out(w, "output.default_format: %s\n", cfg.Output.DefaultFormat)
	out(w, "logging.level: %s\n", cfg.Logging.Level)
	out(w, "logging.file: %s\n", cfg.Logging.File)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := getConfigValue(cfg, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	value := args[1]

	// Validate the path before touching the file.
	if _, err := getConfigValue(cfg, path); err != nil {
		return err
	}

	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	if err := setConfigValue(currentCfg, path, value); err != nil {
		return err
	}

	if err := config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	switch path {
	case "home":
		return c.Home, nil
	case "provider.bridge_url":
		return c.Provider.BridgeURL, nil
	case "provider.event_poll_ms":
		return strconv.Itoa(c.Provider.EventPollMS), nil
	case "provider.rate_per_second":
		return strconv.FormatFloat(c.Provider.RatePerSecond, 'f', -1, 64), nil
	case "provider.rate_burst":
		return strconv.Itoa(c.Provider.RateBurst), nil
	case "network.preferred_chain_id":
		return c.Network.PreferredChainID, nil
	case "checkout.payment_address":
		return c.Checkout.PaymentAddress, nil
	case "checkout.receipt_poll_seconds":
		return strconv.Itoa(c.Checkout.ReceiptPollSeconds), nil
	case "checkout.receipt_max_attempts":
		return strconv.Itoa(c.Checkout.ReceiptMaxAttempts), nil
	case "output.default_format":
		return c.Output.DefaultFormat, nil
	case "output.color":
		return c.Output.Color, nil
	case "output.verbose":
		return strconv.FormatBool(c.Output.Verbose), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.file":
		return c.Logging.File, nil
	default:
		return "", nebulaerr.WithDetails(
			nebulaerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}
}

// setConfigValue updates a value in the config using dot notation.
//
//nolint:gocyclo // Flat key switch, one case per setting
func setConfigValue(c *config.Config, path, value string) error {
	switch path {
	case "home":
		c.Home = value
	case "provider.bridge_url":
		c.Provider.BridgeURL = config.SanitizeURL(value)
	case "provider.event_poll_ms":
		return setIntValue(&c.Provider.EventPollMS, path, value)
	case "provider.rate_per_second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return invalidConfigValue(path, value)
		}
		c.Provider.RatePerSecond = f
	case "provider.rate_burst":
		return setIntValue(&c.Provider.RateBurst, path, value)
	case "network.preferred_chain_id":
		c.Network.PreferredChainID = strings.ToLower(strings.TrimSpace(value))
	case "checkout.payment_address":
		c.Checkout.PaymentAddress = value
	case "checkout.receipt_poll_seconds":
		return setIntValue(&c.Checkout.ReceiptPollSeconds, path, value)
	case "checkout.receipt_max_attempts":
		return setIntValue(&c.Checkout.ReceiptMaxAttempts, path, value)
	case "output.default_format":
		c.Output.DefaultFormat = value
	case "output.color":
		c.Output.Color = value
	case "output.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalidConfigValue(path, value)
		}
		c.Output.Verbose = b
	case "logging.level":
		c.Logging.Level = value
	case "logging.file":
		c.Logging.File = value
	default:
		return nebulaerr.WithDetails(
			nebulaerr.ErrUnknownConfigKey,
			map[string]string{"path": path},
		)
	}
	return nil
}

func setIntValue(dst *int, path, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return invalidConfigValue(path, value)
	}
	*dst = n
	return nil
}

func invalidConfigValue(path, value string) error {
	return nebulaerr.WithDetails(
		nebulaerr.ErrInvalidInput,
		map[string]string{"path": path, "value": value},
	)
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/network"
	"github.com/nebulaai/nebula/internal/output"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// switchTimeout allows for the wallet approving the chain switch.
const switchTimeout = time.Minute

// networkCmd is the parent command for network operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
	Long:  `List supported networks and switch the wallet between them.`,
}

// networkListCmd lists the supported chain registry.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE:  runNetworkList,
}

// networkSwitchCmd switches the wallet to another chain.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var networkSwitchCmd = &cobra.Command{
	Use:   "switch <network>",
	Short: "Switch the active network",
	Long: `Switch the wallet to another supported network.

The network can be given by name or hex chain id. Chains the wallet does
not know yet are registered from the built-in registry first.

Examples:
  nebula network switch polygon
  nebula network switch 0xa4b1`,
	Args: cobra.ExactArgs(1),
	RunE: runNetworkSwitch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(networkCmd)
	networkCmd.AddCommand(networkListCmd)
	networkCmd.AddCommand(networkSwitchCmd)
}

func runNetworkList(cmd *cobra.Command, _ []string) error {
	chains := network.All()

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), chains)
	}

	table := output.NewTable("NETWORK", "CHAIN ID", "CURRENCY")
	for _, info := range chains {
		table.AddRow(info.Name, info.ChainID, info.CurrencySymbol)
	}
	return table.Render(cmd.OutOrStdout())
}

func runNetworkSwitch(cmd *cobra.Command, args []string) error {
	info, err := resolveNetwork(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, switchTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}

	snap, err := cmdCtx.Controller.SwitchChain(ctx, info.ChainID)
	if err != nil {
		return err
	}
	return renderSession(cmd.OutOrStdout(), formatter.Format(), snap)
}

// resolveNetwork maps a user-supplied name or hex chain id onto the
// registry, suggesting the closest name on a miss.
func resolveNetwork(arg string) (network.ChainInfo, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(arg)), "0x") {
		if info, ok := network.Lookup(arg); ok {
			return info, nil
		}
		return network.ChainInfo{}, nebulaerr.WithSuggestion(
			nebulaerr.Wrap(nebulaerr.ErrUnsupportedChain, "unsupported chain id: %s", arg),
			"Run \"nebula network list\" for supported networks",
		)
	}

	if info, ok := network.ByName(arg); ok {
		return info, nil
	}

	suggestion := "Run \"nebula network list\" for supported networks"
	if closest := network.SuggestName(arg); closest != "" {
		suggestion = fmt.Sprintf("Did you mean %q? Run \"nebula network list\" for supported networks", closest)
	}
	return network.ChainInfo{}, nebulaerr.WithSuggestion(
		nebulaerr.Wrap(nebulaerr.ErrUnknownNetwork, "unknown network: %s", arg),
		suggestion,
	)
}

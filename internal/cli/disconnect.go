package cli

import (
	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/output"
)

// disconnectCmd tears down the wallet session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the wallet",
	Long: `Disconnect the wallet session.

The wallet itself stays authorized; only this client's session state is
cleared. Disconnecting while already disconnected is not an error.`,
	RunE: runDisconnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	snap := cmdCtx.Controller.Disconnect()

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), snap)
	}
	outln(cmd.OutOrStdout(), "Wallet disconnected.")
	return nil
}

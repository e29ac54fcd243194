package cli

import (
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// connectResume only adopts an existing authorization, never prompting.
	connectResume bool
)

// connectTimeout allows for the human approving the wallet prompt.
const connectTimeout = 2 * time.Minute

// connectCmd establishes a wallet session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a wallet",
	Long: `Connect a wallet through the local wallet bridge.

The bridge asks the wallet to authorize this client. If the site is
already authorized, the session is adopted silently without a prompt.

Examples:
  # Connect, prompting the wallet if needed
  nebula connect

  # Only adopt an existing authorization, never prompt
  nebula connect --resume`,
	RunE: runConnect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().BoolVar(&connectResume, "resume", false, "adopt an existing authorization without prompting")
}

func runConnect(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, connectTimeout)
	defer cancel()

	var err error
	if connectResume {
		_, err = cmdCtx.Controller.Resume(ctx)
	} else {
		_, err = cmdCtx.Controller.Connect(ctx)
	}
	if err != nil {
		return err
	}

	// Render the settled snapshot rather than the connect result: the
	// balance refresh may have landed after the connect commit.
	return renderSession(cmd.OutOrStdout(), formatter.Format(), cmdCtx.Controller.Snapshot())
}

package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// refreshTimeout bounds the chain and balance reads.
const refreshTimeout = 30 * time.Second

// refreshCmd re-reads chain and balance from the provider.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh chain and balance",
	Long: `Re-read the active chain and account balance from the wallet
provider and update the session.`,
	RunE: runRefresh,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, refreshTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}

	snap, err := cmdCtx.Controller.Refresh(ctx)
	if err != nil {
		return err
	}
	return renderSession(cmd.OutOrStdout(), formatter.Format(), snap)
}

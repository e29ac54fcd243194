package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// statusTimeout bounds the silent authorization check.
const statusTimeout = 30 * time.Second

// statusCmd shows the current session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet session",
	Long: `Show the current wallet session.

An existing wallet authorization is adopted silently; the wallet is
never prompted. Without one the session reports disconnected.`,
	RunE: runStatus,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, statusTimeout)
	defer cancel()

	// Best-effort: an unreachable bridge still renders a disconnected
	// session instead of failing the status command.
	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		logger.Debug("status: resume failed: %v", err)
	}

	return renderSession(cmd.OutOrStdout(), formatter.Format(), cmdCtx.Controller.Snapshot())
}

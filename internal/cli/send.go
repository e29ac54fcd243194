package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/provider"
	"github.com/nebulaai/nebula/internal/session"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// sendTo is the recipient address.
	sendTo string
	// sendAmount is the amount to send.
	sendAmount string
	// sendConfirm skips the confirmation prompt if true.
	sendConfirm bool
)

// sendTimeout covers the wallet prompt plus receipt polling.
const sendTimeout = 2 * time.Minute

// sendCmd submits a native transfer.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send native currency",
	Long: `Send native currency through the connected wallet.

The wallet signs and broadcasts the transaction; this client tracks the
hash and waits for the receipt. Only one transaction can be pending at a
time.

Examples:
  nebula send --to 0x71C7656EC7ab88b098defB751B7401B5f6d8976F --amount 0.25
  nebula send --to 0x71C7656EC7ab88b098defB751B7401B5f6d8976F --amount 0.25 --yes`,
	RunE: runSend,
}

// resolveCmd resolves a transaction left pending by an earlier timeout.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a pending transaction",
	Long: `Check the pending transaction once and clear it if a receipt
has arrived. Used after a send timed out without a receipt.`,
	RunE: runResolve,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(resolveCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient address (required)")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount to send (required)")
	sendCmd.Flags().BoolVar(&sendConfirm, "yes", false, "skip confirmation prompt")

	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, sendTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}

	snap := cmdCtx.Controller.Snapshot()
	if !sendConfirm {
		displaySendDetails(cmd, snap, sendTo, sendAmount)
		if !promptConfirmFn() {
			outln(cmd.OutOrStdout(), "Transaction canceled.")
			return nil
		}
	}

	result, err := cmdCtx.Controller.Submit(ctx, sendTo, sendAmount, submitOptions())
	if err != nil {
		return err
	}

	displaySendResult(cmd, snap, result)
	return nil
}

func runResolve(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, statusTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}

	if !cmdCtx.Controller.Snapshot().HasPendingTx() {
		if formatter.Format() == output.FormatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"pending": false})
		}
		outln(cmd.OutOrStdout(), "No pending transaction.")
		return nil
	}

	receipt, err := cmdCtx.Controller.ResolvePendingTx(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, receipt)
	}
	if receipt == nil {
		outln(w, "Transaction still pending.")
		return nil
	}
	out(w, "Transaction confirmed in block %d.\n", receipt.BlockNumber)
	return nil
}

// displaySendDetails shows transaction details before confirmation.
func displaySendDetails(cmd *cobra.Command, snap session.Session, to, amount string) {
	w := cmd.OutOrStdout()
	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w, "                    TRANSACTION DETAILS")
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w)

	out(w, "  From:    %s\n", snap.Account)
	out(w, "  To:      %s\n", to)
	out(w, "  Amount:  %s %s\n", amount, snap.Network.CurrencySymbol)
	out(w, "  Network: %s\n", snap.Network.Name)

	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
}

// displaySendResult shows the submission outcome.
func displaySendResult(cmd *cobra.Command, snap session.Session, result *session.SubmitResult) {
	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		writeSendResultJSON(w, result)
		return
	}

	outln(w, "\nTransaction confirmed!")
	outln(w)
	out(w, "  Hash:   %s\n", result.TransactionHash)
	if result.Receipt != nil {
		out(w, "  Block:  %d\n", result.Receipt.BlockNumber)
	}
	if snap.Network.BlockExplorerURL != "" && snap.Network.BlockExplorerURL != "#" {
		outln(w)
		outln(w, "Track your transaction:")
		out(w, "  %s/tx/%s\n", snap.Network.BlockExplorerURL, result.TransactionHash)
	}
}

func writeSendResultJSON(w io.Writer, result *session.SubmitResult) {
	payload := struct {
		Hash    string            `json:"hash"`
		Receipt *provider.Receipt `json:"receipt,omitempty"`
	}{
		Hash:    result.TransactionHash,
		Receipt: result.Receipt,
	}
	_ = writeJSON(w, payload)
}

package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/gpu"
	"github.com/nebulaai/nebula/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// rentHours is the rental duration.
	rentHours int
	// rentList shows the catalog instead of renting.
	rentList bool
	// rentConfirm skips the confirmation prompt if true.
	rentConfirm bool
)

// rentTimeout covers the wallet prompt plus receipt polling.
const rentTimeout = 2 * time.Minute

// rentCmd rents GPU compute.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var rentCmd = &cobra.Command{
	Use:   "rent [model]",
	Short: "Rent GPU compute",
	Long: `Rent GPU compute from the marketplace, paying with native currency
through the connected wallet.

Examples:
  # Show the GPU catalog
  nebula rent --list

  # Rent an RTX 4090 for 24 hours
  nebula rent rtx4090 --hours 24`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRent,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(rentCmd)

	rentCmd.Flags().IntVar(&rentHours, "hours", 1, "rental duration in hours: 1, 6, 12, 24, 72, 168")
	rentCmd.Flags().BoolVar(&rentList, "list", false, "show the GPU catalog")
	rentCmd.Flags().BoolVar(&rentConfirm, "yes", false, "skip confirmation prompt")
}

func runRent(cmd *cobra.Command, args []string) error {
	if rentList || len(args) == 0 {
		return displayCatalog(cmd)
	}

	quote, err := gpu.NewQuote(args[0], rentHours)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, rentTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}

	if !rentConfirm {
		displayQuote(cmd, quote)
		if !promptConfirmFn() {
			outln(cmd.OutOrStdout(), "Rental canceled.")
			return nil
		}
	}

	rental, err := cmdCtx.Checkout.Rent(ctx, args[0], rentHours, submitOptions())
	if err != nil {
		return err
	}

	displayRental(cmd, rental)
	return nil
}

func displayCatalog(cmd *cobra.Command) error {
	models := gpu.Catalog()

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), models)
	}

	table := output.NewTable("MODEL", "NAME", "VRAM", "CUDA CORES", "CREDITS/HR")
	for _, m := range models {
		table.AddRow(
			m.ID,
			m.Name,
			m.VRAM,
			strconv.Itoa(m.CUDACores),
			strconv.FormatFloat(m.CreditsPerHour, 'f', 2, 64),
		)
	}
	return table.Render(cmd.OutOrStdout())
}

// displayQuote shows the rental cost before confirmation.
func displayQuote(cmd *cobra.Command, quote *gpu.Quote) {
	w := cmd.OutOrStdout()
	outln(w)
	out(w, "  GPU:      %s (%s, %d CUDA cores)\n", quote.Model.Name, quote.Model.VRAM, quote.Model.CUDACores)
	out(w, "  Duration: %d hours\n", quote.Hours)
	out(w, "  Credits:  %.2f\n", quote.CostCredits)
	out(w, "  Cost:     %s ETH\n", quote.CostETH)
}

// displayRental shows the checkout outcome.
func displayRental(cmd *cobra.Command, rental *gpu.Rental) {
	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		_ = writeJSON(w, rental)
		return
	}

	outln(w, "\nRental confirmed!")
	outln(w)
	out(w, "  GPU:      %s\n", rental.Quote.Model.Name)
	out(w, "  Duration: %d hours\n", rental.Quote.Hours)
	out(w, "  Paid:     %s ETH\n", rental.Quote.CostETH)
	out(w, "  Tx:       %s\n", rental.TransactionHash)
}

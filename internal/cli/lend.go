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
	// lendQuantity is how many GPUs are offered.
	lendQuantity int
	// lendLocation is the datacenter region.
	lendLocation string
	// lendDailyHours is the daily availability window.
	lendDailyHours int
	// lendTop bounds the leaderboard listing.
	lendTop int
)

// lendRegisterTimeout covers the registration settlement delay.
const lendRegisterTimeout = 30 * time.Second

// lendCmd is the parent command for lending operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lendCmd = &cobra.Command{
	Use:   "lend",
	Short: "Lend your GPUs",
	Long:  `Offer GPU hardware to the marketplace and track lender earnings.`,
}

// lendModelsCmd lists lendable GPU models.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lendModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List lendable GPU models",
	RunE:  runLendModels,
}

// lendEstimateCmd projects lender earnings.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lendEstimateCmd = &cobra.Command{
	Use:   "estimate <model>",
	Short: "Estimate lending earnings",
	Long: `Project hourly, daily, weekly and monthly credit earnings for a
GPU offering.

Examples:
  nebula lend estimate rtx4090 --quantity 2 --daily-hours 24
  nebula lend estimate a100 --quantity 10`,
	Args: cobra.ExactArgs(1),
	RunE: runLendEstimate,
}

// lendRegisterCmd registers hardware with the marketplace.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lendRegisterCmd = &cobra.Command{
	Use:   "register <model>",
	Short: "Register GPUs for lending",
	Long: `Register GPU hardware with the marketplace. Registration settles
asynchronously and places the connected wallet on the lender leaderboard.

Examples:
  nebula lend register rtx4090 --quantity 2 --location "Europe"`,
	Args: cobra.ExactArgs(1),
	RunE: runLendRegister,
}

// lendLeaderboardCmd shows the top lenders.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lendLeaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the lender leaderboard",
	RunE:  runLendLeaderboard,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(lendCmd)
	lendCmd.AddCommand(lendModelsCmd)
	lendCmd.AddCommand(lendEstimateCmd)
	lendCmd.AddCommand(lendRegisterCmd)
	lendCmd.AddCommand(lendLeaderboardCmd)

	lendEstimateCmd.Flags().IntVar(&lendQuantity, "quantity", 1, "number of GPUs")
	lendEstimateCmd.Flags().IntVar(&lendDailyHours, "daily-hours", 24, "hours per day the GPUs are available")

	lendRegisterCmd.Flags().IntVar(&lendQuantity, "quantity", 1, "number of GPUs")
	lendRegisterCmd.Flags().StringVar(&lendLocation, "location", "", "datacenter region (required)")
	lendRegisterCmd.Flags().IntVar(&lendDailyHours, "daily-hours", 24, "hours per day the GPUs are available")
	_ = lendRegisterCmd.MarkFlagRequired("location")

	lendLeaderboardCmd.Flags().IntVar(&lendTop, "top", 10, "number of lenders to show")
}

func runLendModels(cmd *cobra.Command, _ []string) error {
	models := gpu.LendModels()

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), models)
	}

	table := output.NewTable("MODEL", "NAME", "CREDITS/HR", "UTILIZATION")
	for _, m := range models {
		table.AddRow(
			m.ID,
			m.Name,
			strconv.FormatFloat(m.HourlyCredits, 'f', 2, 64),
			strconv.Itoa(m.UtilizationPct)+"%",
		)
	}
	return table.Render(cmd.OutOrStdout())
}

func runLendEstimate(cmd *cobra.Command, args []string) error {
	estimate, err := gpu.EstimateEarnings(args[0], lendQuantity, lendDailyHours)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, estimate)
	}

	outln(w, "Projected earnings (credits):")
	outln(w)
	out(w, "  Hourly:      %.2f\n", estimate.Hourly)
	out(w, "  Daily:       %.2f\n", estimate.Daily)
	out(w, "  Weekly:      %.2f\n", estimate.Weekly)
	out(w, "  Monthly:     %.2f\n", estimate.Monthly)
	out(w, "  Utilization: %d%%\n", estimate.UtilizationPct)
	return nil
}

func runLendRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, lendRegisterTimeout)
	defer cancel()

	if _, err := cmdCtx.Controller.Resume(ctx); err != nil {
		return err
	}
	snap := cmdCtx.Controller.Snapshot()

	reg, err := cmdCtx.Lending.Register(gpu.RegisterRequest{
		Address:    snap.Account,
		ModelID:    args[0],
		Quantity:   lendQuantity,
		Location:   lendLocation,
		DailyHours: lendDailyHours,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.Format() != output.FormatJSON {
		out(w, "Registering %d x %s in %s...\n", reg.Quantity, reg.Model.Name, reg.Location)
	}

	rank, err := reg.Wait(ctx)
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		payload := struct {
			Model    gpu.LendModel         `json:"model"`
			Quantity int                   `json:"quantity"`
			Location string                `json:"location"`
			Rank     int                   `json:"rank"`
			Estimate *gpu.EarningsEstimate `json:"estimate"`
		}{reg.Model, reg.Quantity, reg.Location, rank, reg.Estimate}
		return writeJSON(w, payload)
	}

	outln(w, "\nRegistration settled!")
	outln(w)
	out(w, "  Leaderboard rank: #%d\n", rank)
	out(w, "  Est. monthly:     %.2f credits\n", reg.Estimate.Monthly)
	return nil
}

func runLendLeaderboard(cmd *cobra.Command, _ []string) error {
	entries := cmdCtx.Lending.Board().Top(lendTop)

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	table := output.NewTable("RANK", "LENDER", "GPUS", "EARNINGS", "LOCATION")
	for _, e := range entries {
		table.AddRow(
			strconv.Itoa(e.Rank),
			e.Address,
			strconv.Itoa(e.GPUs),
			strconv.FormatFloat(e.EarningsCredits, 'f', 1, 64),
			e.Location,
		)
	}
	return table.Render(cmd.OutOrStdout())
}

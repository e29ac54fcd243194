package cli

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/staking"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// stakeAmount is the token amount to stake.
	stakeAmount float64
	// stakeDays overrides the tier lock period for estimates.
	stakeDays int
	// unstakeCooldown overrides the cooldown duration.
	unstakeCooldown time.Duration
)

// stakeCmd is the parent command for staking operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Stake tokens",
	Long:  `Inspect staking tiers, project rewards and run the unstake cooldown.`,
}

// stakeTiersCmd lists the staking brackets.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeTiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List staking tiers",
	RunE:  runStakeTiers,
}

// stakeEstimateCmd projects staking rewards.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeEstimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate staking rewards",
	Long: `Project the reward of a stake over a period. Without --days the
tier's full lock period is used.

Examples:
  nebula stake estimate --amount 50000
  nebula stake estimate --amount 50000 --days 30`,
	RunE: runStakeEstimate,
}

// stakeUnstakeCmd runs the unstake cooldown.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var stakeUnstakeCmd = &cobra.Command{
	Use:   "unstake",
	Short: "Run the unstake cooldown",
	Long: `Start the unstake cooldown and wait for release. Progress is
reported while the cooldown runs.`,
	RunE: runStakeUnstake,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(stakeCmd)
	stakeCmd.AddCommand(stakeTiersCmd)
	stakeCmd.AddCommand(stakeEstimateCmd)
	stakeCmd.AddCommand(stakeUnstakeCmd)

	stakeEstimateCmd.Flags().Float64Var(&stakeAmount, "amount", 0, "token amount to stake (required)")
	stakeEstimateCmd.Flags().IntVar(&stakeDays, "days", 0, "staking period in days (default: tier lock period)")
	_ = stakeEstimateCmd.MarkFlagRequired("amount")

	stakeUnstakeCmd.Flags().DurationVar(&unstakeCooldown, "cooldown", staking.DefaultCooldown, "cooldown duration")
}

func runStakeTiers(cmd *cobra.Command, _ []string) error {
	tiers := staking.Tiers()

	if formatter.Format() == output.FormatJSON {
		return writeJSON(cmd.OutOrStdout(), tiers)
	}

	table := output.NewTable("TIER", "MINIMUM", "APY", "LOCK")
	for _, t := range tiers {
		table.AddRow(
			t.Name,
			strconv.FormatFloat(t.MinAmount, 'f', 0, 64),
			strconv.FormatFloat(t.APYPercent, 'f', 0, 64)+"%",
			strconv.Itoa(t.LockDays)+" days",
		)
	}
	return table.Render(cmd.OutOrStdout())
}

func runStakeEstimate(cmd *cobra.Command, _ []string) error {
	estimate, err := staking.EstimateReward(stakeAmount, stakeDays)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, estimate)
	}

	out(w, "Tier:    %s (%.0f%% APY, %d day lock)\n", estimate.Tier.Name, estimate.Tier.APYPercent, estimate.Tier.LockDays)
	out(w, "Stake:   %.0f tokens for %d days\n", estimate.Amount, estimate.Days)
	out(w, "Reward:  %.2f tokens\n", estimate.Reward)
	out(w, "Total:   %.2f tokens\n", estimate.Total)
	return nil
}

func runStakeUnstake(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd, unstakeCooldown+30*time.Second)
	defer cancel()

	w := cmd.OutOrStdout()
	u := staking.BeginUnstake(unstakeCooldown)

	if formatter.Format() != output.FormatJSON {
		reportUnstakeProgress(ctx, w, u)
	}

	if err := u.Wait(ctx); err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return writeJSON(w, map[string]any{"released": true, "progress": u.Progress()})
	}
	outln(w, "Tokens released.")
	return nil
}

// reportUnstakeProgress prints cooldown progress until release.
func reportUnstakeProgress(ctx context.Context, w io.Writer, u *staking.Unstake) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if u.Done() {
				return
			}
			out(w, "Cooldown: %d%%\n", u.Progress())
		}
	}
}

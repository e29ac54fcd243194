package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/token"
)

// tokenomicsCmd shows the token distribution and market statistics.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var tokenomicsCmd = &cobra.Command{
	Use:   "tokenomics",
	Short: "Show token distribution and market stats",
	RunE:  runTokenomics,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(tokenomicsCmd)
}

func runTokenomics(cmd *cobra.Command, _ []string) error {
	market := token.Market()
	allocations := token.Distribution()

	w := cmd.OutOrStdout()
	if formatter.Format() == output.FormatJSON {
		payload := struct {
			Market       token.MarketStats  `json:"market"`
			Distribution []token.Allocation `json:"distribution"`
		}{market, allocations}
		return writeJSON(w, payload)
	}

	outln(w, "Market:")
	outln(w)
	out(w, "  Total supply:       %d\n", market.TotalSupply)
	out(w, "  Circulating supply: %d\n", market.CirculatingSupply)
	out(w, "  Staked:             %d (%.2f%% of circulating)\n", market.StakedTokens, market.StakedPercent())
	out(w, "  Price:              $%.3f\n", market.PriceUSD)
	out(w, "  Market cap:         $%.0f\n", market.MarketCapUSD)
	outln(w)

	outln(w, "Distribution:")
	outln(w)
	table := output.NewTable("ALLOCATION", "TOKENS", "SHARE")
	for _, a := range allocations {
		table.AddRow(
			a.Name,
			strconv.FormatInt(a.Tokens, 10),
			strconv.FormatFloat(market.AllocationPercent(a), 'f', 1, 64)+"%",
		)
	}
	return table.Render(w)
}

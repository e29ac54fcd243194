// Package token exposes the token distribution and market statistics shown
// by the tokenomics view. Figures are static marketing numbers, not
// accounting data.
package token

// Allocation is one slice of the token distribution.
type Allocation struct {
	Name   string `json:"name"`
	Tokens int64  `json:"tokens"`
}

//nolint:gochecknoglobals // Static distribution table
var distribution = []Allocation{
	{Name: "GPU Lenders", Tokens: 400_000_000},
	{Name: "Staking Rewards", Tokens: 300_000_000},
	{Name: "Community Development", Tokens: 150_000_000},
	{Name: "Ecosystem Growth", Tokens: 100_000_000},
	{Name: "Liquidity Pools", Tokens: 50_000_000},
}

// Distribution returns the allocation table, largest slice first.
func Distribution() []Allocation {
	return append([]Allocation(nil), distribution...)
}

// MarketStats are the headline market figures.
type MarketStats struct {
	TotalSupply       int64   `json:"total_supply"`
	CirculatingSupply int64   `json:"circulating_supply"`
	StakedTokens      int64   `json:"staked_tokens"`
	PriceUSD          float64 `json:"price_usd"`
	MarketCapUSD      float64 `json:"market_cap_usd"`
}

// Market returns the current market statistics.
func Market() MarketStats {
	return MarketStats{
		TotalSupply:       1_000_000_000,
		CirculatingSupply: 350_000_000,
		StakedTokens:      125_000_000,
		PriceUSD:          0.085,
		MarketCapUSD:      29_750_000,
	}
}

// StakedPercent is the share of circulating supply currently staked.
func (m MarketStats) StakedPercent() float64 {
	if m.CirculatingSupply == 0 {
		return 0
	}
	return float64(m.StakedTokens) / float64(m.CirculatingSupply) * 100
}

// AllocationPercent is an allocation's share of the total supply.
func (m MarketStats) AllocationPercent(a Allocation) float64 {
	if m.TotalSupply == 0 {
		return 0
	}
	return float64(a.Tokens) / float64(m.TotalSupply) * 100
}

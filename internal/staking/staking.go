// Package staking provides the token staking tiers, reward projections
// and the unstake cooldown.
package staking

import (
	"math"
	"sort"

	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// Tier is one staking bracket, half-open: it spans from MinAmount up to
// but excluding the next tier's minimum. MaxAmount is the display ceiling
// in whole tokens; membership is decided by MinAmount alone.
type Tier struct {
	Name       string  `json:"name"`
	MinAmount  float64 `json:"min_amount"`
	MaxAmount  float64 `json:"max_amount"`
	APYPercent float64 `json:"apy_percent"`
	LockDays   int     `json:"lock_days"`
}

//nolint:gochecknoglobals // Static tier table
var tiers = []Tier{
	{Name: "Bronze", MinAmount: 10_000, MaxAmount: 49_999, APYPercent: 12, LockDays: 30},
	{Name: "Silver", MinAmount: 50_000, MaxAmount: 99_999, APYPercent: 18, LockDays: 60},
	{Name: "Gold", MinAmount: 100_000, MaxAmount: 499_999, APYPercent: 24, LockDays: 90},
	{Name: "Platinum", MinAmount: 500_000, MaxAmount: math.MaxFloat64, APYPercent: 30, LockDays: 180},
}

// MinimumStake is the smallest amount accepted into any tier.
const MinimumStake = 10_000

// Tiers returns all staking brackets in ascending order.
func Tiers() []Tier {
	out := append([]Tier(nil), tiers...)
	sort.Slice(out, func(i, j int) bool { return out[i].MinAmount < out[j].MinAmount })
	return out
}

// TierFor returns the bracket an amount falls into: the highest tier whose
// minimum the amount reaches. Fractional amounts between two display
// ceilings belong to the lower tier.
func TierFor(amount float64) (Tier, error) {
	if amount < MinimumStake {
		return Tier{}, nebulaerr.WithSuggestion(
			nebulaerr.Wrap(nebulaerr.ErrBelowMinimumStake, "%.0f is below the %d token minimum", amount, MinimumStake),
			"Stake at least 10000 tokens to enter the Bronze tier",
		)
	}
	for i := len(tiers) - 1; i >= 0; i-- {
		if amount >= tiers[i].MinAmount {
			return tiers[i], nil
		}
	}
	return tiers[0], nil
}

// RewardEstimate projects the yield of a stake over a lock period.
type RewardEstimate struct {
	Tier   Tier    `json:"tier"`
	Amount float64 `json:"amount"`
	Days   int     `json:"days"`
	Reward float64 `json:"reward"`
	Total  float64 `json:"total"`
}

// EstimateReward projects simple (non-compounding) yield: the tier's APY
// prorated per day over the period. Zero days selects the tier's lock
// period.
func EstimateReward(amount float64, days int) (*RewardEstimate, error) {
	tier, err := TierFor(amount)
	if err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, nebulaerr.Wrap(nebulaerr.ErrInvalidInput, "staking period cannot be negative")
	}
	if days == 0 {
		days = tier.LockDays
	}

	dailyRate := tier.APYPercent / 365
	reward := amount * (dailyRate / 100) * float64(days)

	return &RewardEstimate{
		Tier:   tier,
		Amount: amount,
		Days:   days,
		Reward: reward,
		Total:  amount + reward,
	}, nil
}

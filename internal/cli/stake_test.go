package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/staking"
	"github.com/nebulaai/nebula/internal/token"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

func TestStakeTiersCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "stake", "tiers", "-o", "json")
	require.NoError(t, err)

	var tiers []staking.Tier
	require.NoError(t, json.Unmarshal([]byte(out), &tiers))
	require.Len(t, tiers, 4)
	assert.Equal(t, "Bronze", tiers[0].Name)
	assert.Equal(t, "Platinum", tiers[3].Name)
}

func TestStakeEstimateCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()),
		"stake", "estimate", "--amount", "50000", "--days", "60", "-o", "json")
	require.NoError(t, err)

	var estimate staking.RewardEstimate
	require.NoError(t, json.Unmarshal([]byte(out), &estimate))
	assert.Equal(t, "Silver", estimate.Tier.Name)
	assert.InDelta(t, 1479.45, estimate.Reward, 0.01)

	// The --days flag sticks across executions; reset for other tests.
	stakeDays = 0
}

func TestStakeEstimateCommand_BelowMinimum(t *testing.T) {
	_, err := executeCommand(t, newTestContext(newStubProvider()),
		"stake", "estimate", "--amount", "500")
	require.Error(t, err)
	assert.ErrorIs(t, err, nebulaerr.ErrBelowMinimumStake)
}

func TestStakeUnstakeCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()),
		"stake", "unstake", "--cooldown", "50ms", "-o", "json")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, true, result["released"])
}

func TestTokenomicsCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "tokenomics", "-o", "json")
	require.NoError(t, err)

	var payload struct {
		Market       token.MarketStats  `json:"market"`
		Distribution []token.Allocation `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, int64(1_000_000_000), payload.Market.TotalSupply)
	require.Len(t, payload.Distribution, 5)
	assert.Equal(t, "GPU Lenders", payload.Distribution[0].Name)
}

func TestTokenomicsCommand_Text(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "tokenomics", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Total supply:       1000000000")
	assert.Contains(t, out, "Staking Rewards")
	assert.Contains(t, out, "40.0%")
}

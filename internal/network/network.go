// Package network provides the supported-chain registry and common
// chain utilities.
package network

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ChainInfo describes one supported network.
// Entries are immutable; the registry is fixed at process start.
type ChainInfo struct {
	ChainID          string `json:"chain_id"` // hex chain id, unique key
	Name             string `json:"name"`
	CurrencySymbol   string `json:"currency_symbol"`
	RPCURL           string `json:"rpc_url"`
	BlockExplorerURL string `json:"block_explorer_url"`
}

// Decimals is the number of decimal places of the native currency.
// All supported chains use 18 (wei-style smallest units).
const Decimals = 18

// supported is the fixed registry table.
//
//nolint:gochecknoglobals // Static registry, never mutated after init
var supported = map[string]ChainInfo{
	"0x1": {
		ChainID:          "0x1",
		Name:             "Ethereum",
		CurrencySymbol:   "ETH",
		RPCURL:           "https://mainnet.infura.io/v3/9aa3d95b3bc440fa88ea12eaa4456161",
		BlockExplorerURL: "https://etherscan.io",
	},
	"0x5": {
		ChainID:          "0x5",
		Name:             "Goerli",
		CurrencySymbol:   "ETH",
		RPCURL:           "https://goerli.infura.io/v3/9aa3d95b3bc440fa88ea12eaa4456161",
		BlockExplorerURL: "https://goerli.etherscan.io",
	},
	"0x89": {
		ChainID:          "0x89",
		Name:             "Polygon",
		CurrencySymbol:   "MATIC",
		RPCURL:           "https://polygon-rpc.com",
		BlockExplorerURL: "https://polygonscan.com",
	},
	"0xa4b1": {
		ChainID:          "0xa4b1",
		Name:             "Arbitrum",
		CurrencySymbol:   "ETH",
		RPCURL:           "https://arb1.arbitrum.io/rpc",
		BlockExplorerURL: "https://arbiscan.io",
	},
	"0xa": {
		ChainID:          "0xa",
		Name:             "Optimism",
		CurrencySymbol:   "ETH",
		RPCURL:           "https://mainnet.optimism.io",
		BlockExplorerURL: "https://optimistic.etherscan.io",
	},
}

// Unknown is the placeholder returned for chain ids absent from the registry.
// An unsupported network is an expected state, not an error.
func Unknown(chainID string) ChainInfo {
	return ChainInfo{
		ChainID:          Normalize(chainID),
		Name:             "Unknown Network",
		CurrencySymbol:   "ETH",
		BlockExplorerURL: "#",
	}
}

// Normalize lowercases a hex chain id for registry lookup.
func Normalize(chainID string) string {
	return strings.ToLower(strings.TrimSpace(chainID))
}

// Lookup returns the registry entry for a chain id.
// The second return is false for unsupported networks.
func Lookup(chainID string) (ChainInfo, bool) {
	info, ok := supported[Normalize(chainID)]
	return info, ok
}

// Display returns registry metadata for a chain id, substituting the
// Unknown placeholder for unsupported networks.
func Display(chainID string) ChainInfo {
	if info, ok := Lookup(chainID); ok {
		return info
	}
	return Unknown(chainID)
}

// IsSupported returns true if the chain id is in the registry.
func IsSupported(chainID string) bool {
	_, ok := Lookup(chainID)
	return ok
}

// All returns every registry entry sorted by name.
func All() []ChainInfo {
	chains := make([]ChainInfo, 0, len(supported))
	for _, info := range supported {
		chains = append(chains, info)
	}
	sort.Slice(chains, func(i, j int) bool {
		return chains[i].Name < chains[j].Name
	})
	return chains
}

// ByName resolves a network by its display name, case-insensitively.
func ByName(name string) (ChainInfo, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range supported {
		if strings.ToLower(info.Name) == name {
			return info, true
		}
	}
	return ChainInfo{}, false
}

// maxSuggestionDistance bounds how far a name can be from a registry entry
// before no suggestion is offered.
const maxSuggestionDistance = 3

// SuggestName returns the closest registry network name for a misspelled
// input, or empty when nothing is close enough.
func SuggestName(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, info := range All() {
		dist := levenshtein.ComputeDistance(input, strings.ToLower(info.Name))
		if dist < bestDist {
			bestDist = dist
			best = info.Name
		}
	}

	if bestDist > maxSuggestionDistance {
		return ""
	}
	return best
}

// Package gpu provides the GPU marketplace services: the rental catalog
// with checkout through the wallet session, and the lending side with
// earnings estimates and the provider leaderboard.
package gpu

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// CreditETH is the fixed conversion rate: one GPU credit costs 0.01 ETH.
const CreditETH = 0.01

// Model describes a rentable GPU SKU.
type Model struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	VRAM           string  `json:"vram"`
	CUDACores      int     `json:"cuda_cores"`
	CreditsPerHour float64 `json:"credits_per_hour"`
}

// catalog is the fixed rental inventory.
//
//nolint:gochecknoglobals // Static catalog, never mutated after init
var catalog = map[string]Model{
	"a100": {
		ID:             "a100",
		Name:           "NVIDIA A100",
		VRAM:           "80GB",
		CUDACores:      6912,
		CreditsPerHour: 24.5,
	},
	"rtx4090": {
		ID:             "rtx4090",
		Name:           "NVIDIA RTX 4090",
		VRAM:           "24GB",
		CUDACores:      16384,
		CreditsPerHour: 12.75,
	},
	"rtx3090": {
		ID:             "rtx3090",
		Name:           "NVIDIA RTX 3090",
		VRAM:           "24GB",
		CUDACores:      10496,
		CreditsPerHour: 8.5,
	},
	"a6000": {
		ID:             "a6000",
		Name:           "NVIDIA A6000",
		VRAM:           "48GB",
		CUDACores:      10752,
		CreditsPerHour: 18.25,
	},
}

// RentalDurations are the offered rental lengths in hours.
//
//nolint:gochecknoglobals // Static option list
var RentalDurations = []int{1, 6, 12, 24, 72, 168}

// Catalog returns every rentable model sorted by hourly rate, cheapest
// first.
func Catalog() []Model {
	models := make([]Model, 0, len(catalog))
	for _, m := range catalog {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].CreditsPerHour < models[j].CreditsPerHour
	})
	return models
}

// ModelByID resolves a catalog model, suggesting the closest id on a miss.
func ModelByID(id string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if m, ok := catalog[key]; ok {
		return m, nil
	}

	err := nebulaerr.WithDetails(
		nebulaerr.Wrap(nebulaerr.ErrUnknownGPU, "no GPU model %q", id),
		map[string]string{"model": id},
	)
	if suggestion := suggestModel(key); suggestion != "" {
		err = nebulaerr.WithSuggestion(err, "Did you mean \""+suggestion+"\"? Run \"nebula rent --list\" for the catalog")
	}
	return Model{}, err
}

// maxModelDistance bounds how far an id can be from the catalog before no
// suggestion is offered.
const maxModelDistance = 3

func suggestModel(input string) string {
	if input == "" {
		return ""
	}

	best := ""
	bestDist := maxModelDistance + 1
	for id := range catalog {
		if dist := levenshtein.ComputeDistance(input, id); dist < bestDist {
			bestDist = dist
			best = id
		}
	}
	if bestDist > maxModelDistance {
		return ""
	}
	return best
}

// ValidDuration reports whether hours is an offered rental length.
func ValidDuration(hours int) bool {
	for _, d := range RentalDurations {
		if d == hours {
			return true
		}
	}
	return false
}

// Quote prices a rental: cost in credits plus the ETH payment amount.
type Quote struct {
	Model       Model   `json:"model"`
	Hours       int     `json:"hours"`
	CostCredits float64 `json:"cost_credits"`

	// CostETH is the payment amount as a decimal string, six fractional
	// digits like the checkout screen shows.
	CostETH string `json:"cost_eth"`
}

// NewQuote prices a rental of a catalog model for an offered duration.
func NewQuote(modelID string, hours int) (*Quote, error) {
	model, err := ModelByID(modelID)
	if err != nil {
		return nil, err
	}
	if !ValidDuration(hours) {
		return nil, nebulaerr.WithSuggestion(
			nebulaerr.Wrap(nebulaerr.ErrInvalidInput, "unsupported rental duration %dh", hours),
			"Choose one of: 1, 6, 12, 24, 72 or 168 hours",
		)
	}

	credits := model.CreditsPerHour * float64(hours)
	return &Quote{
		Model:       model,
		Hours:       hours,
		CostCredits: credits,
		CostETH:     strconv.FormatFloat(credits*CreditETH, 'f', 6, 64),
	}, nil
}

package gpu

import (
	"sort"
	"strings"

	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// LendModel describes a GPU model accepted onto the lending network, with
// its expected hourly yield and baseline utilization.
type LendModel struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	HourlyCredits  float64 `json:"hourly_credits"`
	UtilizationPct int     `json:"utilization_pct"`
}

//nolint:gochecknoglobals // Static model table
var lendModels = map[string]LendModel{
	"a100":    {ID: "a100", Name: "NVIDIA A100", HourlyCredits: 18.2, UtilizationPct: 92},
	"rtx4090": {ID: "rtx4090", Name: "NVIDIA RTX 4090", HourlyCredits: 9.5, UtilizationPct: 88},
	"rtx3090": {ID: "rtx3090", Name: "NVIDIA RTX 3090", HourlyCredits: 6.3, UtilizationPct: 79},
	"a6000":   {ID: "a6000", Name: "NVIDIA A6000", HourlyCredits: 13.8, UtilizationPct: 84},
}

// Locations are the regions a lender can register hardware in.
//
//nolint:gochecknoglobals // Static option list
var Locations = []string{"North America", "Europe", "Asia Pacific", "South America"}

// LendModels returns every accepted model sorted by hourly yield,
// highest first.
func LendModels() []LendModel {
	models := make([]LendModel, 0, len(lendModels))
	for _, m := range lendModels {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].HourlyCredits > models[j].HourlyCredits
	})
	return models
}

// LendModelByID resolves a lending model, suggesting the closest id on a
// miss.
func LendModelByID(id string) (LendModel, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if m, ok := lendModels[key]; ok {
		return m, nil
	}

	err := nebulaerr.WithDetails(
		nebulaerr.Wrap(nebulaerr.ErrUnknownGPU, "no lendable GPU model %q", id),
		map[string]string{"model": id},
	)
	if suggestion := suggestModel(key); suggestion != "" {
		err = nebulaerr.WithSuggestion(err, "Did you mean \""+suggestion+"\"?")
	}
	return LendModel{}, err
}

// ValidLocation reports whether loc is an offered region,
// case-insensitively, returning the canonical spelling.
func ValidLocation(loc string) (string, bool) {
	for _, l := range Locations {
		if strings.EqualFold(strings.TrimSpace(loc), l) {
			return l, true
		}
	}
	return "", false
}

// EarningsEstimate projects lending income in credits for a quantity of
// one model at a daily availability.
type EarningsEstimate struct {
	Hourly  float64 `json:"hourly"`
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`

	// UtilizationPct is the expected utilization after the oversupply
	// penalty for fleets above five units.
	UtilizationPct int `json:"utilization_pct"`
}

// EstimateEarnings projects income for quantity units of a model available
// dailyHours per day. Weekly is seven days, monthly thirty. Quantities
// above five units shave the expected utilization by the fleet size.
func EstimateEarnings(modelID string, quantity, dailyHours int) (*EarningsEstimate, error) {
	model, err := LendModelByID(modelID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, nebulaerr.Wrap(nebulaerr.ErrInvalidInput, "quantity must be at least 1")
	}
	if dailyHours < 1 || dailyHours > 24 {
		return nil, nebulaerr.Wrap(nebulaerr.ErrInvalidInput, "daily availability must be 1-24 hours")
	}

	hourly := model.HourlyCredits * float64(quantity)
	daily := hourly * float64(dailyHours)

	utilization := model.UtilizationPct
	if quantity > 5 {
		utilization -= quantity
	}
	if utilization > 100 {
		utilization = 100
	}
	if utilization < 0 {
		utilization = 0
	}

	return &EarningsEstimate{
		Hourly:         hourly,
		Daily:          daily,
		Weekly:         daily * 7,
		Monthly:        daily * 30,
		UtilizationPct: utilization,
	}, nil
}

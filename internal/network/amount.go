package network

import (
	"math/big"
	"strings"

	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// ParseDecimalAmount parses a human-readable decimal amount into smallest
// units (wei). For example, "1.5" returns 1500000000000000000.
// The conversion uses the fixed 10^18 scale and is display-oriented; it is
// never used for exact accounting.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func ParseDecimalAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, nebulaerr.ErrInvalidAmount
	}

	// Check for negative amounts
	if strings.HasPrefix(amount, "-") {
		return nil, nebulaerr.ErrInvalidAmount
	}

	// Split by decimal point
	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, nebulaerr.ErrInvalidAmount
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	// Validate integer part
	if intPart == "" {
		intPart = "0"
	}
	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, nebulaerr.ErrInvalidAmount
	}

	// Scale integer part
	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)
	result := new(big.Int).Mul(intVal, multiplier)

	// Handle decimal part
	if decPart != "" {
		// Validate decimal characters
		for _, c := range decPart {
			if c < '0' || c > '9' {
				return nil, nebulaerr.ErrInvalidAmount
			}
		}

		// Pad or truncate decimal part
		for len(decPart) < Decimals {
			decPart += "0"
		}
		decPart = decPart[:Decimals]

		decVal, ok := new(big.Int).SetString(decPart, 10)
		if !ok {
			return nil, nebulaerr.ErrInvalidAmount
		}

		result = result.Add(result, decVal)
	}

	return result, nil
}

// FormatDecimalAmount converts smallest units (wei) to a human-readable
// decimal string. Trailing zeros after the decimal point are removed.
// For example, 1500000000000000000 returns "1.5".
func FormatDecimalAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()

	// Pad with leading zeros if necessary
	for len(str) <= Decimals {
		str = "0" + str
	}

	// Insert decimal point
	decimalPos := len(str) - Decimals

	// Trim trailing zeros after decimal point
	result := str[:decimalPos] + "." + str[decimalPos:]

	// Remove unnecessary trailing zeros
	for len(result) > 1 && result[len(result)-1] == '0' && result[len(result)-2] != '.' {
		result = result[:len(result)-1]
	}

	return result
}

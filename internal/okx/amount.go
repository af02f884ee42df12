package okx

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var nonNumericRegex = regexp.MustCompile(`[^\d.]`)

// NormalizeAmount strips formatting characters from a user-supplied amount
// and renders it as a base-unit integer string with leading zeros removed.
// Cross-chain endpoints reject fractional or decorated amounts.
func NormalizeAmount(amount string) (string, error) {
	if amount == "" {
		return "", fmt.Errorf("amount is required")
	}

	numStr := nonNumericRegex.ReplaceAllString(amount, "")
	if numStr == "" || numStr == "." {
		return "", fmt.Errorf("amount must contain digits")
	}

	d, err := decimal.NewFromString(numStr)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return d.Truncate(0).String(), nil
}

package deposits

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseUSAmount parses a US-formatted amount string into dollars.
// Format examples: "$1,234.56" -> 1234.56, "(45.00)" -> -45, "-588.74" -> -588.74.
func parseUSAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	if negative {
		d = d.Neg()
	}

	return d.InexactFloat64(), nil
}

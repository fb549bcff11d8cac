package material

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalOrZero parses a decimal string, substituting zero for
// anything missing or malformed. Every numeric field read from a
// material or job document goes through here: bad input degrades the
// calculation to zero, it never aborts it.
func ParseDecimalOrZero(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseIntOrZero parses an integer-as-string with the same zero
// fallback, truncating any fractional part.
func ParseIntOrZero(raw string) int64 {
	return ParseDecimalOrZero(raw).IntPart()
}

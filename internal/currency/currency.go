// Package currency formats decimal amounts for display.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount like "$1,234.56". Negative amounts keep the sign
// ahead of the symbol: "-$12.00".
func Format(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	return sign + symbol + group(whole) + "." + frac
}

// group inserts thousands separators into a digit string.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Masked replaces amounts while balances are hidden.
const Masked = "****"

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

// FormatDecimal renders d with a fixed number of places and thousands
// separators.
func FormatDecimal(d decimal.Decimal, places int32) string {
	return AddCommas(d.StringFixed(places))
}

// FormatUSD renders an optional dollar amount. A nil total is shown as
// unavailable rather than zero.
func FormatUSD(d *decimal.Decimal, places int32) string {
	if d == nil {
		return "n/a"
	}
	if d.IsNegative() {
		return "-$" + FormatDecimal(d.Neg(), places)
	}
	return "$" + FormatDecimal(*d, places)
}

// FormatPercent renders a percentage with an explicit sign.
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Mask hides s when hidden is set.
func Mask(s string, hidden bool) string {
	if hidden {
		return Masked
	}
	return s
}

// Floats converts decimals for plotting.
func Floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}

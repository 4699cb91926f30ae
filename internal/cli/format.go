// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a currency amount with two decimals and comma separators.
// e.g., (1234567.891, "₹") -> "₹1,234,567.89", (-50, "$") -> "-$50.00"
func FormatAmount(v float64, symbol string) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}

	s := symbol + whole + "." + frac
	if neg {
		return "-" + s
	}
	return s
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatMonths renders a month count, e.g. 1 -> "1 month", 18 -> "18 months (1.5 yrs)".
func FormatMonths(n int) string {
	switch {
	case n == 1:
		return "1 month"
	case n == 12:
		return "12 months (1 yr)"
	case n > 12 && n%12 == 0:
		return fmt.Sprintf("%d months (%d yrs)", n, n/12)
	case n > 12:
		return fmt.Sprintf("%d months (%.1f yrs)", n, float64(n)/12)
	default:
		return fmt.Sprintf("%d months", n)
	}
}

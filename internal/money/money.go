// Package money provides decimal helpers for Tanzanian shilling amounts.
// All arithmetic stays at full precision; rounding to 2 fractional digits
// happens only when producing final output figures.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// DefaultTolerance is the epsilon used for amount equality checks.
// It absorbs OCR rounding noise and is never applied to computed outputs.
var DefaultTolerance = decimal.RequireFromString("1.00")

// FromString parses a decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to 2 fractional digits. decimal.Round rounds half away
// from zero, which is half-up for the non-negative amounts used here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent computes amount * rate at full precision, no rounding
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// Ratio divides a by b at 4 fractional digits; returns zero when b is zero
func Ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.Div(b).Round(4)
}

// WithinTolerance reports whether |a - b| <= tol
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// IsPositive returns true if d is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if d is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// Format renders d with thousands separators and 2 fractional digits,
// e.g. "5,000,000.00". Used for tables and human-readable messages.
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// FormatTZS renders d as a currency string, e.g. "TZS 5,000,000.00"
func FormatTZS(d decimal.Decimal) string {
	return "TZS " + Format(d)
}

// Package money holds the fixed-point primitives shared by every ledger
// computation. All amounts carry exactly two fractional digits.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits carried by every amount.
const Places = 2

var (
	// Cent is the smallest representable amount.
	Cent = decimal.New(1, -Places)

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Split derives the tax and net parts of a tax-inclusive gross amount.
//
//	net = round2(gross / (1 + rate))
//	tax = gross - net
//
// An absent or zero rate yields tax 0.00 and net = gross. Rounding is half-up
// and happens once, on the quotient.
func Split(gross decimal.Decimal, rate decimal.NullDecimal) (tax, net decimal.Decimal) {
	if !rate.Valid || rate.Decimal.IsZero() {
		return Zero(), Round(gross)
	}
	net = gross.DivRound(one.Add(rate.Decimal), Places)
	tax = gross.Sub(net)
	return tax, net
}

// Rate wraps a tax rate as an optional value for Split.
func Rate(r decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: r, Valid: true}
}

// NoRate is the absent tax rate.
var NoRate = decimal.NullDecimal{}

// Round quantizes d to two places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Zero returns 0.00.
func Zero() decimal.Decimal {
	return decimal.New(0, -Places)
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// HasCents reports whether d has at most two fractional digits.
func HasCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Truncate(0))
}

// ErrTooPrecise is returned by Parse for amounts with more than two decimals.
var ErrTooPrecise = errors.New("more than 2 decimal places")

// Parse reads a decimal string and rejects sub-cent precision.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if !HasCents(d) {
		return decimal.Decimal{}, fmt.Errorf("amount %q: %w", s, ErrTooPrecise)
	}
	return d, nil
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Distribute splits total into n cent amounts that sum to total. Leftover
// cents go to the first parts.
func Distribute(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	cents := total.Shift(Places).IntPart()
	base, rest := cents/int64(n), cents%int64(n)
	parts := make([]decimal.Decimal, n)
	for i := range parts {
		c := base
		if int64(i) < rest {
			c++
		}
		parts[i] = decimal.New(c, -Places)
	}
	return parts
}

// Package money converts between display amounts such as "1,500" and exact
// decimal values. Amounts are parsed once where they enter the system and
// formatted only when rendered.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount is returned for amounts that are empty, malformed or negative
var ErrInvalidAmount = errors.New("invalid amount")

var printer = message.NewPrinter(language.English)

// Parse reads an amount written with optional thousands separators
// ("1,500", "1 900", "990") into an exact decimal
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	return d, nil
}

// MustParse is Parse for compiled-in constants
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Format renders d with thousands separators, without a fractional part when
// d is whole: 1500 -> "1,500", 12.5 -> "12.50"
func Format(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("%d", d.IntPart())
	}
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// WholeUnits returns d rounded to a whole number of currency units
func WholeUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

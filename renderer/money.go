package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount formats value in currency, e.g. "$1,234.50".
//
// Values without a known currency are printed as plain decimals.
func Amount(value decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		if currency == "" {
			return value.String()
		}
		return value.String() + " " + currency
	}
	minor := value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// Signed is like Amount with an explicit sign, zero is printed as "-".
func Signed(value decimal.Decimal, currency string) string {
	switch {
	case value.IsZero():
		return "-"
	case value.IsPositive():
		return "+" + Amount(value, currency)
	default:
		return Amount(value, currency)
	}
}

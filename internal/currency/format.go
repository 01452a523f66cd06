package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a magnitude band used when formatting amounts
type Unit struct {
	Name   string
	Min    decimal.Decimal
	Places int32
	Suffix string
}

// Bands, largest first. The first band whose Min is reached wins.
var (
	Billions  = Unit{Name: "billions", Min: decimal.NewFromInt(1_000_000_000), Places: 2, Suffix: "bilhões"}
	Millions  = Unit{Name: "millions", Min: decimal.NewFromInt(1_000_000), Places: 1, Suffix: "milhões"}
	Thousands = Unit{Name: "thousands", Min: decimal.NewFromInt(1_000), Places: 1, Suffix: "mil"}
	Units     = Unit{Name: "units", Min: decimal.Zero, Places: 0}
)

var bands = []Unit{Billions, Millions, Thousands, Units}

// Band returns the unit band for the absolute value of amount
func Band(amount decimal.Decimal) Unit {
	abs := amount.Abs()
	for _, b := range bands {
		if abs.GreaterThanOrEqual(b.Min) {
			return b
		}
	}
	return Units
}

// Same reports whether two units are the same band
func (u Unit) Same(other Unit) bool {
	return u.Name == other.Name
}

// Format renders the absolute value of amount as e.g. "US$ 2,5 milhões".
// The sign is left to the caller's label.
func Format(amount decimal.Decimal) string {
	abs := amount.Abs()
	band := Band(abs)

	scaled := abs
	if !band.Min.IsZero() {
		scaled = abs.Div(band.Min)
	}

	number := strings.Replace(scaled.StringFixed(band.Places), ".", ",", 1)
	if band.Suffix == "" {
		return Prefix + " " + number
	}
	return Prefix + " " + number + " " + band.Suffix
}

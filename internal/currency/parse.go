// Package currency converts the free-form amounts used by the catalog
// ("US$ 1,5 bilhão", "US$ 246-287 milhões") to decimals and back.
package currency

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Prefix is the currency marker written in front of every amount
const Prefix = "US$"

// Magnitude markers, matched by substring. "mil" is also a substring of
// "milhões", so millions must be checked before thousands.
const (
	billionMarker  = "bilh"
	millionMarker  = "milh"
	thousandMarker = "mil"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Value is the result of parsing an amount: either a parsed decimal or the
// original text that could not be read as a number.
type Value struct {
	amount decimal.Decimal
	raw    string
	parsed bool
}

// Parsed returns a successfully parsed value
func Parsed(amount decimal.Decimal) Value {
	return Value{amount: amount, parsed: true}
}

// Unparseable returns a value that keeps the original text
func Unparseable(raw string) Value {
	return Value{raw: raw}
}

// IsParsed reports whether the value holds a number
func (v Value) IsParsed() bool {
	return v.parsed
}

// Amount returns the parsed amount and whether there was one
func (v Value) Amount() (decimal.Decimal, bool) {
	return v.amount, v.parsed
}

// OrZero returns the parsed amount, or zero for unparseable input
func (v Value) OrZero() decimal.Decimal {
	if !v.parsed {
		return decimal.Zero
	}
	return v.amount
}

// Raw returns the original text of an unparseable value
func (v Value) Raw() string {
	return v.raw
}

// Parse converts an amount string into raw currency units.
// Empty input parses as zero. Ranges ("246-287 milhões") resolve to the
// upper bound.
func Parse(s string) Value {
	if s == "" {
		return Parsed(decimal.Zero)
	}

	original := s
	if strings.Contains(s, "-") {
		s = strings.Split(s, "-")[1]
	}

	normalized := normalize(s)

	if strings.Contains(normalized, billionMarker) {
		n, ok := leadingNumber(normalized)
		if !ok {
			return Unparseable(original)
		}
		normalized = n.Mul(thousand).String() + "milhões"
	}

	n, ok := leadingNumber(normalized)
	if !ok {
		return Unparseable(original)
	}

	switch {
	case strings.Contains(normalized, millionMarker):
		return Parsed(n.Mul(million))
	case strings.Contains(normalized, thousandMarker):
		return Parsed(n.Mul(thousand))
	default:
		return Parsed(n)
	}
}

// normalize drops the currency prefix and whitespace and turns the first
// decimal comma into a point
func normalize(s string) string {
	s = strings.ReplaceAll(s, Prefix, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Replace(s, ",", ".", 1)
}

// leadingNumber reads the longest decimal literal at the start of s,
// ignoring whatever follows it ("1.5milhões" -> 1.5). Exponents are not
// part of the amount grammar, so "1e3" reads as 1.
func leadingNumber(s string) (decimal.Decimal, bool) {
	i := 0
	sign := ""
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = "-"
		}
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	whole := s[start:i]

	frac := ""
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		frac = s[i+1 : j]
	}

	if whole == "" && frac == "" {
		return decimal.Zero, false
	}
	if whole == "" {
		whole = "0"
	}

	literal := sign + whole
	if frac != "" {
		literal += "." + frac
	}
	n, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Zero, false
	}
	return n, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

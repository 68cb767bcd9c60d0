package models

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Decoding failures for raw numeric fields.
var (
	ErrMissing    = errors.New("missing value")
	ErrNotNumeric = errors.New("not a number")
)

var maxQuantity = decimal.NewFromInt(math.MaxInt32)

// MaxAmount bounds every money field. With two decimal places this stays
// well inside what a Decimal128 holds exactly.
var MaxAmount = decimal.New(1, 12)

// WholePaise reports whether d has at most two decimal places.
func WholePaise(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// AmountTooLarge reports whether d is outside the storable range.
func AmountTooLarge(d decimal.Decimal) bool {
	return d.Abs().GreaterThanOrEqual(MaxAmount)
}

// DecodeAmount reads a JSON number or numeric string. Absent, null and empty
// string values yield ErrMissing.
func DecodeAmount(raw []byte) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return decimal.Zero, ErrMissing
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, ErrNotNumeric
	}
	return d, nil
}

// DecodeQuantity reads a whole number that fits in an int32.
func DecodeQuantity(raw []byte) (int, error) {
	d, err := DecodeAmount(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.Abs().GreaterThan(maxQuantity) {
		return 0, ErrNotNumeric
	}
	return int(d.IntPart()), nil
}

// CleanText trims surrounding whitespace and normalizes to NFC so length
// limits count what a reader sees.
func CleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// TooLong reports whether s has more than max runes.
func TooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

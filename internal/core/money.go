// Package core provides amount parsing and handling utilities.
//
// Amounts are stored as plain JSON numbers. Reading is lenient so that a
// document with one odd value still loads: a non-numeric amount counts as zero.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value as stored in the document.
type Amount float64

// ParseAmount converts user input to an Amount. It accepts both dot (12.34)
// and comma (12,34) decimal separators. Input that does not parse yields zero.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34
//	ParseAmount("12,34") -> 12.34
//	ParseAmount("abc")   -> 0
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Amount(f).finite()
}

// ParseAmountStrict is ParseAmount for input that has to be a number, such as
// a command line argument. Text that does not parse is an error, not zero.
func ParseAmountStrict(s string) (Amount, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Amount(f), nil
}

func (a Amount) finite() Amount {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return a
}

// Decimal returns the amount as an exact decimal for aggregation.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(float64(a.finite()))
}

// MarshalJSON writes non-finite values as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON never fails: null and non-numeric values become zero and
// numeric strings are parsed.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*a = 0
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		*a = ParseAmount(s)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(f).finite()
	}
	return nil
}

// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from loosely
// typed upstream values and converting between satang and baht
// representations.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Money is a monetary amount in satang (hundredths of a baht).
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// negative values. Returns false for empty or non-numeric input.
func ParseAmount(s string) (Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, false
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Money{}, false
	}
	return Money{Cents: int64(math.Round(f * 100.0))}, true
}

// AmountOrZero is the coercion path shared by every numeric field read from
// the remote store: unparseable input becomes zero rather than an error.
func AmountOrZero(s string) Money {
	m, ok := ParseAmount(s)
	if !ok {
		return Money{}
	}
	return m
}

// Baht returns the baht value as a float64 for display purposes.
// Note: Use cents for calculations to avoid floating-point precision issues.
func (m Money) Baht() float64 {
	return float64(m.Cents) / 100.0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String formats the amount as a plain decimal, e.g. "500" or "123.45".
func (m Money) String() string {
	return strconv.FormatFloat(m.Baht(), 'f', -1, 64)
}

// MarshalJSON encodes the amount as a plain JSON number, which is what the
// remote store accepts for every monetary field.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string. Anything unparseable decodes
// to zero instead of failing: upstream records are not trusted to carry clean
// numerics, and a single bad cell must not poison a whole reload.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	if s == "null" {
		s = ""
	}
	*m = AmountOrZero(s)
	return nil
}

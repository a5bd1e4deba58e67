// Package core provides the study ledger and its hour parsing rules.
//
// This file contains the parser turning free-form user text into an hour
// delta that the ledger is allowed to accumulate.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHours converts user text into a non-negative, finite hour delta.
//
// It accepts both dot (1.5) and comma (1,5) decimal separators and ignores
// surrounding whitespace. Zero is accepted and leaves the ledger unchanged.
// Empty text, non-numbers, negative values, NaN and infinities are rejected
// with an error wrapping ErrValidation.
//
// Examples:
//
//	ParseHours("2.5")  -> 2.5, nil
//	ParseHours("2,5")  -> 2.5, nil
//	ParseHours("-1")   -> 0, ErrValidation
//	ParseHours("abc")  -> 0, ErrValidation
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrValidation)
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrValidation, s)
	}
	if err := checkDelta(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkDelta(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: value must be finite", ErrValidation)
	}
	if v < 0 {
		return fmt.Errorf("%w: value must not be negative", ErrValidation)
	}
	return nil
}

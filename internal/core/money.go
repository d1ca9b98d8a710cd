// Package core holds the expense domain: record validation, amount parsing,
// currency normalization and the report aggregations.
//
// This file contains amount parsing and the canonical-currency conversion.
// Every persisted amount is the result of Normalize; nothing downstream ever
// sees the currency the user actually paid with.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalCurrency is the single currency all ledger amounts are stored in.
const CanonicalCurrency = "USD"

// ParseAmount converts a user-entered decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// requires a strictly positive value. Explicit signs are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Normalize converts an entered amount to the canonical currency.
//
// When currency is the canonical currency the rate is ignored and the amount
// passes through unchanged. For any other currency, rate is the number of
// foreign units per one canonical unit and must be strictly positive; the
// result is amount / rate.
//
// Normalize is pure: it validates before any caller persists anything, so a
// failed conversion never leaves a record behind.
func Normalize(amount decimal.Decimal, currency string, rate decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.EqualFold(strings.TrimSpace(currency), CanonicalCurrency) {
		return amount, nil
	}
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return amount.Div(rate), nil
}

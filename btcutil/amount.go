// Copyright (c) 2013, 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcutil holds the leaf monetary-unit value type used by the core.
package btcutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/defunctec/crownj/btcutil/er"
)

// AmountUnit describes a unit of CRW monetary amount.
type AmountUnit int

// These constants define various units used when describing a coin amount.
const (
	AmountMegaCRW  AmountUnit = 6
	AmountKiloCRW  AmountUnit = 3
	AmountCRW      AmountUnit = 0
	AmountMilliCRW AmountUnit = -3
	AmountMicroCRW AmountUnit = -6
	AmountSatoshi  AmountUnit = -8
)

func (u AmountUnit) String() string {
	switch u {
	case AmountMegaCRW:
		return "MCRW"
	case AmountKiloCRW:
		return "kCRW"
	case AmountCRW:
		return "CRW"
	case AmountMilliCRW:
		return "mCRW"
	case AmountMicroCRW:
		return "μCRW"
	case AmountSatoshi:
		return "Satoshi"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " CRW"
	}
}

// SatoshiPerCoin is the number of base units (satoshis) in one whole coin.
const SatoshiPerCoin = 1e8

// MaxSatoshi is the network-money cap: values outside ±MaxSatoshi are
// representable as an Amount (any int64) but invalid as a transaction
// output value. This is CRW's total-supply-derived cap; a specific
// chaincfg.Params may tighten it further but never loosen it.
const MaxSatoshi = 42_000_000 * SatoshiPerCoin

// ErrOverflow is returned by Add/Sub/Mul when the true result does not fit
// in an int64.
var ErrOverflow = er.NewErrorType("btcutil").Code("ErrOverflow")

// ErrInvalidAmount is returned by decimal parsing when the input has more
// than 8 fractional digits (under exact parsing) or falls outside the
// representable int64 range of satoshis.
var ErrInvalidAmount = er.NewErrorType("btcutil").Code("ErrInvalidAmount")

// Amount represents the base monetary unit (satoshis, spec "Coin amount").
// It is a signed 64-bit integer; Add/Sub/Mul fail with ErrOverflow on
// wraparound rather than silently wrapping.
type Amount int64

// Add returns a+b, or ErrOverflow if the true sum does not fit in int64.
func (a Amount) Add(b Amount) (Amount, er.R) {
	sum := a + b
	// Overflow iff the operands have the same sign but the sum's sign
	// differs from theirs.
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum > 0) {
		return 0, ErrOverflow.Detail("amount addition overflowed")
	}
	return sum, nil
}

// Sub returns a-b, or ErrOverflow if the true difference does not fit in
// int64.
func (a Amount) Sub(b Amount) (Amount, er.R) {
	if b == math.MinInt64 {
		return 0, ErrOverflow.Detail("amount subtraction overflowed")
	}
	return a.Add(-b)
}

// Mul returns a*b, or ErrOverflow if the true product does not fit in
// int64.
func (a Amount) Mul(b Amount) (Amount, er.R) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a {
		return 0, ErrOverflow.Detail("amount multiplication overflowed")
	}
	// int64 multiplication overflow also hides in the MinInt64 * -1 case,
	// which the division check above does not catch on all platforms.
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrOverflow.Detail("amount multiplication overflowed")
	}
	return p, nil
}

// ToUnit converts a monetary amount counted in satoshis to a floating point
// value representing an amount of the given unit.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToCRW is the equivalent of calling ToUnit with AmountCRW.
func (a Amount) ToCRW() float64 {
	return a.ToUnit(AmountCRW)
}

// String returns the decimal-point string representation of a coin amount,
// always with 8 fractional digits.
func (a Amount) String() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	whole := v / SatoshiPerCoin
	frac := v % SatoshiPerCoin
	s := strconv.FormatInt(whole, 10) + "." + pad8(frac)
	if neg {
		s = "-" + s
	}
	return s
}

func pad8(frac int64) string {
	s := strconv.FormatInt(frac, 10)
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}

// NewAmount creates an Amount from a floating point value representing a
// whole-coin amount, rounding to the nearest satoshi. Intended for
// convenience call sites (tests, fixtures); production parsing of
// user-supplied decimal strings should use ParseDecimal / ParseDecimalExact
// below, which carry stronger exactness guarantees.
func NewAmount(f float64) (Amount, er.R) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount.Detail("amount is NaN or Inf")
	}
	round := math.Round(f * SatoshiPerCoin)
	if round < math.MinInt64 || round > math.MaxInt64 {
		return 0, ErrInvalidAmount.Detail("amount out of int64 range")
	}
	return Amount(round), nil
}

// ParseDecimalExact parses a decimal (optionally scientific-notation)
// string of whole coins into an Amount, rejecting any input with more than
// 8 fractional digits of precision or that falls outside the int64 range
// of satoshis once scaled (e.g. `"0.000000011"` is rejected).
func ParseDecimalExact(s string) (Amount, er.R) {
	return parseDecimal(s, true)
}

// ParseDecimal parses the same grammar as ParseDecimalExact but truncates
// (rather than rejects) fractional precision beyond 8 digits (e.g.
// `"0.000000011"` is accepted, truncated to 1 satoshi).
func ParseDecimal(s string) (Amount, er.R) {
	return parseDecimal(s, false)
}

func parseDecimal(s string, exact bool) (Amount, er.R) {
	orig := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount.Detail("empty amount string")
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	mantissa := s
	exp := 0
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		mantissa = s[:idx]
		e, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, ErrInvalidAmount.Detail("bad exponent in " + orig)
		}
		exp = e
	}

	intPart := mantissa
	fracPart := ""
	if idx := strings.IndexByte(mantissa, '.'); idx >= 0 {
		intPart = mantissa[:idx]
		fracPart = mantissa[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, c := range intPart + fracPart {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount.Detail("non-numeric amount: " + orig)
		}
	}

	// Shift the decimal point by exp digits, to the right if positive.
	digits := intPart + fracPart
	pointPos := len(intPart) + exp
	if pointPos < 0 {
		digits = strings.Repeat("0", -pointPos) + digits
		pointPos = 0
	}
	for pointPos > len(digits) {
		digits += "0"
	}
	newIntPart := digits[:pointPos]
	newFracPart := digits[pointPos:]
	if newIntPart == "" {
		newIntPart = "0"
	}

	// Scale to satoshis: 8 fractional digits kept, remainder either
	// rejected (exact) or truncated (inexact).
	for len(newFracPart) < 8 {
		newFracPart += "0"
	}
	kept := newFracPart[:8]
	dropped := newFracPart[8:]
	if exact {
		for _, c := range dropped {
			if c != '0' {
				return 0, ErrInvalidAmount.Detail("more than 8 fractional digits: " + orig)
			}
		}
	}

	satoshiDigits := strings.TrimLeft(newIntPart+kept, "0")
	if satoshiDigits == "" {
		satoshiDigits = "0"
	}

	// math.MinInt64's magnitude (9223372036854775808) is not representable
	// as a positive int64, so special-case this exact negative-boundary
	// value before the general range check.
	if neg && satoshiDigits == "9223372036854775808" {
		return Amount(math.MinInt64), nil
	}

	val, errr := strconv.ParseUint(satoshiDigits, 10, 64)
	if errr != nil || val > math.MaxInt64 {
		return 0, ErrInvalidAmount.Detail("amount out of int64 range: " + orig)
	}
	result := Amount(val)
	if neg {
		result = -result
	}
	return result, nil
}

package btcutil

import (
	"math"
	"testing"
)

func TestCheckedArithmeticOverflow(t *testing.T) {
	if _, err := Amount(math.MaxInt64).Add(1); err == nil {
		t.Fatal("expected overflow on Add")
	}
	if _, err := Amount(math.MinInt64).Sub(1); err == nil {
		t.Fatal("expected overflow on Sub")
	}
	if _, err := Amount(math.MaxInt64).Mul(2); err == nil {
		t.Fatal("expected overflow on Mul")
	}
	if sum, err := Amount(5).Add(7); err != nil || sum != 12 {
		t.Fatalf("expected 12, nil; got %d, %v", sum, err)
	}
}

func TestDecimalVectorsFromSpec(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
	}{
		{"0.01", 1_000_000},
		{"1E-2", 1_000_000},
		{"0.00000001", 1},
	}
	for _, c := range cases {
		got, err := ParseDecimalExact(c.in)
		if err != nil {
			t.Fatalf("ParseDecimalExact(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseDecimalExact(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestExactRejectsExtraPrecision(t *testing.T) {
	if _, err := ParseDecimalExact("0.000000011"); err == nil {
		t.Fatal("expected rejection of >8 fractional digits under exact parse")
	}
	got, err := ParseDecimal("0.000000011")
	if err != nil {
		t.Fatalf("unexpected error under inexact parse: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected truncation to 1, got %d", got)
	}
}

func TestRangeBoundaries(t *testing.T) {
	if _, err := ParseDecimalExact("92233720368.54775808"); err == nil {
		t.Fatal("expected rejection of amount exceeding int64 range")
	}
	got, err := ParseDecimalExact("-92233720368.54775808")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != math.MinInt64 {
		t.Fatalf("expected MinInt64, got %d", got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	a := Amount(123_456_789)
	s := a.String()
	back, err := ParseDecimalExact(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != a {
		t.Fatalf("round trip mismatch: %d != %d (via %q)", back, a, s)
	}
}

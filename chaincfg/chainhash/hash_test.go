package chainhash

import (
	"bytes"
	"testing"
)

func TestHashStringRoundTrip(t *testing.T) {
	data := []byte("this is a test string used to derive a hash")
	h := DoubleHashH(data)
	s := h.String()
	h2, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsEqual(h2) {
		t.Fatalf("round trip mismatch: %s != %s", h, h2)
	}
}

func TestSetBytesRejectsBadLength(t *testing.T) {
	var h Hash
	if err := h.SetBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short slice")
	}
}

func TestDoubleHashMatchesManualComposition(t *testing.T) {
	data := []byte("sha256d test vector")
	got := DoubleHashB(data)
	h := DoubleHashH(data)
	if !bytes.Equal(got, h[:]) {
		t.Fatal("DoubleHashB and DoubleHashH disagree")
	}
}

func TestHash160Length(t *testing.T) {
	out := Hash160([]byte("pubkey bytes"))
	if len(out) != 20 {
		t.Fatalf("expected 20 bytes, got %d", len(out))
	}
}

func TestCompareTotalOrder(t *testing.T) {
	a := DoubleHashH([]byte("a"))
	b := DoubleHashH([]byte("b"))
	if a.Compare(&a) != 0 {
		t.Fatal("a.Compare(a) must be 0")
	}
	if a.Compare(&b) == 0 {
		t.Fatal("distinct hashes must not compare equal")
	}
	// Anti-symmetry.
	if (a.Compare(&b) > 0) == (b.Compare(&a) > 0) {
		t.Fatal("comparison must be anti-symmetric")
	}
}

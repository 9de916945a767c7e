package addrmgr

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/defunctec/crownj/wire"
)

func newTestManager(t *testing.T) *AddrManager {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "peers.json"), nil)
}

func TestAddAddressRejectsUnroutable(t *testing.T) {
	am := newTestManager(t)
	src := na("8.8.8.8")
	am.AddAddress(na("10.0.0.1"), src)
	if am.NumAddresses() != 0 {
		t.Fatalf("expected a private address to be rejected, got %d addresses", am.NumAddresses())
	}
}

func TestAddAddressDedups(t *testing.T) {
	am := newTestManager(t)
	src := na("8.8.8.8")
	am.AddAddress(na("9.9.9.9"), src)
	am.AddAddress(na("9.9.9.9"), src)
	if am.NumAddresses() != 1 {
		t.Fatalf("expected a re-added address to be deduped, got %d", am.NumAddresses())
	}
}

func TestGoodMovesNewToTried(t *testing.T) {
	am := newTestManager(t)
	src := na("8.8.8.8")
	target := na("9.9.9.9")
	am.AddAddress(target, src)

	key := "9.9.9.9:8333"
	ka := am.addrIndex[key]
	if ka == nil {
		t.Fatal("address not found in index after AddAddress")
	}
	if ka.Tried() {
		t.Fatal("a freshly-added address should not start out tried")
	}

	if err := am.Good(target); err != nil {
		t.Fatalf("Good() unexpected error: %v", err)
	}
	if !ka.Tried() {
		t.Fatal("Good() should mark the address tried")
	}
	if am.nNew != 0 || am.nTried != 1 {
		t.Fatalf("expected nNew=0 nTried=1, got nNew=%d nTried=%d", am.nNew, am.nTried)
	}
}

func TestGoodUnknownAddressErrors(t *testing.T) {
	am := newTestManager(t)
	if err := am.Good(na("9.9.9.9")); err == nil {
		t.Fatal("expected an error for an address never added")
	}
}

func TestAttemptIncrementsFailureCount(t *testing.T) {
	am := newTestManager(t)
	target := na("9.9.9.9")
	am.AddAddress(target, na("8.8.8.8"))
	for i := 0; i < maxFailures; i++ {
		if err := am.Attempt(target); err != nil {
			t.Fatalf("Attempt() unexpected error: %v", err)
		}
	}
	ka := am.addrIndex["9.9.9.9:8333"]
	if ka.attempts != maxFailures {
		t.Fatalf("expected %d attempts recorded, got %d", maxFailures, ka.attempts)
	}
}

func TestGetAddressEmptyManager(t *testing.T) {
	am := newTestManager(t)
	if got := am.GetAddress(); got != nil {
		t.Fatalf("expected nil from an empty address book, got %v", got)
	}
}

func TestGetAddressReturnsKnownAddress(t *testing.T) {
	am := newTestManager(t)
	am.AddAddress(na("9.9.9.9"), na("8.8.8.8"))
	got := am.GetAddress()
	if got == nil || !got.IP.Equal(net.ParseIP("9.9.9.9")) {
		t.Fatalf("expected 9.9.9.9 back, got %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	peersFile := filepath.Join(dir, "peers.json")

	am1 := New(peersFile, nil)
	am1.AddAddress(na("9.9.9.9"), na("8.8.8.8"))
	if err := am1.Good(na("9.9.9.9")); err != nil {
		t.Fatalf("Good() unexpected error: %v", err)
	}
	if err := am1.Save(); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	if _, errr := os.Stat(peersFile); errr != nil {
		t.Fatalf("expected peers file to exist: %v", errr)
	}

	am2 := New(peersFile, nil)
	if err := am2.Load(); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if am2.NumAddresses() != 1 {
		t.Fatalf("expected 1 address restored, got %d", am2.NumAddresses())
	}
	ka := am2.addrIndex["9.9.9.9:8333"]
	if ka == nil || !ka.Tried() {
		t.Fatal("restored address should still be marked tried")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	am := New(filepath.Join(t.TempDir(), "does-not-exist.json"), nil)
	if err := am.Load(); err != nil {
		t.Fatalf("Load() of a missing file should be a no-op, got: %v", err)
	}
}

func TestLocalAddressWithNilSource(t *testing.T) {
	am := newTestManager(t)
	if got := am.LocalAddress(na("9.9.9.9")); got != nil {
		t.Fatalf("expected nil local address with no LocalAddrSource configured, got %v", got)
	}
}

type stubLocalAddrs struct{ reach bool }

func (s stubLocalAddrs) Reachable(*wire.NetAddress) bool { return s.reach }

func TestLocalAddressDelegatesToSource(t *testing.T) {
	am := New(filepath.Join(t.TempDir(), "peers.json"), stubLocalAddrs{reach: true})
	remote := na("9.9.9.9")
	got := am.LocalAddress(remote)
	if got != remote {
		t.Fatalf("expected the remote address echoed back when reachable, got %v", got)
	}

	am2 := New(filepath.Join(t.TempDir(), "peers.json"), stubLocalAddrs{reach: false})
	if got := am2.LocalAddress(remote); got != nil {
		t.Fatalf("expected nil when not reachable, got %v", got)
	}
}

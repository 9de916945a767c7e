// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/defunctec/crownj/chaincfg/chainhash"
)

func hashN(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestRequestTrackerClaimAndFulfill(t *testing.T) {
	rt := NewRequestTracker(time.Minute)
	a := &Peer{addr: "a"}
	b := &Peer{addr: "b"}
	h := hashN(1)

	require.True(t, rt.Claim(a, h))
	require.False(t, rt.Claim(b, h), "a second peer's claim on an already-claimed hash should fail")
	require.Same(t, a, rt.Holder(h))

	rt.Fulfill(h)
	require.Nil(t, rt.Holder(h))
	require.True(t, rt.Claim(b, h), "b should be able to claim the hash once it's free")
}

func TestRequestTrackerReleaseAll(t *testing.T) {
	rt := NewRequestTracker(time.Minute)
	a := &Peer{addr: "a"}
	h1, h2 := hashN(1), hashN(2)
	rt.Claim(a, h1)
	rt.Claim(a, h2)

	rt.ReleaseAll(a)
	require.Nil(t, rt.Holder(h1))
	require.Nil(t, rt.Holder(h2))
}

func TestRequestTrackerReleaseAllLeavesOtherPeersAlone(t *testing.T) {
	rt := NewRequestTracker(time.Minute)
	a := &Peer{addr: "a"}
	b := &Peer{addr: "b"}
	h1, h2 := hashN(1), hashN(2)
	rt.Claim(a, h1)
	rt.Claim(b, h2)

	rt.ReleaseAll(a)
	require.Nil(t, rt.Holder(h1))
	require.Same(t, b, rt.Holder(h2), "b's claim should survive a's ReleaseAll")
}

func TestRequestTrackerExpired(t *testing.T) {
	rt := NewRequestTracker(time.Millisecond)
	a := &Peer{addr: "a"}
	h := hashN(1)
	rt.Claim(a, h)

	time.Sleep(5 * time.Millisecond)

	expired := rt.Expired()
	require.Equal(t, []chainhash.Hash{h}, expired)
	require.Nil(t, rt.Holder(h), "Expired should remove the entry so it can be retried")
}

func TestRequestTrackerDefaultTimeout(t *testing.T) {
	rt := NewRequestTracker(0)
	require.Equal(t, DefaultRequestTimeout, rt.timeout)
}

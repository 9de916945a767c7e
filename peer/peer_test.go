// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/defunctec/crownj/blockchain"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/wire"
)

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateConnecting:  "connecting",
		StateHandshaking: "handshaking",
		StateActive:      "active",
		StateClosed:      "closed",
		State(99):        "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}

// testChain opens a throwaway genesis-initialized chain for use as a peer
// session's Config.Chain.
func testChain(t *testing.T) *blockchain.BlockChain {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "chain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	bc, err := blockchain.New(db, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	return bc
}

func pipeConfigs(t *testing.T) (Config, Config) {
	t.Helper()
	chainA, chainB := testChain(t), testChain(t)
	cfgA := Config{
		ChainParams: &chaincfg.RegressionNetParams,
		Chain:       chainA,
		Requests:    NewRequestTracker(time.Minute),
		Nonce:       111,
	}
	cfgB := Config{
		ChainParams: &chaincfg.RegressionNetParams,
		Chain:       chainB,
		Requests:    NewRequestTracker(time.Minute),
		Nonce:       222,
	}
	return cfgA, cfgB
}

func TestHandshakeSucceeds(t *testing.T) {
	connA, connB := net.Pipe()
	cfgA, cfgB := pipeConfigs(t)

	outbound := NewOutboundPeer(cfgA, connA, "peerB:8433")
	inbound := NewInboundPeer(cfgB, connB)

	type result struct {
		who string
		err er.R
	}
	done := make(chan result, 2)
	go func() { done <- result{"outbound", outbound.Start()} }()
	go func() { done <- result{"inbound", inbound.Start()} }()

	for i := 0; i < 2; i++ {
		r := <-done
		require.NoErrorf(t, r.err, "%s handshake failed", r.who)
	}

	require.Equal(t, StateActive, outbound.State())
	require.Equal(t, StateActive, inbound.State())

	outbound.Disconnect("test done")
	inbound.Disconnect("test done")
	outbound.WaitForDisconnect()
	inbound.WaitForDisconnect()
}

func TestHandshakeDetectsSelfConnection(t *testing.T) {
	connA, connB := net.Pipe()
	cfgA, cfgB := pipeConfigs(t)
	cfgB.Nonce = cfgA.Nonce

	outbound := NewOutboundPeer(cfgA, connA, "peerB:8433")
	inbound := NewInboundPeer(cfgB, connB)

	errs := make(chan er.R, 2)
	go func() { errs <- outbound.Start() }()
	go func() { errs <- inbound.Start() }()

	sawSelfConnection := false
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil && ErrSelfConnection.Is(err) {
			sawSelfConnection = true
		}
	}
	require.True(t, sawSelfConnection, "expected at least one side to detect the shared nonce as a self-connection")
}

func TestHandshakeTimesOut(t *testing.T) {
	connA, _ := net.Pipe()
	cfgA, _ := pipeConfigs(t)
	cfgA.HandshakeTimeout = 10 * time.Millisecond

	outbound := NewOutboundPeer(cfgA, connA, "nobody:8433")
	err := outbound.Start()
	require.Error(t, err, "expected the handshake to time out with nothing on the other end")
}

func TestDisconnectIsIdempotent(t *testing.T) {
	connA, connB := net.Pipe()
	defer connB.Close()
	cfgA, _ := pipeConfigs(t)
	p := NewOutboundPeer(cfgA, connA, "peerB:8433")

	p.Disconnect("first")
	p.Disconnect("second")
	require.Equal(t, "first", p.DisconnectReason(), "expected the first Disconnect reason to stick")
	require.Equal(t, StateClosed, p.State())
}

func TestQueueMessageFailsAfterDisconnect(t *testing.T) {
	connA, connB := net.Pipe()
	defer connB.Close()
	cfgA, _ := pipeConfigs(t)
	p := NewOutboundPeer(cfgA, connA, "peerB:8433")
	p.Disconnect("closed")

	require.False(t, p.queueMessage(wire.NewMsgPing(1)), "expected queueMessage to report failure on a closed session")
}

// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements one side of a peer-to-peer session with a single
// remote node: a Connecting -> Handshaking -> Active -> Closed state
// machine, layered over wire.Message framing and driving the chain
// engine's ProcessBlock via header/inventory sync.
package peer

// State is a peer session's position in its Connecting -> Handshaking ->
// Active -> Closed state machine.
type State int32

const (
	StateConnecting State = iota
	StateHandshaking
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "github.com/defunctec/crownj/btcutil/er"

// peerErrorType namespaces every session-failure outcome this package can
// report, mirroring blockchain's own ruleErrorType taxonomy pattern.
var peerErrorType = er.NewErrorType("peer")

var (
	// ErrHandshakeTimeout is returned when the remote peer does not
	// complete the version/verack exchange within the handshake deadline.
	ErrHandshakeTimeout = peerErrorType.Code("ErrHandshakeTimeout")

	// ErrProtocolViolation is returned for a structurally valid message
	// that violates session-level protocol rules (e.g. a duplicate
	// version message, or a block received that was never requested).
	ErrProtocolViolation = peerErrorType.Code("ErrProtocolViolation")

	// ErrSelfConnection is returned when the remote peer's version nonce
	// matches one of ours, indicating we dialed ourselves.
	ErrSelfConnection = peerErrorType.Code("ErrSelfConnection")

	// ErrDisconnected is returned by any operation attempted against a
	// peer whose session has already closed.
	ErrDisconnected = peerErrorType.Code("ErrDisconnected")

	// ErrInvQueueFull is returned when a peer's inbound inv queue has
	// reached its bound.
	ErrInvQueueFull = peerErrorType.Code("ErrInvQueueFull")
)

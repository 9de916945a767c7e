// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"sync"
	"time"

	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// DefaultRequestTimeout is how long a peer has to deliver a block it was
// asked for before RequestTracker frees the hash for another peer to try.
const DefaultRequestTimeout = 60 * time.Second

type requestEntry struct {
	peer    *Peer
	expires time.Time
}

// RequestTracker is the "requested blocks" set shared across every peer
// session so the same block is never asked of two peers at once, and a
// peer that sends a block nobody asked it for can be caught and
// disconnected.
type RequestTracker struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[chainhash.Hash]*requestEntry
}

// NewRequestTracker returns an empty tracker using timeout as the per-hash
// claim duration.
func NewRequestTracker(timeout time.Duration) *RequestTracker {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &RequestTracker{
		timeout: timeout,
		pending: make(map[chainhash.Hash]*requestEntry),
	}
}

// Claim attempts to record that p has requested hash. Returns false
// without claiming if another peer already holds an unexpired claim on it.
func (rt *RequestTracker) Claim(p *Peer, hash chainhash.Hash) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if e, ok := rt.pending[hash]; ok && time.Now().Before(e.expires) {
		return false
	}
	rt.pending[hash] = &requestEntry{peer: p, expires: time.Now().Add(rt.timeout)}
	return true
}

// Fulfill releases hash once the requesting peer has delivered it.
func (rt *RequestTracker) Fulfill(hash chainhash.Hash) {
	rt.mu.Lock()
	delete(rt.pending, hash)
	rt.mu.Unlock()
}

// Holder returns the peer currently holding an unexpired claim on hash, or
// nil if no one does — used to catch a block delivered by a peer that
// never requested it.
func (rt *RequestTracker) Holder(hash chainhash.Hash) *Peer {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	e, ok := rt.pending[hash]
	if !ok || time.Now().After(e.expires) {
		return nil
	}
	return e.peer
}

// ReleaseAll frees every claim held by p, called when p disconnects so its
// in-flight requests become immediately retryable by another peer instead
// of waiting out the full timeout.
func (rt *RequestTracker) ReleaseAll(p *Peer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for hash, e := range rt.pending {
		if e.peer == p {
			delete(rt.pending, hash)
		}
	}
}

// Expired returns every hash whose claim has passed its deadline without a
// Fulfill, removing them from the tracker so the caller can re-issue
// getdata to a different peer.
func (rt *RequestTracker) Expired() []chainhash.Hash {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	now := time.Now()
	var out []chainhash.Hash
	for hash, e := range rt.pending {
		if now.After(e.expires) {
			out = append(out, hash)
			delete(rt.pending, hash)
		}
	}
	return out
}

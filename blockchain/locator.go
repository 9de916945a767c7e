// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/defunctec/crownj/btcutil/util/tmap"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// BlockLocator is a list of block hashes used to locate a common ancestor
// with a peer whose view of the chain may have diverged, most recent
// first.
type BlockLocator []chainhash.Hash

// HaveBlock reports whether hash is already known to this engine, as
// either a connected block (any chain) or a buffered orphan.
func (bc *BlockChain) HaveBlock(hash *chainhash.Hash) bool {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	if _, ok := bc.index[*hash]; ok {
		return true
	}
	_, v := tmap.GetEntry(bc.orphans, hash)
	return v != nil
}

// HeaderByHash returns the stored header for hash, if known.
func (bc *BlockChain) HeaderByHash(hash *chainhash.Hash) (wire.BlockHeader, bool) {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	n, ok := bc.index[*hash]
	if !ok {
		return wire.BlockHeader{}, false
	}
	return n.header, true
}

// LatestBlockLocator returns a locator built from the current best chain
// tip, for use in an outgoing getheaders request.
func (bc *BlockChain) LatestBlockLocator() BlockLocator {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	return locatorFromNode(bc.best)
}

// locatorFromNode builds a locator by walking back from node: every block
// for the first 10, then exponentially sparser, ending at genesis — the
// standard locator density that keeps the list short even for a very long
// chain while still bounding the search a divergent peer needs to do.
func locatorFromNode(node *blockNode) BlockLocator {
	if node == nil {
		return nil
	}
	var locator BlockLocator
	step := int32(1)
	cur := node
	for cur != nil {
		locator = append(locator, cur.hash)
		if cur.parent == nil {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
		var target int32
		if cur.height-step < 0 {
			target = 0
		} else {
			target = cur.height - step
		}
		next := cur.ancestorNode(target)
		if next == nil || next.hash == cur.hash {
			break
		}
		cur = next
	}
	return locator
}

// LocateHeaders returns up to maxHeaders headers starting just after the
// first locator hash this engine recognizes, walking forward along the
// best chain, for a getheaders response. If none of the locator hashes are
// known, headers are returned starting just after genesis. If stopHash is
// non-zero, the walk stops at (and includes) that header.
func (bc *BlockChain) LocateHeaders(locator BlockLocator, stopHash chainhash.Hash, maxHeaders int) []wire.BlockHeader {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()

	start := bc.findLocatorStart(locator)
	if start == nil {
		return nil
	}

	headers := make([]wire.BlockHeader, 0, maxHeaders)
	for h := start.height + 1; h <= bc.best.height && len(headers) < maxHeaders; h++ {
		n := bc.best.ancestorNode(h)
		if n == nil {
			break
		}
		headers = append(headers, n.header)
		if n.hash == stopHash {
			break
		}
	}
	return headers
}

// findLocatorStart returns the highest block in locator that this engine
// has on its best chain, or genesis (height 0's ancestor of best) if none
// match.
func (bc *BlockChain) findLocatorStart(locator BlockLocator) *blockNode {
	for i := range locator {
		if n, ok := bc.index[locator[i]]; ok {
			if anc := bc.best.ancestorNode(n.height); anc != nil && anc.hash == n.hash {
				return n
			}
		}
	}
	return bc.best.ancestorNode(0)
}

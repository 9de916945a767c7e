// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"

	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// blockNode is an in-memory representation of a block's header plus the
// chain-wide context (height, cumulative work, parent link) the engine
// needs to compare candidate chains and retarget difficulty, the same role
// btcsuite-derived chain engines use a block index for.
type blockNode struct {
	parent  *blockNode
	hash    chainhash.Hash
	height  int32
	header  wire.BlockHeader
	workSum *big.Int
}

// newBlockNode returns a new blockNode, linked to parent (nil for genesis)
// and with its own proof-of-work contribution added to the parent's
// cumulative work.
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	n := &blockNode{
		hash:   header.BlockHash(),
		header: *header,
	}
	work := calcWork(header.Bits)
	if parent != nil {
		n.parent = parent
		n.height = parent.height + 1
		n.workSum = new(big.Int).Add(parent.workSum, work)
	} else {
		n.workSum = work
	}
	return n
}

// calcWork returns the proof-of-work contributed by a single block with
// the given difficulty Bits: floor(2^256 / (target+1)), the standard
// "expected hashes to produce this block" measure used to compare chains
// by total work rather than by length.
func calcWork(bits uint32) *big.Int {
	target := compactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, big.NewInt(1))
	maxWork := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(maxWork, denominator)
}

func (n *blockNode) Height() int32        { return n.height }
func (n *blockNode) Bits() uint32         { return n.header.Bits }
func (n *blockNode) Timestamp() time.Time { return n.header.Timestamp }

// Ancestor returns the ancestor of n at the given height, walking up the
// parent chain. Returns nil if height is out of range.
func (n *blockNode) Ancestor(height int32) blockIndexNode {
	if height < 0 || height > n.height {
		return nil
	}
	cur := n
	for cur != nil && cur.height > height {
		cur = cur.parent
	}
	if cur == nil {
		return nil
	}
	return cur
}

// ancestorNode is Ancestor but returning the concrete type, for internal
// callers that need parent links rather than just the blockIndexNode view.
func (n *blockNode) ancestorNode(height int32) *blockNode {
	if height < 0 || height > n.height {
		return nil
	}
	cur := n
	for cur != nil && cur.height > height {
		cur = cur.parent
	}
	return cur
}

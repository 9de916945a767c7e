// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/util/tmap"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/wire"
)

// buildTestChain returns a BlockChain holding a linear chain of n blocks
// (heights 0..n-1) entirely in memory, with no backing database — enough to
// exercise the locator/header query surface without going through New().
func buildTestChain(t *testing.T, n int) *BlockChain {
	t.Helper()
	bc := &BlockChain{
		index:         make(map[chainhash.Hash]*blockNode),
		orphans:       tmap.New[chainhash.Hash, *btcutil.Block](compareHash),
		orphansByPrev: make(map[chainhash.Hash][]chainhash.Hash),
	}

	var parent *blockNode
	for i := 0; i < n; i++ {
		h := wire.BlockHeader{
			Version:   1,
			Timestamp: time.Unix(int64(1<<30+i), 0),
			Bits:      0x207fffff,
			Nonce:     uint32(i),
		}
		if parent != nil {
			h.PrevBlock = parent.hash
		}
		node := newBlockNode(&h, parent)
		bc.index[node.hash] = node
		parent = node
	}
	bc.best = parent
	return bc
}

func nthAncestorHash(bc *BlockChain, height int32) chainhash.Hash {
	return bc.best.ancestorNode(height).hash
}

func TestLatestBlockLocatorShortChain(t *testing.T) {
	bc := buildTestChain(t, 5)
	locator := bc.LatestBlockLocator()
	require.Len(t, locator, 5, "expected one hash per block for a short chain")
	for i, h := range locator {
		want := nthAncestorHash(bc, bc.best.height-int32(i))
		require.Equal(t, want, h, "locator[%d]", i)
	}
}

func TestLatestBlockLocatorEndsAtGenesis(t *testing.T) {
	bc := buildTestChain(t, 200)
	locator := bc.LatestBlockLocator()
	require.NotEmpty(t, locator)
	genesisHash := nthAncestorHash(bc, 0)
	require.Equal(t, genesisHash, locator[len(locator)-1], "expected locator to end at genesis")
	// First 10 entries should be every block back from the tip.
	for i := 0; i < 10; i++ {
		want := nthAncestorHash(bc, bc.best.height-int32(i))
		require.Equal(t, want, locator[i], "locator[%d]", i)
	}
}

func TestHaveBlock(t *testing.T) {
	bc := buildTestChain(t, 3)
	tipHash := bc.best.hash
	require.True(t, bc.HaveBlock(&tipHash), "expected the chain tip to be known")
	var unknown chainhash.Hash
	unknown[0] = 0xff
	require.False(t, bc.HaveBlock(&unknown), "expected an unrelated hash to be unknown")
}

func TestHaveBlockChecksOrphanPool(t *testing.T) {
	bc := buildTestChain(t, 1)
	orphanHeader := wire.BlockHeader{Version: 1, Timestamp: time.Unix(1<<30+99, 0), Bits: 0x207fffff}
	orphanBlock := btcutil.NewBlock(&wire.MsgBlock{Header: orphanHeader})
	orphanHash := *orphanBlock.Hash()
	tmap.Insert(bc.orphans, &orphanHash, &orphanBlock)
	require.True(t, bc.HaveBlock(&orphanHash), "expected a buffered orphan to count as known")
}

func TestLocateHeadersWalksForwardFromLocator(t *testing.T) {
	bc := buildTestChain(t, 20)
	// A locator containing only the hash at height 5 should yield headers
	// starting at height 6.
	locator := BlockLocator{nthAncestorHash(bc, 5)}
	headers := bc.LocateHeaders(locator, chainhash.Hash{}, 1000)
	require.Len(t, headers, 14, "expected 14 headers (heights 6..19)")
	require.Equal(t, nthAncestorHash(bc, 6), headers[0].BlockHash())
	require.Equal(t, bc.best.hash, headers[len(headers)-1].BlockHash(), "expected last header to be the chain tip")
}

func TestLocateHeadersRespectsMaxAndStopHash(t *testing.T) {
	bc := buildTestChain(t, 20)
	locator := BlockLocator{nthAncestorHash(bc, 0)}

	headers := bc.LocateHeaders(locator, chainhash.Hash{}, 3)
	require.Len(t, headers, 3, "expected maxHeaders to cap the response")

	stop := nthAncestorHash(bc, 5)
	headers = bc.LocateHeaders(locator, stop, 1000)
	require.Len(t, headers, 5, "expected stopHash to cut the response short")
	require.Equal(t, stop, headers[len(headers)-1].BlockHash(), "expected the last header returned to be the stop hash")
}

func TestLocateHeadersUnknownLocatorFallsBackToGenesis(t *testing.T) {
	bc := buildTestChain(t, 5)
	var unknown chainhash.Hash
	unknown[0] = 0xaa
	headers := bc.LocateHeaders(BlockLocator{unknown}, chainhash.Hash{}, 1000)
	require.Len(t, headers, 4, "expected all headers after genesis")
	require.Equal(t, nthAncestorHash(bc, 1), headers[0].BlockHash(), "expected the walk to start right after genesis")
}

func TestHeaderByHash(t *testing.T) {
	bc := buildTestChain(t, 3)
	tipHash := bc.best.hash
	h, ok := bc.HeaderByHash(&tipHash)
	require.True(t, ok)
	require.Equal(t, tipHash, h.BlockHash())

	var unknown chainhash.Hash
	unknown[0] = 0xbb
	_, ok = bc.HeaderByHash(&unknown)
	require.False(t, ok, "expected HeaderByHash to report not-found for an unknown hash")
}

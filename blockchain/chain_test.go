// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/scriptbuilder"
	"github.com/defunctec/crownj/wire"
)

// opTrueScript is a trivially spendable output script (no signature
// required) used throughout these tests to isolate chain-engine behavior
// from script verification.
var opTrueScript = []byte{byte(opcode.OP_TRUE)}

// testChainHarness bundles a fresh on-disk chain engine with a monotonic
// clock so every mined block's timestamp is guaranteed to land after its
// ancestors' median time.
type testChainHarness struct {
	t      *testing.T
	bc     *BlockChain
	params *chaincfg.Params
	clock  int64
}

func newTestChainHarness(t *testing.T) *testChainHarness {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "chain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	params := &chaincfg.RegressionNetParams
	bc, err := New(db, params)
	require.NoError(t, err)

	return &testChainHarness{
		t:      t,
		bc:     bc,
		params: params,
		clock:  params.GenesisBlock.Header.Timestamp.Unix(),
	}
}

func (h *testChainHarness) nextTimestamp() time.Time {
	h.clock++
	return time.Unix(h.clock, 0)
}

// coinbaseTx builds a coinbase transaction for the given height, paying the
// full block subsidy to an anyone-can-spend output. tag distinguishes
// otherwise-identical coinbases mined by competing branches at the same
// height so they don't collide on hash.
func (h *testChainHarness) coinbaseTx(height int32, tag byte) *wire.MsgTx {
	sigScript, err := scriptbuilder.NewScriptBuilder().
		AddInt64(int64(height)).
		AddData([]byte{tag}).
		Script()
	require.NoError(h.t, err)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0xffffffff), sigScript, nil))
	subsidy := CalcBlockSubsidy(height, h.params.SubsidyHalvingInterval)
	tx.AddTxOut(wire.NewTxOut(subsidy, opTrueScript))
	return tx
}

// mineBlock assembles a block extending prevHash at the given height,
// solving its proof-of-work against bits (trivial under regtest's maximal
// pow limit).
func (h *testChainHarness) mineBlock(prevHash chainhash.Hash, height int32, bits uint32, txs []*wire.MsgTx) *wire.MsgBlock {
	h.t.Helper()
	wrapped := make([]*btcutil.Tx, len(txs))
	for i, tx := range txs {
		wrapped[i] = btcutil.NewTx(tx)
	}
	header := wire.BlockHeader{
		Version:    1,
		PrevBlock:  prevHash,
		MerkleRoot: calcMerkleRoot(wrapped),
		Timestamp:  h.nextTimestamp(),
		Bits:       bits,
	}
	target := compactToBig(bits)
	for nonce := uint32(0); ; nonce++ {
		header.Nonce = nonce
		blockHash := header.BlockHash()
		if hashToBig(&blockHash).Cmp(target) <= 0 {
			break
		}
		require.Less(h.t, nonce, uint32(1<<20), "failed to find a valid nonce")
	}
	return &wire.MsgBlock{Header: header, Transactions: txs}
}

// mineChild mines a block extending height parentHeight/parentHash with a
// single coinbase transaction tagged by tag.
func (h *testChainHarness) mineChild(parentHash chainhash.Hash, parentHeight int32, tag byte) *wire.MsgBlock {
	height := parentHeight + 1
	return h.mineBlock(parentHash, height, h.params.PowLimitBits, []*wire.MsgTx{h.coinbaseTx(height, tag)})
}

func TestProcessBlockGenesisOnly(t *testing.T) {
	h := newTestChainHarness(t)
	hash, height := h.bc.BestSnapshot()
	require.EqualValues(t, 0, height)
	require.Equal(t, h.params.GenesisBlock.BlockHash(), hash)
}

func TestProcessBlockLinearExtension(t *testing.T) {
	h := newTestChainHarness(t)

	genesisHash, _ := h.bc.BestSnapshot()
	prevHash, prevHeight := genesisHash, int32(0)
	for i := 0; i < 5; i++ {
		blk := h.mineChild(prevHash, prevHeight, 0)
		flags, err := h.bc.ProcessBlock(blk)
		require.NoError(t, err)
		require.Equal(t, BFNewBest, flags)

		tipHash, tipHeight := h.bc.BestSnapshot()
		require.EqualValues(t, prevHeight+1, tipHeight)
		require.Equal(t, blk.BlockHash(), tipHash)

		prevHash, prevHeight = tipHash, tipHeight
	}
}

func TestProcessBlockOrphanThenConnect(t *testing.T) {
	h := newTestChainHarness(t)
	genesisHash, _ := h.bc.BestSnapshot()

	block1 := h.mineChild(genesisHash, 0, 0)
	block2 := h.mineChild(block1.BlockHash(), 1, 0)

	// Submit block2 before its parent exists: it must be buffered as an
	// orphan rather than rejected or connected.
	flags, err := h.bc.ProcessBlock(block2)
	require.NoError(t, err)
	require.Equal(t, BFOrphan, flags)

	_, height := h.bc.BestSnapshot()
	require.EqualValues(t, 0, height, "orphan must not affect the best chain")

	// Submitting the missing parent should connect it and then, via orphan
	// reprocessing, immediately connect block2 as well.
	flags, err = h.bc.ProcessBlock(block1)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags)

	tipHash, tipHeight := h.bc.BestSnapshot()
	require.EqualValues(t, 2, tipHeight)
	require.Equal(t, block2.BlockHash(), tipHash)
}

func TestProcessBlockSideChainNoReorg(t *testing.T) {
	h := newTestChainHarness(t)
	genesisHash, _ := h.bc.BestSnapshot()

	a1 := h.mineChild(genesisHash, 0, 0xA1)
	a2 := h.mineChild(a1.BlockHash(), 1, 0xA2)
	for _, blk := range []*wire.MsgBlock{a1, a2} {
		flags, err := h.bc.ProcessBlock(blk)
		require.NoError(t, err)
		require.Equal(t, BFNewBest, flags)
	}

	// A side-chain block at height 1, competing with a1, carries no more
	// work than the current tip and must not become the new best.
	b1 := h.mineChild(genesisHash, 0, 0xB1)
	flags, err := h.bc.ProcessBlock(b1)
	require.NoError(t, err)
	require.Equal(t, BFSideChain, flags)

	tipHash, tipHeight := h.bc.BestSnapshot()
	require.EqualValues(t, 2, tipHeight)
	require.Equal(t, a2.BlockHash(), tipHash, "side chain must not have displaced the best chain")
}

func TestProcessBlockReorg(t *testing.T) {
	h := newTestChainHarness(t)
	genesisHash, _ := h.bc.BestSnapshot()

	// Chain A: a single block extending genesis.
	a1 := h.mineChild(genesisHash, 0, 0xA1)
	flags, err := h.bc.ProcessBlock(a1)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags)

	// Chain B: two blocks extending genesis along a different branch. b1
	// ties a1's work and is accepted only as a side chain; b2 pushes B's
	// cumulative work past A's, forcing a reorg that attaches two blocks
	// (b1 from the store, b2 from the block just submitted).
	b1 := h.mineChild(genesisHash, 0, 0xB1)
	flags, err = h.bc.ProcessBlock(b1)
	require.NoError(t, err)
	require.Equal(t, BFSideChain, flags)

	b2 := h.mineChild(b1.BlockHash(), 1, 0xB2)
	flags, err = h.bc.ProcessBlock(b2)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags, "longer side chain must trigger a reorg")

	tipHash, tipHeight := h.bc.BestSnapshot()
	require.EqualValues(t, 2, tipHeight)
	require.Equal(t, b2.BlockHash(), tipHash)

	// The chain must still be extendable post-reorg, confirming the new
	// tip's UTXO/header state was left consistent.
	b3 := h.mineChild(b2.BlockHash(), 2, 0xB3)
	flags, err = h.bc.ProcessBlock(b3)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags)
}

func TestProcessBlockDoubleSpendRejected(t *testing.T) {
	h := newTestChainHarness(t)
	genesisHash, _ := h.bc.BestSnapshot()

	// block1's coinbase matures as soon as block2 connects (CoinbaseMaturity
	// is 1 on regtest), giving block2 a spendable output to double-spend.
	block1 := h.mineChild(genesisHash, 0, 0)
	flags, err := h.bc.ProcessBlock(block1)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags)

	coinbaseHash := block1.Transactions[0].TxHash()
	outpoint := wire.NewOutPoint(&coinbaseHash, 0)

	spend1 := wire.NewMsgTx(2)
	spend1.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
	spend1.AddTxOut(wire.NewTxOut(1, opTrueScript))

	spend2 := wire.NewMsgTx(2)
	spend2.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
	spend2.AddTxOut(wire.NewTxOut(2, opTrueScript))

	height := int32(2)
	txs := []*wire.MsgTx{h.coinbaseTx(height, 0), spend1, spend2}
	block2 := h.mineBlock(block1.BlockHash(), height, h.params.PowLimitBits, txs)

	flags, err = h.bc.ProcessBlock(block2)
	require.Error(t, err, "a block spending the same output twice must be rejected")
	require.Equal(t, BFUnchanged, flags)

	tipHash, tipHeight := h.bc.BestSnapshot()
	require.EqualValues(t, 1, tipHeight, "rejected block must not affect the best chain")
	require.Equal(t, block1.BlockHash(), tipHash)

	// The same output spent once, alone, must be accepted.
	block2b := h.mineBlock(block1.BlockHash(), height, h.params.PowLimitBits,
		[]*wire.MsgTx{h.coinbaseTx(height, 1), spend1})
	flags, err = h.bc.ProcessBlock(block2b)
	require.NoError(t, err)
	require.Equal(t, BFNewBest, flags)
}

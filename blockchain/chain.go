// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/btcutil/util/tmap"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/txscript"
	"github.com/defunctec/crownj/wire"
)

// maxOrphanBlocks bounds the orphan pool; once full, the lowest-hash entry
// is evicted to make room, a simple deterministic policy that avoids
// favoring an attacker's choice of which orphan survives.
const maxOrphanBlocks = 500

func compareHash(a, b *chainhash.Hash) int {
	return bytes.Compare(a[:], b[:])
}

// BehaviorFlags reports what effect a successfully processed block had on
// the best chain.
type BehaviorFlags int

const (
	// BFUnchanged means the block was already known and had no effect.
	BFUnchanged BehaviorFlags = iota
	// BFNewBest means the block extended, or became via reorg, the new
	// best chain tip.
	BFNewBest
	// BFSideChain means the block was accepted but does not (yet) outweigh
	// the current best chain.
	BFSideChain
	// BFOrphan means the block's parent is unknown; it is held until that
	// parent arrives.
	BFOrphan
)

type systemClock struct{}

func (systemClock) AdjustedTime() time.Time { return time.Now() }

// BlockChain is the full-validation chain engine: an in-memory block index
// layered over a UTXO-backed on-disk store, implementing the
// ProcessBlock algorithm along with the chain's reorg/fee/subsidy rules.
type BlockChain struct {
	db          database.DB
	chainParams *chaincfg.Params
	timeSource  MedianTimeSource

	blocksPerRetarget int32
	powLimit          *big.Int

	chainLock sync.Mutex

	index         map[chainhash.Hash]*blockNode
	best          *blockNode
	orphans       *tmap.Map[chainhash.Hash, *btcutil.Block]
	orphansByPrev map[chainhash.Hash][]chainhash.Hash

	Listeners *Listeners
}

// New opens (or creates) the chain store at the database handed to it and
// reconstructs the in-memory block index, initializing the chain with its
// genesis block if the store is empty.
func New(db database.DB, params *chaincfg.Params) (*BlockChain, er.R) {
	bc := &BlockChain{
		db:            db,
		chainParams:   params,
		timeSource:    systemClock{},
		orphans:       tmap.New[chainhash.Hash, *btcutil.Block](compareHash),
		orphansByPrev: make(map[chainhash.Hash][]chainhash.Hash),
		Listeners:     NewListeners(),
	}
	bc.blocksPerRetarget = int32(params.TargetTimespan / params.TargetTimePerBlock)
	if bc.blocksPerRetarget <= 0 {
		bc.blocksPerRetarget = 1
	}
	bc.powLimit = compactToBig(params.PowLimitBits)

	var needsGenesis bool
	err := db.Update(func(dbTx database.Tx) er.R {
		if err := createBuckets(dbTx); err != nil {
			return err
		}
		if _, err := getChainHead(dbTx); err != nil {
			needsGenesis = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if needsGenesis {
		if err := bc.initGenesis(); err != nil {
			return nil, err
		}
	}

	if err := bc.loadIndex(); err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *BlockChain) initGenesis() er.R {
	genesis := btcutil.NewBlock(bc.chainParams.GenesisBlock)
	genesis.SetHeight(0)
	node := newBlockNode(&genesis.MsgBlock().Header, nil)

	return bc.db.Update(func(dbTx database.Tx) er.R {
		view := NewUtxoViewpoint()
		for _, tx := range genesis.Transactions() {
			view.AddTxOuts(tx, 0)
		}
		if err := putUtxoView(dbTx, view); err != nil {
			return err
		}
		if err := putHeader(dbTx, node); err != nil {
			return err
		}
		if err := putBlock(dbTx, &node.hash, genesis); err != nil {
			return err
		}
		return setChainHead(dbTx, node)
	})
}

func (bc *BlockChain) loadIndex() er.R {
	type rawEntry struct {
		hash   chainhash.Hash
		header wire.BlockHeader
		height int32
		work   *big.Int
	}
	var raws []rawEntry
	var bestHash chainhash.Hash

	err := bc.db.View(func(dbTx database.Tx) er.R {
		h, err := getChainHead(dbTx)
		if err != nil {
			return err
		}
		bestHash = *h

		bucket := dbTx.Metadata().Bucket(headersBucketName)
		return bucket.ForEach(func(k, v []byte) er.R {
			header, height, work, derr := decodeHeaderEntry(v)
			if derr != nil {
				return derr
			}
			var hash chainhash.Hash
			copy(hash[:], k)
			raws = append(raws, rawEntry{hash: hash, header: header, height: height, work: work})
			return nil
		})
	})
	if err != nil {
		return err
	}

	sort.Slice(raws, func(i, j int) bool { return raws[i].height < raws[j].height })

	index := make(map[chainhash.Hash]*blockNode, len(raws))
	for _, re := range raws {
		var parent *blockNode
		if re.height > 0 {
			parent = index[re.header.PrevBlock]
		}
		index[re.hash] = &blockNode{
			parent:  parent,
			hash:    re.hash,
			height:  re.height,
			header:  re.header,
			workSum: re.work,
		}
	}

	bc.index = index
	bc.best = index[bestHash]
	if bc.best == nil {
		return ErrChainTipUnknown.Default()
	}
	return nil
}

// BestSnapshot reports the current best chain tip's hash and height.
func (bc *BlockChain) BestSnapshot() (chainhash.Hash, int32) {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()
	return bc.best.hash, bc.best.height
}

// ProcessBlock is the single entry point for submitting a new block to the
// chain engine. It runs, in order: a duplicate check, context-free
// sanity, orphan detection, context checks, full connect validation,
// best-chain comparison, persistence, and orphan reprocessing.
func (bc *BlockChain) ProcessBlock(msgBlock *wire.MsgBlock) (BehaviorFlags, er.R) {
	bc.chainLock.Lock()
	defer bc.chainLock.Unlock()

	block := btcutil.NewBlock(msgBlock)
	hash := *block.Hash()

	// Step 1: duplicate check.
	if _, exists := bc.index[hash]; exists {
		return BFUnchanged, nil
	}
	if _, v := tmap.GetEntry(bc.orphans, &hash); v != nil {
		return BFUnchanged, nil
	}

	// Step 2: context-free sanity.
	if err := CheckBlockSanity(block, bc.powLimit, bc.timeSource); err != nil {
		return BFUnchanged, err
	}

	// Step 3: orphan detection.
	parent, haveParent := bc.index[msgBlock.Header.PrevBlock]
	if !haveParent {
		bc.addOrphan(hash, block, msgBlock.Header.PrevBlock)
		return BFOrphan, nil
	}

	flags, err := bc.acceptBlock(block, parent)
	if err != nil {
		return BFUnchanged, err
	}

	bc.processOrphans(hash)
	return flags, nil
}

// acceptBlock runs the context-dependent checks (step 4), full connect
// validation (step 5), decides the block's place relative to the best
// chain (step 6), and persists the result (step 7).
func (bc *BlockChain) acceptBlock(block *btcutil.Block, parent *blockNode) (BehaviorFlags, er.R) {
	header := &block.MsgBlock().Header
	node := newBlockNode(header, parent)

	// Step 4: context checks.
	expectedBits := calcNextRequiredDifficulty(parent, header.Timestamp, bc.powLimit,
		bc.blocksPerRetarget, bc.chainParams.TargetTimespan, bc.chainParams.RetargetAdjustmentFactor)
	if header.Bits != expectedBits {
		return BFUnchanged, ErrUnexpectedDifficulty.Default()
	}
	medianTime := calcPastMedianTime(parent)
	if !header.Timestamp.After(medianTime) {
		return BFUnchanged, ErrTimeTooOld.Default()
	}

	bc.index[node.hash] = node

	if node.workSum.Cmp(bc.best.workSum) <= 0 {
		// Step 6 (side chain branch): accepted into the index, stored, but
		// does not become the new tip. The full body is persisted too, not
		// just the header, so a later reorg can replay this block's
		// transactions instead of a headers-only stand-in.
		block.SetHeight(node.height)
		if err := bc.db.Update(func(dbTx database.Tx) er.R {
			if err := putHeader(dbTx, node); err != nil {
				return err
			}
			return putBlock(dbTx, &node.hash, block)
		}); err != nil {
			delete(bc.index, node.hash)
			return BFUnchanged, err
		}
		return BFSideChain, nil
	}

	// Step 6 (best chain branch): does the new node extend the current
	// best chain directly, or does it require a reorg?
	if parent.hash == bc.best.hash {
		if err := bc.connectBestChain(node, block); err != nil {
			delete(bc.index, node.hash)
			return BFUnchanged, err
		}
		return BFNewBest, nil
	}

	if err := bc.reorganize(node, block); err != nil {
		delete(bc.index, node.hash)
		return BFUnchanged, err
	}
	return BFNewBest, nil
}

// connectBestChain validates and connects node as a direct extension of
// the current tip.
func (bc *BlockChain) connectBestChain(node *blockNode, block *btcutil.Block) er.R {
	block.SetHeight(node.height)
	return bc.db.Update(func(dbTx database.Tx) er.R {
		view, err := bc.fetchInputUtxos(dbTx, block)
		if err != nil {
			return err
		}
		stxos, err := bc.checkConnectBlock(node, block, view)
		if err != nil {
			return err
		}
		if err := putUtxoView(dbTx, view); err != nil {
			return err
		}
		if err := putUndoBlock(dbTx, node.height, stxos, bc.chainParams.MaxReorgDepth); err != nil {
			return err
		}
		if err := putHeader(dbTx, node); err != nil {
			return err
		}
		if err := putBlock(dbTx, &node.hash, block); err != nil {
			return err
		}
		if err := setChainHead(dbTx, node); err != nil {
			return err
		}

		bc.best = node
		bc.fireConnectEvents(block, stxos, true)
		return nil
	})
}

// reorganize switches the best chain from its current tip onto node by
// detaching blocks back to the fork point and attaching node's ancestor
// chain forward from there, refusing detaches deeper than MaxReorgDepth.
func (bc *BlockChain) reorganize(node *blockNode, block *btcutil.Block) er.R {
	fork := bc.findFork(node, bc.best)
	detachDepth := bc.best.height - fork.height
	if detachDepth > bc.chainParams.MaxReorgDepth {
		return ErrReorgTooDeep.Default()
	}

	var detachNodes []*blockNode
	for n := bc.best; n != nil && n.hash != fork.hash; n = n.parent {
		detachNodes = append(detachNodes, n)
	}

	var attachNodes []*blockNode
	for n := node; n != nil && n.hash != fork.hash; n = n.parent {
		attachNodes = append(attachNodes, n)
	}
	for i, j := 0, len(attachNodes)-1; i < j; i, j = i+1, j-1 {
		attachNodes[i], attachNodes[j] = attachNodes[j], attachNodes[i]
	}

	var detachedBlocks, attachedBlocks []*btcutil.Block

	return bc.db.Update(func(dbTx database.Tx) er.R {
		for _, n := range detachNodes {
			blk, stxos, err := bc.loadBlockForUndo(dbTx, n)
			if err != nil {
				return err
			}
			view := NewUtxoViewpoint()
			for _, tx := range blk.Transactions() {
				view.AddTxOuts(tx, n.height)
			}
			disconnectBlockView(view, blk, stxos)
			if err := putUtxoView(dbTx, view); err != nil {
				return err
			}
			detachedBlocks = append(detachedBlocks, blk)
			bc.Listeners.fireBlockDisconnected(&BlockDisconnected{Block: blk, Spent: stxos})
		}

		for i, n := range attachNodes {
			var blk *btcutil.Block
			if i == len(attachNodes)-1 {
				// The newly submitted node already carries its full body
				// in memory; every other attach node's body was persisted
				// when it was first accepted (either as the prior best
				// chain's tip or as a side-chain candidate).
				blk = block
				blk.SetHeight(n.height)
			} else {
				loaded, err := getBlock(dbTx, &n.hash, n.height)
				if err != nil {
					return err
				}
				blk = loaded
			}

			view, err := bc.fetchInputUtxos(dbTx, blk)
			if err != nil {
				return err
			}
			stxos, err := bc.checkConnectBlock(n, blk, view)
			if err != nil {
				return err
			}
			if err := putUtxoView(dbTx, view); err != nil {
				return err
			}
			if err := putUndoBlock(dbTx, n.height, stxos, bc.chainParams.MaxReorgDepth); err != nil {
				return err
			}
			if err := putHeader(dbTx, n); err != nil {
				return err
			}
			if err := putBlock(dbTx, &n.hash, blk); err != nil {
				return err
			}
			attachedBlocks = append(attachedBlocks, blk)
			bc.fireConnectEvents(blk, stxos, i == len(attachNodes)-1)
		}

		if err := setChainHead(dbTx, node); err != nil {
			return err
		}
		bc.best = node
		bc.Listeners.fireReorganize(&Reorganize{Detached: detachedBlocks, Attached: attachedBlocks})
		return nil
	})
}

// loadBlockForUndo reconstructs a detaching node's full body and its
// recorded spent-output records, both needed to reverse its effect on
// the UTXO set transaction by transaction.
func (bc *BlockChain) loadBlockForUndo(dbTx database.Tx, n *blockNode) (*btcutil.Block, []SpentTxOut, er.R) {
	stxos, err := getUndoBlock(dbTx, n.height)
	if err != nil {
		return nil, nil, err
	}
	blk, err := getBlock(dbTx, &n.hash, n.height)
	if err != nil {
		return nil, nil, err
	}
	return blk, stxos, nil
}

// disconnectBlockView reverses the UTXO-set effect of a block's
// transactions, in reverse order, using its previously recorded stxos.
func disconnectBlockView(view *UtxoViewpoint, block *btcutil.Block, stxos []SpentTxOut) {
	txs := block.Transactions()
	idx := len(stxos)
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		inCount := len(tx.MsgTx().TxIn)
		if IsCoinBaseTx(tx.MsgTx()) {
			inCount = 0
		}
		start := idx - inCount
		view.disconnectTransaction(tx, stxos[start:idx])
		idx = start
	}
}

func (bc *BlockChain) findFork(a, b *blockNode) *blockNode {
	for a.height > b.height {
		a = a.parent
	}
	for b.height > a.height {
		b = b.parent
	}
	for a.hash != b.hash {
		a = a.parent
		b = b.parent
	}
	return a
}

// fetchInputUtxos builds a view populated with every output the block's
// transactions reference: first every output the block itself creates (so
// same-block spends resolve without touching the store), then whatever
// remains is read from the on-disk UTXO set.
func (bc *BlockChain) fetchInputUtxos(dbTx database.Tx, block *btcutil.Block) (*UtxoViewpoint, er.R) {
	view := NewUtxoViewpoint()
	txs := block.Transactions()
	for _, tx := range txs {
		view.AddTxOuts(tx, block.Height())
	}
	for _, tx := range txs {
		if IsCoinBaseTx(tx.MsgTx()) {
			continue
		}
		for _, txIn := range tx.MsgTx().TxIn {
			if view.LookupEntry(txIn.PreviousOutPoint) != nil {
				continue
			}
			if entry := fetchUtxoEntry(dbTx, txIn.PreviousOutPoint); entry != nil {
				view.entries[txIn.PreviousOutPoint] = entry
			}
		}
	}
	return view, nil
}

// scriptFlagsForHeight derives the ScriptFlags to enforce for a block at
// the given height from the network's soft-fork activation heights.
func (bc *BlockChain) scriptFlagsForHeight(height int32) txscript.ScriptFlags {
	var flags txscript.ScriptFlags
	p := bc.chainParams
	if height >= p.BIP16Height {
		flags |= txscript.ScriptBip16
	}
	if height >= p.BIP66Height {
		flags |= txscript.ScriptVerifyDERSignatures | txscript.ScriptVerifyLowS
	}
	if height >= p.BIP65Height {
		flags |= txscript.ScriptVerifyCheckLockTimeVerify
	}
	if height >= p.BIP68Height {
		flags |= txscript.ScriptVerifyCheckSequenceVerify
	}
	if height >= p.SegwitHeight {
		flags |= txscript.ScriptVerifyWitness | txscript.ScriptVerifyCleanStack |
			txscript.ScriptVerifyMinimalData | txscript.ScriptVerifyNullFail | txscript.ScriptVerifyStrictEncoding
	}
	return flags
}

// checkConnectBlock runs full connect-time validation against view: every
// input must reference an existing, unspent, and (if a coinbase output)
// mature output; scripts must authorize the spend; and the coinbase's
// total output may not exceed the block subsidy plus collected fees.
func (bc *BlockChain) checkConnectBlock(node *blockNode, block *btcutil.Block, view *UtxoViewpoint) ([]SpentTxOut, er.R) {
	txs := block.Transactions()
	flags := bc.scriptFlagsForHeight(node.height)

	var allStxos []SpentTxOut
	var totalFees int64

	for _, tx := range txs {
		msgTx := tx.MsgTx()
		if IsCoinBaseTx(msgTx) {
			view.connectTransaction(tx, node.height, nil)
			continue
		}

		var inputSum int64
		for inIdx, txIn := range msgTx.TxIn {
			entry := view.LookupEntry(txIn.PreviousOutPoint)
			if entry == nil {
				return nil, ErrMissingTxOut.Default()
			}
			if entry.IsSpent() {
				return nil, ErrSpentTxOut.Default()
			}
			if entry.IsCoinBase() {
				if node.height-entry.BlockHeight() < int32(bc.chainParams.CoinbaseMaturity) {
					return nil, ErrImmatureSpend.Default()
				}
			}
			inputSum += entry.Amount()

			if err := txscript.Verify(txIn.SignatureScript, entry.PkScript(), txIn.Witness, msgTx, inIdx, flags, entry.Amount()); err != nil {
				return nil, ErrScriptValidation.Detail(err.Message())
			}
		}

		var outputSum int64
		for _, txOut := range msgTx.TxOut {
			outputSum += txOut.Value
		}
		if outputSum > inputSum {
			return nil, ErrSpendTooHigh.Default()
		}
		totalFees += inputSum - outputSum

		var txStxos []SpentTxOut
		view.connectTransaction(tx, node.height, &txStxos)
		allStxos = append(allStxos, txStxos...)
	}

	subsidy := CalcBlockSubsidy(node.height, bc.chainParams.SubsidyHalvingInterval)
	var coinbaseOut int64
	for _, txOut := range txs[0].MsgTx().TxOut {
		coinbaseOut += txOut.Value
	}
	if coinbaseOut > subsidy+totalFees {
		return nil, ErrBadSubsidy.Default()
	}

	return allStxos, nil
}

func (bc *BlockChain) fireConnectEvents(block *btcutil.Block, stxos []SpentTxOut, best bool) {
	if best {
		bc.Listeners.fireBestBlock(&NewBestBlock{Block: block, Height: block.Height()})
	}
	bc.Listeners.fireBlockConnected(&BlockConnected{Block: block, Spent: stxos})

	idx := 0
	for _, tx := range block.Transactions() {
		inCount := len(tx.MsgTx().TxIn)
		if IsCoinBaseTx(tx.MsgTx()) {
			inCount = 0
		}
		spent := stxos[idx : idx+inCount]
		idx += inCount
		bc.Listeners.fireTxReceived(&TransactionReceivedInBlock{
			Tx: tx, Block: block, Height: block.Height(), Spent: spent,
		})
	}
}

// addOrphan stores block under the chain engine's bounded orphan pool,
// evicting the lowest-hash entry first if the pool is already full.
func (bc *BlockChain) addOrphan(hash chainhash.Hash, block *btcutil.Block, prev chainhash.Hash) {
	if tmap.Len(bc.orphans) >= maxOrphanBlocks {
		bc.evictOldestOrphan()
	}
	tmap.Insert(bc.orphans, &hash, &block)
	bc.orphansByPrev[prev] = append(bc.orphansByPrev[prev], hash)
}

func (bc *BlockChain) evictOldestOrphan() {
	var oldest *chainhash.Hash
	_ = tmap.ForEach(bc.orphans, func(k *chainhash.Hash, v **btcutil.Block) er.R {
		oldest = k
		return er.LoopBreak()
	})
	if oldest == nil {
		return
	}
	tmap.Delete(bc.orphans, oldest)
	for prev, list := range bc.orphansByPrev {
		for i, h := range list {
			if h == *oldest {
				bc.orphansByPrev[prev] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// processOrphans reprocesses any orphan blocks waiting on parentHash,
// recursively, now that parentHash has itself been accepted.
func (bc *BlockChain) processOrphans(parentHash chainhash.Hash) {
	queue := []chainhash.Hash{parentHash}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		children := bc.orphansByPrev[h]
		delete(bc.orphansByPrev, h)
		for _, childHash := range children {
			_, v := tmap.GetEntry(bc.orphans, &childHash)
			if v == nil {
				continue
			}
			block := *v
			tmap.Delete(bc.orphans, &childHash)
			parent, ok := bc.index[h]
			if !ok {
				continue
			}
			if _, err := bc.acceptBlock(block, parent); err == nil {
				queue = append(queue, childHash)
			}
		}
	}
}

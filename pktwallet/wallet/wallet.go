// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements a minimal UTXO-consuming client of the chain
// engine: it tracks the spendable outputs paying to a set of imported keys
// by following blockchain.Listeners' block-connect events, and builds and
// signs transactions spending them. It does not manage key derivation,
// encrypted key storage, or any on-disk wallet format (out of scope: "Wallet
// key storage ... out of scope").
package wallet

import (
	"os"
	"sort"
	"sync"

	"github.com/defunctec/crownj/blockchain"
	"github.com/defunctec/crownj/btcec"
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/txscript"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/txscript/scriptbuilder"
	"github.com/defunctec/crownj/wire"
)

var walletErrorType = er.NewErrorType("wallet")

var (
	// ErrInsufficientFunds is returned when the watched UTXO set doesn't
	// cover the requested outputs plus fee, generalizing createtx.go's
	// one-off InsufficientFundsError into this package's own namespace.
	ErrInsufficientFunds = walletErrorType.Code("ErrInsufficientFunds")

	// ErrNoKeyForAddress is returned when asked to sign an input paying to
	// an address this wallet never imported a private key for.
	ErrNoKeyForAddress = walletErrorType.Code("ErrNoKeyForAddress")
)

// feeAllowancePerInput and feeAllowancePerOutput are rough serialized-size
// estimates (legacy P2PKH sigScript, non-segwit) used to size the fee; the
// fee paid is this estimate for the selected inputs plus the outputs and
// change output, not the transaction's real serialized size.
const (
	feeAllowancePerInput  = 148
	feeAllowancePerOutput = 34
	feeAllowanceOverhead  = 10
)

// Credit is one spendable output this wallet is tracking, paying to one of
// its imported addresses.
type Credit struct {
	OutPoint wire.OutPoint
	PkScript []byte
	Value    int64
	Height   int32
	Address  btcutil.Address
}

// Wallet tracks the spendable balance of a set of imported private keys by
// following chain-connect events, the same role waddrmgr/wtxmgr play in a
// full wallet but scoped to exactly what this module's chain engine and
// txscript package can exercise.
type Wallet struct {
	mu sync.Mutex

	chainParams *chaincfg.Params
	keys        map[string]*btcec.PrivateKey
	watch       map[string]btcutil.Address
	utxos       map[wire.OutPoint]*Credit

	log *log.Logger
}

// New returns an empty wallet with no imported keys. Call Listen to start
// tracking a chain engine's block-connect events.
func New(params *chaincfg.Params) *Wallet {
	return &Wallet{
		chainParams: params,
		keys:        make(map[string]*btcec.PrivateKey),
		watch:       make(map[string]btcutil.Address),
		utxos:       make(map[wire.OutPoint]*Credit),
		log:         log.New("WALLET", log.LevelInfo, os.Stderr),
	}
}

// ImportPrivateKey adds key to the wallet's signing set and starts watching
// the P2PKH address it derives, returning that address.
func (w *Wallet) ImportPrivateKey(key *btcec.PrivateKey) (btcutil.Address, er.R) {
	hash160 := chainhash.Hash160(key.PubKey().SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(hash160, w.chainParams)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.keys[addr.EncodeAddress()] = key
	w.watch[addr.EncodeAddress()] = addr
	w.mu.Unlock()
	return addr, nil
}

// WatchAddress adds addr to the set of addresses whose incoming outputs are
// tracked, without a corresponding private key (useful for a watch-only
// balance; CreateTx can't spend from it without also calling
// ImportPrivateKey for the same address).
func (w *Wallet) WatchAddress(addr btcutil.Address) {
	w.mu.Lock()
	w.watch[addr.EncodeAddress()] = addr
	w.mu.Unlock()
}

// Listen subscribes to chain's block-connect/disconnect events and keeps
// the tracked UTXO set in sync with the best chain, the same
// subscribe-and-drain-in-a-goroutine shape
// blockchain/indexers.Driver.Listen uses for its own secondary indexes.
func (w *Wallet) Listen(chain *blockchain.BlockChain, stop <-chan struct{}) {
	connected := make(chan *blockchain.BlockConnected, 16)
	disconnected := make(chan *blockchain.BlockDisconnected, 16)
	chain.Listeners.SubscribeBlockConnected(connected)
	chain.Listeners.SubscribeBlockDisconnected(disconnected)

	go func() {
		for {
			select {
			case <-stop:
				return
			case ev := <-connected:
				w.applyBlock(ev.Block, true)
			case ev := <-disconnected:
				w.applyBlock(ev.Block, false)
			}
		}
	}()
}

// applyBlock adds or removes the credits a block's transactions create and
// spend, depending on whether it was connected or disconnected. Spends are
// recognized by outpoint regardless of whether this wallet saw the
// original credit (an output received before this wallet started watching
// its address is simply never in utxos, so removing it is a no-op).
func (w *Wallet) applyBlock(block *btcutil.Block, connect bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tx := range block.Transactions() {
		msgTx := tx.MsgTx()
		if connect {
			for _, txIn := range msgTx.TxIn {
				delete(w.utxos, txIn.PreviousOutPoint)
			}
			for i, txOut := range msgTx.TxOut {
				addr := w.recognize(txOut.PkScript)
				if addr == nil {
					continue
				}
				op := wire.OutPoint{Hash: *tx.Hash(), Index: uint32(i)}
				w.utxos[op] = &Credit{
					OutPoint: op,
					PkScript: txOut.PkScript,
					Value:    txOut.Value,
					Height:   block.Height(),
					Address:  addr,
				}
				w.log.Debugf("received %s at %s", btcutil.Amount(txOut.Value), op.String())
			}
		} else {
			for i := range msgTx.TxOut {
				op := wire.OutPoint{Hash: *tx.Hash(), Index: uint32(i)}
				delete(w.utxos, op)
			}
			// A disconnected block's spent inputs become spendable again
			// only if we still recognize their owning address; without the
			// original PkScript/value on hand here we can't fully restore
			// the credit, so a reorg that unspends one of our own outputs
			// requires a rescan. This mirrors the reorg-depth bound the
			// chain engine itself enforces (MaxReorgDepth) rather than
			// trying to reconstruct history the chain engine has already
			// discarded.
		}
	}
}

func (w *Wallet) recognize(pkScript []byte) btcutil.Address {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, w.chainParams)
	if err != nil || len(addrs) != 1 {
		return nil
	}
	if _, ok := w.watch[addrs[0].EncodeAddress()]; !ok {
		return nil
	}
	return addrs[0]
}

// Balance returns the sum of every tracked credit.
func (w *Wallet) Balance() btcutil.Amount {
	w.mu.Lock()
	defer w.mu.Unlock()
	var total btcutil.Amount
	for _, c := range w.utxos {
		total += btcutil.Amount(c.Value)
	}
	return total
}

// ListUnspent returns every tracked credit, highest-value first (the same
// "prefer biggest" bias createtx.go's PreferBiggest comparator applied, to
// keep typical transactions small).
func (w *Wallet) ListUnspent() []*Credit {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Credit, 0, len(w.utxos))
	for _, c := range w.utxos {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// CreateTx selects eligible credits, builds a transaction paying outputs,
// adds a change output back to the first spent credit's address if there's
// change, signs every input, and returns the finished transaction. It does
// not broadcast or otherwise touch the chain engine.
func (w *Wallet) CreateTx(outputs []*wire.TxOut, feeSatPerKB btcutil.Amount) (*wire.MsgTx, er.R) {
	var target int64
	for _, o := range outputs {
		target += o.Value
	}

	eligible := w.ListUnspent()

	tx := wire.NewMsgTx(1)
	for _, o := range outputs {
		tx.AddTxOut(o)
	}

	var selected []*Credit
	var selectedTotal int64
	estFee := func(nInputs, nOutputs int) int64 {
		return int64(feeSatPerKB) * int64(feeAllowanceOverhead+nInputs*feeAllowancePerInput+nOutputs*feeAllowancePerOutput) / 1000
	}

	for _, c := range eligible {
		if selectedTotal >= target+estFee(len(selected), len(outputs)+1) {
			break
		}
		selected = append(selected, c)
		selectedTotal += c.Value
	}
	fee := estFee(len(selected), len(outputs)+1)
	if selectedTotal < target+fee {
		return nil, ErrInsufficientFunds.Default()
	}

	for _, c := range selected {
		tx.AddTxIn(wire.NewTxIn(&c.OutPoint, nil, nil))
	}

	change := selectedTotal - target - fee
	if change > 0 {
		changeScript, err := txscript.PayToAddrScript(selected[0].Address)
		if err != nil {
			return nil, err
		}
		tx.AddTxOut(wire.NewTxOut(change, changeScript))
	}

	for i, c := range selected {
		if err := w.signInput(tx, i, c); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// signInput computes the legacy signature hash for input idx spending
// credit, signs it with the imported key for credit's address, and builds
// and assigns the resulting scriptSig, verifying it executes cleanly before
// returning (the same self-check createtx.go's validateMsgTx1 performs
// before a signed transaction is trusted).
func (w *Wallet) signInput(tx *wire.MsgTx, idx int, credit *Credit) er.R {
	w.mu.Lock()
	key, ok := w.keys[credit.Address.EncodeAddress()]
	w.mu.Unlock()
	if !ok {
		return ErrNoKeyForAddress.Detail("no imported key for " + credit.Address.EncodeAddress())
	}

	subScript, err := parsescript.ParseScript(credit.PkScript)
	if err != nil {
		return err
	}
	sigHash, err := txscript.CalcSignatureHash(subScript, txscript.SigHashAll, tx, idx)
	if err != nil {
		return err
	}
	sig, err := key.Sign(sigHash)
	if err != nil {
		return err
	}
	sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))

	b := scriptbuilder.NewScriptBuilder()
	b.AddData(sigBytes)
	b.AddData(key.PubKey().SerializeCompressed())
	sigScript, err := b.Script()
	if err != nil {
		return err
	}
	tx.TxIn[idx].SignatureScript = sigScript

	if err := txscript.Verify(sigScript, credit.PkScript, nil, tx, idx, txscript.StandardVerifyFlags(), credit.Value); err != nil {
		return err.AddMessage("signed input failed self-verification")
	}
	return nil
}

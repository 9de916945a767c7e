// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defunctec/crownj/btcec"
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/txscript"
	"github.com/defunctec/crownj/wire"
)

func newKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

func TestImportPrivateKeyWatchesAddress(t *testing.T) {
	w := New(&chaincfg.RegressionNetParams)
	addr, err := w.ImportPrivateKey(newKey(t))
	require.NoError(t, err)
	require.Contains(t, w.watch, addr.EncodeAddress())
	require.Contains(t, w.keys, addr.EncodeAddress())
}

func TestRecognizeRequiresWatchedAddress(t *testing.T) {
	w := New(&chaincfg.RegressionNetParams)
	_, err := w.ImportPrivateKey(newKey(t))
	require.NoError(t, err)

	// A second, never-watched key's address should not be recognized.
	unwatchedKey := newKey(t)
	unwatchedAddr, err := btcutil.NewAddressPubKeyHash(
		chainhash.Hash160(unwatchedKey.PubKey().SerializeCompressed()), &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(unwatchedAddr)
	require.NoError(t, err)
	require.Nil(t, w.recognize(pkScript))

	w.WatchAddress(unwatchedAddr)
	require.NotNil(t, w.recognize(pkScript))
}

func TestBalanceAndListUnspent(t *testing.T) {
	w := New(&chaincfg.RegressionNetParams)
	w.utxos[wire.OutPoint{Index: 0}] = &Credit{Value: 100}
	w.utxos[wire.OutPoint{Index: 1}] = &Credit{Value: 900}

	require.EqualValues(t, 1000, w.Balance())
	list := w.ListUnspent()
	require.Len(t, list, 2)
	require.EqualValues(t, 900, list[0].Value)
	require.EqualValues(t, 100, list[1].Value)
}

func TestCreateTxInsufficientFunds(t *testing.T) {
	w := New(&chaincfg.RegressionNetParams)
	addr, err := w.ImportPrivateKey(newKey(t))
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)
	outputs := []*wire.TxOut{wire.NewTxOut(1_000_000, pkScript)}

	_, err = w.CreateTx(outputs, 1000)
	require.Error(t, err)
	require.True(t, ErrInsufficientFunds.Is(err))
}

func TestCreateTxSignsAndSelfVerifies(t *testing.T) {
	w := New(&chaincfg.RegressionNetParams)
	key := newKey(t)
	addr, err := w.ImportPrivateKey(key)
	require.NoError(t, err)
	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)

	credit := &Credit{
		OutPoint: wire.OutPoint{Index: 0},
		PkScript: pkScript,
		Value:    5_000_000,
		Address:  addr,
	}
	w.utxos[credit.OutPoint] = credit

	destAddr, err := w.ImportPrivateKey(newKey(t))
	require.NoError(t, err)
	destScript, err := txscript.PayToAddrScript(destAddr)
	require.NoError(t, err)

	tx, err := w.CreateTx([]*wire.TxOut{wire.NewTxOut(1_000_000, destScript)}, 1000)
	require.NoError(t, err)
	require.Len(t, tx.TxIn, 1)
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
	require.Len(t, tx.TxOut, 2, "expected a payment output plus change")

	verifyErr := txscript.Verify(
		tx.TxIn[0].SignatureScript, pkScript, nil, tx, 0, txscript.StandardVerifyFlags(), credit.Value,
	)
	require.NoError(t, verifyErr, "independent script verification failed")
}

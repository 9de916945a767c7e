// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/defunctec/crownj/btcec"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/txscript/scriptbuilder"
	"github.com/defunctec/crownj/wire"
)

func mustScript(t *testing.T, b *scriptbuilder.ScriptBuilder) []byte {
	t.Helper()
	s, err := b.Script()
	if err != nil {
		t.Fatalf("building script: %v", err)
	}
	return s
}

func spendingTx(prevOutHash chainhash.Hash, prevOutIdx uint32, sigScript []byte, witness wire.TxWitness) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	txIn := wire.NewTxIn(wire.NewOutPoint(&prevOutHash, prevOutIdx), sigScript, witness)
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(49*1e8, []byte{byte(opcode.OP_TRUE)}))
	return tx
}

func signLegacy(t *testing.T, priv *btcec.PrivateKey, pkScript []byte, tx *wire.MsgTx, idx int, hashType SigHashType) []byte {
	t.Helper()
	pops, err := parsescript.ParseScript(pkScript)
	if err != nil {
		t.Fatalf("parsing pkScript: %v", err)
	}
	hash, err := CalcSignatureHash(pops, hashType, tx, idx)
	if err != nil {
		t.Fatalf("calculating sighash: %v", err)
	}
	sig, err := priv.Sign(hash)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return append(sig.Serialize(), byte(hashType))
}

func signWitness(t *testing.T, priv *btcec.PrivateKey, subScript []byte, tx *wire.MsgTx, idx int, amount int64, hashType SigHashType) []byte {
	t.Helper()
	pops, err := parsescript.ParseScript(subScript)
	if err != nil {
		t.Fatalf("parsing subScript: %v", err)
	}
	hash, err := calcWitnessSignatureHash(pops, hashType, tx, idx, amount)
	if err != nil {
		t.Fatalf("calculating witness sighash: %v", err)
	}
	sig, err := priv.Sign(hash)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return append(sig.Serialize(), byte(hashType))
}

func TestVerifyP2PKHSpend(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	pkHash := chainhash.Hash160(pubKeyBytes)

	pkScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).
		AddOp(opcode.OP_HASH160).
		AddData(pkHash).
		AddOp(opcode.OP_EQUALVERIFY).
		AddOp(opcode.OP_CHECKSIG))

	var prevHash chainhash.Hash
	tx := spendingTx(prevHash, 0, nil, nil)

	sig := signLegacy(t, priv, pkScript, tx, 0, SigHashAll)
	sigScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddData(sig).
		AddData(pubKeyBytes))
	tx.TxIn[0].SignatureScript = sigScript

	if err := Verify(sigScript, pkScript, nil, tx, 0, StandardVerifyFlags(), 0); err != nil {
		t.Fatalf("expected valid P2PKH spend, got: %v", err)
	}
}

func TestVerifyP2PKHBadSignatureFails(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	other, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	pkHash := chainhash.Hash160(pubKeyBytes)

	pkScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).
		AddOp(opcode.OP_HASH160).
		AddData(pkHash).
		AddOp(opcode.OP_EQUALVERIFY).
		AddOp(opcode.OP_CHECKSIG))

	var prevHash chainhash.Hash
	tx := spendingTx(prevHash, 0, nil, nil)

	// Sign with the wrong key.
	sig := signLegacy(t, other, pkScript, tx, 0, SigHashAll)
	sigScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddData(sig).
		AddData(pubKeyBytes))
	tx.TxIn[0].SignatureScript = sigScript

	if err := Verify(sigScript, pkScript, nil, tx, 0, StandardVerifyFlags(), 0); err == nil {
		t.Fatal("expected verification to fail with mismatched key")
	}
}

func TestVerifyP2SHSpend(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()

	redeemScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddData(pubKeyBytes).
		AddOp(opcode.OP_CHECKSIG))
	redeemHash := chainhash.Hash160(redeemScript)

	pkScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_HASH160).
		AddData(redeemHash).
		AddOp(opcode.OP_EQUAL))

	var prevHash chainhash.Hash
	tx := spendingTx(prevHash, 0, nil, nil)

	sig := signLegacy(t, priv, redeemScript, tx, 0, SigHashAll)
	sigScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddData(sig).
		AddData(redeemScript))
	tx.TxIn[0].SignatureScript = sigScript

	if err := Verify(sigScript, pkScript, nil, tx, 0, StandardVerifyFlags(), 0); err != nil {
		t.Fatalf("expected valid P2SH spend, got: %v", err)
	}
}

func TestVerifyP2WPKHSpend(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	pubKeyBytes := priv.PubKey().SerializeCompressed()
	pkHash := chainhash.Hash160(pubKeyBytes)

	pkScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_0).
		AddData(pkHash))

	const amount = 49 * 1e8
	var prevHash chainhash.Hash
	tx := spendingTx(prevHash, 0, nil, nil)

	scriptCode := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_DUP).
		AddOp(opcode.OP_HASH160).
		AddData(pkHash).
		AddOp(opcode.OP_EQUALVERIFY).
		AddOp(opcode.OP_CHECKSIG))

	sig := signWitness(t, priv, scriptCode, tx, 0, amount, SigHashAll)
	witness := wire.TxWitness{sig, pubKeyBytes}
	tx.TxIn[0].Witness = witness

	if err := Verify(nil, pkScript, witness, tx, 0, StandardVerifyFlags(), amount); err != nil {
		t.Fatalf("expected valid P2WPKH spend, got: %v", err)
	}
}

func TestVerifyBareMultisigSpend(t *testing.T) {
	priv1, _ := btcec.NewPrivateKey()
	priv2, _ := btcec.NewPrivateKey()
	pub1 := priv1.PubKey().SerializeCompressed()
	pub2 := priv2.PubKey().SerializeCompressed()

	pkScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_2).
		AddData(pub1).
		AddData(pub2).
		AddOp(opcode.OP_2).
		AddOp(opcode.OP_CHECKMULTISIG))

	var prevHash chainhash.Hash
	tx := spendingTx(prevHash, 0, nil, nil)

	sig1 := signLegacy(t, priv1, pkScript, tx, 0, SigHashAll)
	sig2 := signLegacy(t, priv2, pkScript, tx, 0, SigHashAll)
	sigScript := mustScript(t, scriptbuilder.NewScriptBuilder().
		AddOp(opcode.OP_0).
		AddData(sig1).
		AddData(sig2))
	tx.TxIn[0].SignatureScript = sigScript

	if err := Verify(sigScript, pkScript, nil, tx, 0, StandardVerifyFlags(), 0); err != nil {
		t.Fatalf("expected valid 2-of-2 multisig spend, got: %v", err)
	}
}

func TestVerifyScriptTooLongFails(t *testing.T) {
	big := make([]byte, MaxScriptSize+1)
	if err := Verify(nil, big, nil, wire.NewMsgTx(2), 0, StandardVerifyFlags(), 0); err == nil {
		t.Fatal("expected oversized script to be rejected")
	}
}

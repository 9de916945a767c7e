// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/txscript/scriptbuilder"
)

// ScriptClass identifies the recognized scriptPubKey pattern a script
// matches, used by the address index and the wallet to decide how to build
// a spending scriptSig.
type ScriptClass byte

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	MultiSigTy
	NullDataTy
	WitnessV0PubKeyHashTy
	WitnessV0ScriptHashTy
)

func (c ScriptClass) String() string {
	switch c {
	case PubKeyTy:
		return "pubkey"
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case MultiSigTy:
		return "multisig"
	case NullDataTy:
		return "nulldata"
	case WitnessV0PubKeyHashTy:
		return "witness_v0_keyhash"
	case WitnessV0ScriptHashTy:
		return "witness_v0_scripthash"
	default:
		return "nonstandard"
	}
}

// GetScriptClass returns the ScriptClass a raw scriptPubKey matches. It
// never fails: an unparsable or unrecognized script is NonStandardTy.
func GetScriptClass(pkScript []byte) ScriptClass {
	pops, err := parsescript.ParseScript(pkScript)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(pops)
}

func typeOfScript(pops []parsescript.ParsedOpcode) ScriptClass {
	if isPubKey(pops) {
		return PubKeyTy
	}
	if isPubKeyHash(pops) {
		return PubKeyHashTy
	}
	if isScriptHash(pops) {
		return ScriptHashTy
	}
	if isMultiSig(pops) {
		return MultiSigTy
	}
	if isNullData(pops) {
		return NullDataTy
	}
	if isWitness, version, program := extractWitnessProgram(pops); isWitness {
		switch {
		case version == 0 && len(program) == 20:
			return WitnessV0PubKeyHashTy
		case version == 0 && len(program) == 32:
			return WitnessV0ScriptHashTy
		}
	}
	return NonStandardTy
}

func isPubKey(pops []parsescript.ParsedOpcode) bool {
	if len(pops) != 2 {
		return false
	}
	return (len(pops[0].Data) == 33 || len(pops[0].Data) == 65) &&
		pops[1].Opcode == opcode.OP_CHECKSIG
}

func isPubKeyHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 5 &&
		pops[0].Opcode == opcode.OP_DUP &&
		pops[1].Opcode == opcode.OP_HASH160 &&
		pops[2].Opcode == byte(opcode.OP_DATA_1+19) &&
		len(pops[2].Data) == 20 &&
		pops[3].Opcode == opcode.OP_EQUALVERIFY &&
		pops[4].Opcode == opcode.OP_CHECKSIG
}

func isMultiSig(pops []parsescript.ParsedOpcode) bool {
	if len(pops) < 4 {
		return false
	}
	if !isSmallInt(pops[0].Opcode) || !isSmallInt(pops[len(pops)-2].Opcode) {
		return false
	}
	if pops[len(pops)-1].Opcode != opcode.OP_CHECKMULTISIG {
		return false
	}
	numKeys := asSmallInt(pops[len(pops)-2].Opcode)
	if numKeys != len(pops)-3 {
		return false
	}
	for _, p := range pops[1 : len(pops)-2] {
		if len(p.Data) != 33 && len(p.Data) != 65 {
			return false
		}
	}
	return true
}

func isNullData(pops []parsescript.ParsedOpcode) bool {
	return len(pops) >= 1 && pops[0].Opcode == opcode.OP_RETURN
}

func isSmallInt(op byte) bool {
	return op == opcode.OP_0 || (op >= opcode.OP_1 && op <= opcode.OP_16)
}

func asSmallInt(op byte) int {
	if op == opcode.OP_0 {
		return 0
	}
	return int(op-opcode.OP_1) + 1
}

// ExtractPkScriptAddrs returns the ScriptClass, the addresses the script
// pays (0, 1, or N for bare multisig), and for multisig the number of
// signatures required, for the scriptPubKey patterns this module
// recognizes.
func ExtractPkScriptAddrs(pkScript []byte, params *chaincfg.Params) (ScriptClass, []btcutil.Address, int, er.R) {
	pops, err := parsescript.ParseScript(pkScript)
	if err != nil {
		return NonStandardTy, nil, 0, nil
	}
	class := typeOfScript(pops)

	switch class {
	case PubKeyTy:
		addr, aerr := btcutil.NewAddressPubKey(pops[0].Data, params)
		if aerr != nil {
			return class, nil, 0, aerr
		}
		return class, []btcutil.Address{addr}, 1, nil

	case PubKeyHashTy:
		addr, aerr := btcutil.NewAddressPubKeyHash(pops[2].Data, params)
		if aerr != nil {
			return class, nil, 0, aerr
		}
		return class, []btcutil.Address{addr}, 1, nil

	case ScriptHashTy:
		addr, aerr := btcutil.NewAddressScriptHashFromHash(pops[1].Data, params)
		if aerr != nil {
			return class, nil, 0, aerr
		}
		return class, []btcutil.Address{addr}, 1, nil

	case MultiSigTy:
		numSigs := asSmallInt(pops[0].Opcode)
		numKeys := len(pops) - 3
		addrs := make([]btcutil.Address, 0, numKeys)
		for _, p := range pops[1 : 1+numKeys] {
			addr, aerr := btcutil.NewAddressPubKey(p.Data, params)
			if aerr != nil {
				return class, nil, 0, aerr
			}
			addrs = append(addrs, addr)
		}
		return class, addrs, numSigs, nil

	case WitnessV0PubKeyHashTy:
		addr, aerr := btcutil.NewAddressWitnessPubKeyHash(pops[1].Data, params)
		if aerr != nil {
			return class, nil, 0, aerr
		}
		return class, []btcutil.Address{addr}, 1, nil

	case WitnessV0ScriptHashTy:
		addr, aerr := btcutil.NewAddressWitnessScriptHash(pops[1].Data, params)
		if aerr != nil {
			return class, nil, 0, aerr
		}
		return class, []btcutil.Address{addr}, 1, nil

	default:
		return class, nil, 0, nil
	}
}

// PkScriptToAddress is a convenience wrapper for the common case of a
// script with exactly one recognized address (P2PK/P2PKH/P2SH/P2WPKH/
// P2WSH), returning nil for anything else.
func PkScriptToAddress(pkScript []byte, params *chaincfg.Params) btcutil.Address {
	_, addrs, _, err := ExtractPkScriptAddrs(pkScript, params)
	if err != nil || len(addrs) != 1 {
		return nil
	}
	return addrs[0]
}

// PayToAddrScript creates a new script to pay a transaction output to the
// given address.
func PayToAddrScript(addr btcutil.Address) ([]byte, er.R) {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return scriptbuilder.NewScriptBuilder().
			AddOp(opcode.OP_DUP).
			AddOp(opcode.OP_HASH160).
			AddData(a.ScriptAddress()).
			AddOp(opcode.OP_EQUALVERIFY).
			AddOp(opcode.OP_CHECKSIG).
			Script()

	case *btcutil.AddressScriptHash:
		return scriptbuilder.NewScriptBuilder().
			AddOp(opcode.OP_HASH160).
			AddData(a.ScriptAddress()).
			AddOp(opcode.OP_EQUAL).
			Script()

	case *btcutil.AddressPubKey:
		return scriptbuilder.NewScriptBuilder().
			AddData(a.ScriptAddress()).
			AddOp(opcode.OP_CHECKSIG).
			Script()

	case *btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash:
		return scriptbuilder.NewScriptBuilder().
			AddOp(opcode.OP_0).
			AddData(addr.ScriptAddress()).
			Script()

	default:
		return nil, ErrUnsupportedAddress.Default()
	}
}

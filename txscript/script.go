// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// Consensus limits enforced during execution.
const (
	MaxScriptSize    = 10000
	MaxOpsPerScript  = 201
	MaxPubKeysPerMultiSig = 20
	MaxScriptElementSize  = 520
)

// ScriptFlags is a bitmask of script verification behaviors to enforce,
// derived by the chain engine from a block's activation height.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and
	// thus pay-to-script-hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyDERSignatures names the strict DER rule (BIP-66). The
	// engine does not read this flag: btcec.ParseSignature always requires
	// strict DER, so a non-DER signature is rejected whether or not it is set.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS names the low S rule (BIP-62 rule 5). The engine
	// does not read this flag: a signature with a high S value is accepted
	// whether or not it is set.
	ScriptVerifyLowS

	// ScriptVerifyCheckLockTimeVerify defines whether to allow execution
	// of the OP_CHECKLOCKTIMEVERIFY opcode (BIP-65).
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify defines whether to allow execution
	// of the OP_CHECKSEQUENCEVERIFY opcode (BIP-68/BIP-112).
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyWitness defines whether or not segwit-style witness
	// programs (P2WPKH/P2WSH) should be validated.
	ScriptVerifyWitness

	// ScriptVerifyCleanStack defines that the stack must contain only one
	// item after execution, and that item must evaluate to true.
	ScriptVerifyCleanStack

	// ScriptVerifyMinimalData names the rule that data is pushed with the
	// smallest possible push operator. The engine does not read this flag,
	// and push operators are not checked for minimal size.
	ScriptVerifyMinimalData

	// ScriptVerifyNullFail defines that signatures must be empty vectors
	// on failed CHECKSIG/CHECKMULTISIG operations, and empty vectors
	// must fail.
	ScriptVerifyNullFail

	// ScriptVerifyStrictEncoding is not read by the engine. The push-only
	// requirement on scriptSigs (BIP-62 rule 2) is applied whenever
	// ScriptBip16 is set, whether or not this flag is.
	ScriptVerifyStrictEncoding
)

// StandardVerifyFlags returns the flags this implementation enforces once
// every relevant soft fork (BIP-16/66/65/68/segwit) has activated on the
// network, used by the wallet signer and the reference test vectors.
func StandardVerifyFlags() ScriptFlags {
	return ScriptBip16 | ScriptVerifyDERSignatures | ScriptVerifyLowS |
		ScriptVerifyCheckLockTimeVerify | ScriptVerifyCheckSequenceVerify |
		ScriptVerifyWitness | ScriptVerifyCleanStack | ScriptVerifyMinimalData |
		ScriptVerifyNullFail | ScriptVerifyStrictEncoding
}

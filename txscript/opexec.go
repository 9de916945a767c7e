// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/defunctec/crownj/btcec"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/parsescript"
)

// execOp dispatches a single non-push, non-flow-control opcode against the
// engine's stacks.
func (e *engine) execOp(op byte) er.R {
	switch op {
	case opcode.OP_NOP:
		return nil

	case opcode.OP_NOP1, opcode.OP_NOP4, opcode.OP_NOP5, opcode.OP_NOP6,
		opcode.OP_NOP7, opcode.OP_NOP8, opcode.OP_NOP9, opcode.OP_NOP10:
		return nil

	case opcode.OP_CHECKLOCKTIMEVERIFY:
		return e.execCheckLockTimeVerify()
	case opcode.OP_CHECKSEQUENCEVERIFY:
		return e.execCheckSequenceVerify()

	case opcode.OP_VERIFY:
		v, err := e.dstack.PopBool()
		if err != nil {
			return err
		}
		if !v {
			return ErrVerify.Default()
		}
		return nil

	case opcode.OP_RETURN:
		return ErrEarlyReturn.Default()

	case opcode.OP_TOALTSTACK:
		v, err := e.dstack.PopByteArray()
		if err != nil {
			return err
		}
		e.astack.PushByteArray(v)
		return nil
	case opcode.OP_FROMALTSTACK:
		v, err := e.astack.PopByteArray()
		if err != nil {
			return err
		}
		e.dstack.PushByteArray(v)
		return nil

	case opcode.OP_IFDUP:
		v, err := e.dstack.PeekBool(0)
		if err != nil {
			return err
		}
		if v {
			return e.dstack.Dup()
		}
		return nil
	case opcode.OP_DEPTH:
		e.dstack.PushInt(scriptNum(e.dstack.Depth()))
		return nil
	case opcode.OP_DROP:
		return e.dstack.Drop()
	case opcode.OP_DUP:
		return e.dstack.Dup()
	case opcode.OP_NIP:
		return e.dstack.Nip()
	case opcode.OP_OVER:
		return e.dstack.Over()
	case opcode.OP_SWAP:
		return e.dstack.Swap()
	case opcode.OP_ROT:
		return e.dstack.Rot()
	case opcode.OP_TUCK:
		return e.dstack.Tuck()
	case opcode.OP_PICK:
		idx, err := e.dstack.PopInt(defaultScriptNumLen)
		if err != nil {
			return err
		}
		return e.dstack.PickN(idx.Int32())
	case opcode.OP_ROLL:
		idx, err := e.dstack.PopInt(defaultScriptNumLen)
		if err != nil {
			return err
		}
		return e.dstack.RollN(idx.Int32())

	case opcode.OP_SIZE:
		v, err := e.dstack.PeekByteArray(0)
		if err != nil {
			return err
		}
		e.dstack.PushInt(scriptNum(len(v)))
		return nil

	case opcode.OP_EQUAL:
		return e.execEqual(false)
	case opcode.OP_EQUALVERIFY:
		return e.execEqual(true)

	case opcode.OP_1ADD, opcode.OP_1SUB, opcode.OP_NEGATE, opcode.OP_ABS,
		opcode.OP_NOT, opcode.OP_0NOTEQUAL:
		return e.execUnaryNum(op)

	case opcode.OP_ADD, opcode.OP_SUB, opcode.OP_BOOLAND, opcode.OP_BOOLOR,
		opcode.OP_NUMEQUAL, opcode.OP_NUMNOTEQUAL, opcode.OP_LESSTHAN,
		opcode.OP_GREATERTHAN, opcode.OP_LESSTHANOREQUAL,
		opcode.OP_GREATERTHANOREQUAL, opcode.OP_MIN, opcode.OP_MAX:
		return e.execBinaryNum(op)

	case opcode.OP_NUMEQUALVERIFY:
		if err := e.execBinaryNum(opcode.OP_NUMEQUAL); err != nil {
			return err
		}
		v, err := e.dstack.PopBool()
		if err != nil {
			return err
		}
		if !v {
			return ErrNumEqualVerify.Default()
		}
		return nil

	case opcode.OP_WITHIN:
		return e.execWithin()

	case opcode.OP_RIPEMD160:
		return e.execHash(func(b []byte) []byte {
			h := ripemd160.New()
			_, _ = h.Write(b)
			return h.Sum(nil)
		})
	case opcode.OP_SHA1:
		return e.execHash(func(b []byte) []byte { s := sha1.Sum(b); return s[:] })
	case opcode.OP_SHA256:
		return e.execHash(func(b []byte) []byte { s := sha256.Sum256(b); return s[:] })
	case opcode.OP_HASH160:
		return e.execHash(chainhash.Hash160)
	case opcode.OP_HASH256:
		return e.execHash(chainhash.DoubleHashB)

	case opcode.OP_CHECKSIG:
		return e.execCheckSig(false)
	case opcode.OP_CHECKSIGVERIFY:
		return e.execCheckSig(true)
	case opcode.OP_CHECKMULTISIG:
		return e.execCheckMultiSig(false)
	case opcode.OP_CHECKMULTISIGVERIFY:
		return e.execCheckMultiSig(true)

	case opcode.OP_RESERVED, opcode.OP_VER, opcode.OP_VERIF, opcode.OP_VERNOTIF,
		opcode.OP_RESERVED1, opcode.OP_RESERVED2:
		return ErrReservedOpcode.Detail(opcode.Name(op))

	case opcode.OP_CAT, opcode.OP_SUBSTR, opcode.OP_LEFT, opcode.OP_RIGHT,
		opcode.OP_INVERT, opcode.OP_AND, opcode.OP_OR, opcode.OP_XOR,
		opcode.OP_2MUL, opcode.OP_2DIV, opcode.OP_MUL, opcode.OP_DIV,
		opcode.OP_MOD, opcode.OP_LSHIFT, opcode.OP_RSHIFT:
		return ErrDisabledOpcode.Detail(opcode.Name(op))

	default:
		return ErrInvalidOpcode.Detail(opcode.Name(op))
	}
}

func (e *engine) execEqual(verify bool) er.R {
	b, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	a, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	eq := bytes.Equal(a, b)
	if verify {
		if !eq {
			return ErrEqualVerify.Default()
		}
		return nil
	}
	e.dstack.PushBool(eq)
	return nil
}

func (e *engine) execHash(f func([]byte) []byte) er.R {
	v, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	e.dstack.PushByteArray(f(v))
	return nil
}

func (e *engine) execUnaryNum(op byte) er.R {
	n, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	switch op {
	case opcode.OP_1ADD:
		e.dstack.PushInt(n + 1)
	case opcode.OP_1SUB:
		e.dstack.PushInt(n - 1)
	case opcode.OP_NEGATE:
		e.dstack.PushInt(-n)
	case opcode.OP_ABS:
		if n < 0 {
			n = -n
		}
		e.dstack.PushInt(n)
	case opcode.OP_NOT:
		e.dstack.PushBool(n == 0)
	case opcode.OP_0NOTEQUAL:
		e.dstack.PushBool(n != 0)
	}
	return nil
}

func (e *engine) execBinaryNum(op byte) er.R {
	b, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	a, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	switch op {
	case opcode.OP_ADD:
		e.dstack.PushInt(a + b)
	case opcode.OP_SUB:
		e.dstack.PushInt(a - b)
	case opcode.OP_BOOLAND:
		e.dstack.PushBool(a != 0 && b != 0)
	case opcode.OP_BOOLOR:
		e.dstack.PushBool(a != 0 || b != 0)
	case opcode.OP_NUMEQUAL:
		e.dstack.PushBool(a == b)
	case opcode.OP_NUMNOTEQUAL:
		e.dstack.PushBool(a != b)
	case opcode.OP_LESSTHAN:
		e.dstack.PushBool(a < b)
	case opcode.OP_GREATERTHAN:
		e.dstack.PushBool(a > b)
	case opcode.OP_LESSTHANOREQUAL:
		e.dstack.PushBool(a <= b)
	case opcode.OP_GREATERTHANOREQUAL:
		e.dstack.PushBool(a >= b)
	case opcode.OP_MIN:
		if a < b {
			e.dstack.PushInt(a)
		} else {
			e.dstack.PushInt(b)
		}
	case opcode.OP_MAX:
		if a > b {
			e.dstack.PushInt(a)
		} else {
			e.dstack.PushInt(b)
		}
	}
	return nil
}

func (e *engine) execWithin() er.R {
	max, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	min, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	x, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	e.dstack.PushBool(x >= min && x < max)
	return nil
}

// execCheckLockTimeVerify implements BIP-65: the top stack item must be a
// locktime of the same kind (block height or Unix time) as tx.LockTime, and
// no greater than it; the input's sequence number must not be final.
func (e *engine) execCheckLockTimeVerify() er.R {
	if e.flags&ScriptVerifyCheckLockTimeVerify == 0 {
		return nil
	}
	n, err := e.dstack.PeekInt(0, 5)
	if err != nil {
		return err
	}
	if n < 0 {
		return ErrNegativeLockTime.Default()
	}

	const lockTimeThreshold = 500000000
	stackLockTime := int64(n)
	txLockTime := int64(e.tx.LockTime)
	if (stackLockTime < lockTimeThreshold) != (txLockTime < lockTimeThreshold) {
		return ErrUnsatisfiedLockTime.Detail("locktime kind (height vs time) mismatch")
	}
	if stackLockTime > txLockTime {
		return ErrUnsatisfiedLockTime.Detail("locktime not yet satisfied")
	}
	if e.tx.TxIn[e.txIdx].Sequence == 0xffffffff {
		return ErrUnsatisfiedLockTime.Detail("input sequence is final, locktime has no effect")
	}
	return nil
}

// execCheckSequenceVerify implements BIP-112/BIP-68 relative lock-time
// verification against the spending input's own sequence number.
func (e *engine) execCheckSequenceVerify() er.R {
	if e.flags&ScriptVerifyCheckSequenceVerify == 0 {
		return nil
	}
	n, err := e.dstack.PeekInt(0, 5)
	if err != nil {
		return err
	}
	if n < 0 {
		return ErrNegativeLockTime.Default()
	}

	const sequenceLockTimeDisabled = 1 << 31
	const sequenceLockTimeTypeMask = 1 << 22
	const sequenceLockTimeMask = 0x0000ffff

	sequence := int64(n)
	if sequence&sequenceLockTimeDisabled != 0 {
		return nil
	}

	txSequence := int64(e.tx.TxIn[e.txIdx].Sequence)
	if e.tx.Version < 2 {
		return ErrUnsatisfiedLockTime.Detail("CSV requires tx version >= 2")
	}
	if txSequence&sequenceLockTimeDisabled != 0 {
		return ErrUnsatisfiedLockTime.Detail("input sequence has relative locktime disabled")
	}
	if (sequence&sequenceLockTimeTypeMask) != (txSequence & sequenceLockTimeTypeMask) {
		return ErrUnsatisfiedLockTime.Detail("relative locktime kind mismatch")
	}
	if sequence&sequenceLockTimeMask > txSequence&sequenceLockTimeMask {
		return ErrUnsatisfiedLockTime.Detail("relative locktime not yet satisfied")
	}
	return nil
}

// subScriptForSigHash returns the portion of the currently executing script
// that a signature commits to: the script from the most recent executed
// OP_CODESEPARATOR onward, or the whole script if none has executed. The
// separators are not stripped here; CalcSignatureHash removes them for the
// legacy sighash. When the engine is executing a witness program, it instead
// returns the implicit or explicit witness script set up by
// executeWitnessProgram.
func (e *engine) subScriptForSigHash() []parsescript.ParsedOpcode {
	if e.witnessScript != nil {
		return e.witnessScript
	}
	script := e.scripts[e.scriptIdx]
	if e.lastCodeSep == 0 {
		return script
	}
	return script[e.lastCodeSep:]
}

func (e *engine) calcSigHash(hashType SigHashType) ([]byte, er.R) {
	subScript := e.subScriptForSigHash()
	if e.witnessScript != nil {
		return calcWitnessSignatureHash(subScript, hashType, e.tx, e.txIdx, e.inputAmount)
	}
	return CalcSignatureHash(subScript, hashType, e.tx, e.txIdx)
}

// execCheckSig implements OP_CHECKSIG/OP_CHECKSIGVERIFY.
func (e *engine) execCheckSig(verify bool) er.R {
	pkBytes, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSig, err := e.dstack.PopByteArray()
	if err != nil {
		return err
	}

	ok, verr := e.verifySignature(fullSig, pkBytes)
	if verr != nil {
		return verr
	}

	if verify {
		if !ok {
			return ErrCheckSigVerify.Default()
		}
		return nil
	}
	e.dstack.PushBool(ok)
	return nil
}

// verifySignature checks a single (signature||hashtype, pubkey) pair
// against the current sub-script. A signature that is not strict DER is an
// error; under NULLFAIL a non-empty signature that fails is an error as well.
// The S value is not checked for low-S.
func (e *engine) verifySignature(fullSig, pkBytes []byte) (bool, er.R) {
	if len(fullSig) == 0 {
		return false, nil
	}

	hashType := SigHashType(fullSig[len(fullSig)-1])
	sigBytes := fullSig[:len(fullSig)-1]

	sig, serr := btcec.ParseSignature(sigBytes)
	if serr != nil {
		if e.flags&ScriptVerifyNullFail != 0 {
			return false, ErrNullFail.Default()
		}
		return false, ErrSigFormat.Detail(serr.Message())
	}

	pubKey, perr := btcec.ParsePubKey(pkBytes)
	if perr != nil {
		return false, ErrPubKeyFormat.Detail(perr.Message())
	}

	hash, herr := e.calcSigHash(hashType)
	if herr != nil {
		return false, herr
	}

	valid := sig.Verify(hash, pubKey)
	if !valid && e.flags&ScriptVerifyNullFail != 0 && len(sigBytes) != 0 {
		return false, ErrNullFail.Default()
	}
	return valid, nil
}

// execCheckMultiSig implements OP_CHECKMULTISIG/OP_CHECKMULTISIGVERIFY,
// matching the original off-by-one quirk that consumes one extra, unused
// stack item (spec does not redesign this; it is part of the wire-level
// script semantics every implementation must reproduce for consensus).
func (e *engine) execCheckMultiSig(verify bool) er.R {
	numPubKeys, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	if numPubKeys < 0 || numPubKeys.Int32() > MaxPubKeysPerMultiSig {
		return ErrInvalidOpcode.Detail("OP_CHECKMULTISIG pubkey count out of range")
	}
	numKeys := int(numPubKeys.Int32())

	pubKeys := make([][]byte, numKeys)
	for i := numKeys - 1; i >= 0; i-- {
		pk, err := e.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys[i] = pk
	}

	numSigs, err := e.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	if numSigs < 0 || numSigs.Int32() > int32(numKeys) {
		return ErrInvalidOpcode.Detail("OP_CHECKMULTISIG signature count out of range")
	}
	numSignatures := int(numSigs.Int32())

	sigs := make([][]byte, numSignatures)
	for i := numSignatures - 1; i >= 0; i-- {
		s, err := e.dstack.PopByteArray()
		if err != nil {
			return err
		}
		sigs[i] = s
	}

	// Historical Satoshi-client bug: one extra item is popped and ignored.
	if _, err := e.dstack.PopByteArray(); err != nil {
		return err
	}

	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < numSignatures {
		if keyIdx >= numKeys {
			success = false
			break
		}
		ok, verr := e.verifySignature(sigs[sigIdx], pubKeys[keyIdx])
		if verr != nil {
			return verr
		}
		if ok {
			sigIdx++
		}
		keyIdx++
	}
	if sigIdx < numSignatures {
		success = false
	}

	if verify {
		if !success {
			return ErrCheckMultiSigVerify.Default()
		}
		return nil
	}
	e.dstack.PushBool(success)
	return nil
}

// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the CRW transaction script language: a
// stack-based virtual machine that determines the conditions under which
// an output may be spent. The single externally visible operation is
// Verify, which checks a script_sig/script_pubkey/witness pair against a
// transaction input.
package txscript

import (
	"bytes"
	"crypto/sha256"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/txscript/opcode"
	"github.com/defunctec/crownj/txscript/parsescript"
	"github.com/defunctec/crownj/wire"
)

// engine holds the execution state for one script verification.
type engine struct {
	flags         ScriptFlags
	tx            *wire.MsgTx
	txIdx         int
	inputAmount   int64
	witness       wire.TxWitness

	scripts       [][]parsescript.ParsedOpcode
	scriptIdx     int
	opIdx         int
	lastCodeSep   int
	numOps        int

	dstack  stack
	astack  stack

	condStack []int

	// witnessScript is non-nil while executing inside a segwit witness
	// program (P2WPKH's implicit script, or a P2WSH witness script),
	// signalling execCheckSig/execCheckMultiSig to use the BIP-143 sighash
	// algorithm and commit to this script instead of the outer one.
	witnessScript []parsescript.ParsedOpcode
}

const (
	condFalse = 0
	condTrue  = 1
	condSkip  = 2
)

// Verify runs the full spend-authorization check for one transaction
// input: the push-only scriptSig check happens when the engine is built,
// and P2SH and P2WPKH/P2WSH routing happen inside Execute.
func Verify(scriptSig, scriptPubKey []byte, witness wire.TxWitness, tx *wire.MsgTx, inputIndex int, flags ScriptFlags, inputAmount int64) er.R {
	e, err := newEngine(scriptSig, scriptPubKey, witness, tx, inputIndex, flags, inputAmount)
	if err != nil {
		return err
	}
	return e.Execute()
}

func newEngine(scriptSig, scriptPubKey []byte, witness wire.TxWitness, tx *wire.MsgTx, inputIndex int, flags ScriptFlags, inputAmount int64) (*engine, er.R) {
	if len(scriptSig) > MaxScriptSize || len(scriptPubKey) > MaxScriptSize {
		return nil, ErrScriptTooLong.Default()
	}

	sigPops, err := parsescript.ParseScript(scriptSig)
	if err != nil {
		return nil, err
	}
	if flags&ScriptBip16 != 0 && !parsescript.IsPushOnly(sigPops) {
		return nil, ErrP2SHPushOnly.Default()
	}

	pkPops, err := parsescript.ParseScript(scriptPubKey)
	if err != nil {
		return nil, err
	}

	e := &engine{
		flags:       flags,
		tx:          tx,
		txIdx:       inputIndex,
		inputAmount: inputAmount,
		witness:     witness,
		scripts:     [][]parsescript.ParsedOpcode{sigPops, pkPops},
	}
	return e, nil
}

// Execute runs scriptSig then scriptPubKey and checks the resulting stack,
// routing through P2SH or witness-program verification as appropriate.
func (e *engine) Execute() er.R {
	// Step 1: execute script_sig on an empty stack.
	if err := e.executeScript(0); err != nil {
		return err
	}

	// Step 2: copy the stack, then execute script_pubkey.
	stackCopy := append([][]byte(nil), e.dstack.stk...)
	if err := e.executeScript(1); err != nil {
		return err
	}

	// Step 3: top must be truthy.
	v, err := e.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return ErrEvalFalse.Default()
	}

	pkPops := e.scripts[1]

	// Step 5: segregated witness routing takes priority over P2SH, since a
	// witness program can itself be nested beneath a P2SH wrapper.
	isWitness, witnessVersion, witnessProgram := extractWitnessProgram(pkPops)
	if isWitness && e.flags&ScriptVerifyWitness != 0 {
		if len(e.scripts[0]) != 0 {
			return ErrWitnessMalformed.Detail("native witness spend must have an empty scriptSig")
		}
		return e.executeWitnessProgram(witnessVersion, witnessProgram)
	}

	// Step 4: P2SH.
	if e.flags&ScriptBip16 != 0 && isScriptHash(pkPops) {
		return e.executeP2SH(stackCopy)
	}

	if e.flags&ScriptVerifyCleanStack != 0 && e.dstack.Depth() != 0 {
		return ErrCleanStack.Default()
	}
	return nil
}

// executeP2SH pops the serialized redeem script from the copied pre-pubkey
// stack and executes it against the remaining stack items.
func (e *engine) executeP2SH(stackCopy [][]byte) er.R {
	if len(stackCopy) == 0 {
		return ErrEvalFalse.Detail("p2sh scriptSig pushed no redeem script")
	}
	redeemScriptBytes := stackCopy[len(stackCopy)-1]
	stackCopy = stackCopy[:len(stackCopy)-1]

	redeemPops, err := parsescript.ParseScript(redeemScriptBytes)
	if err != nil {
		return err
	}

	// If the redeem script is itself a witness program, route it through
	// BIP-143 verification: P2SH-wrapped segwit requires scriptSig to be
	// exactly the one push of the redeem script, and the witness items still
	// come from the input's wire witness field, not from the script stack.
	if isW, wv, wp := extractWitnessProgram(redeemPops); isW && e.flags&ScriptVerifyWitness != 0 {
		if len(stackCopy) != 0 {
			return ErrWitnessMalformed.Detail("p2sh-segwit scriptSig must push only the redeem script")
		}
		return e.executeWitnessProgram(wv, wp)
	}

	e.dstack.stk = stackCopy
	e.numOps = 0
	e.lastCodeSep = 0
	e.condStack = nil
	if err := e.run(redeemPops); err != nil {
		return err
	}
	v, err := e.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return ErrEvalFalse.Default()
	}
	if e.flags&ScriptVerifyCleanStack != 0 && e.dstack.Depth() != 0 {
		return ErrCleanStack.Default()
	}
	return nil
}

func (e *engine) executeScript(idx int) er.R {
	e.scriptIdx = idx
	e.numOps = 0
	e.lastCodeSep = 0
	e.condStack = nil
	return e.run(e.scripts[idx])
}

func (e *engine) run(pops []parsescript.ParsedOpcode) er.R {
	for i, pop := range pops {
		e.opIdx = i

		if pop.Opcode > opcode.OP_16 {
			e.numOps++
			if e.numOps > MaxOpsPerScript {
				return ErrTooManyOperations.Default()
			}
		}

		executing := e.shouldExec(pop)

		switch {
		case pop.Opcode == opcode.OP_IF || pop.Opcode == opcode.OP_NOTIF:
			if err := e.execIf(pop, executing); err != nil {
				return err
			}
			continue
		case pop.Opcode == opcode.OP_ELSE:
			if err := e.execElse(); err != nil {
				return err
			}
			continue
		case pop.Opcode == opcode.OP_ENDIF:
			if err := e.execEndif(); err != nil {
				return err
			}
			continue
		}

		if !executing {
			continue
		}

		if pop.Opcode == opcode.OP_CODESEPARATOR {
			e.lastCodeSep = i
			continue
		}

		if isPushOpcode(pop.Opcode) {
			if err := e.execPush(pop); err != nil {
				return err
			}
		} else if err := e.execOp(pop.Opcode); err != nil {
			return err
		}

		if e.dstack.Depth()+e.astack.Depth() > maxStackSize {
			return ErrStackDepth.Default()
		}
	}

	if len(e.condStack) != 0 {
		return ErrUnbalancedConditional.Default()
	}
	return nil
}

func (e *engine) shouldExec(pop parsescript.ParsedOpcode) bool {
	for _, c := range e.condStack {
		if c != condTrue {
			return false
		}
	}
	return true
}

func (e *engine) execIf(pop parsescript.ParsedOpcode, executing bool) er.R {
	cond := condSkip
	if executing {
		v, err := e.dstack.PopBool()
		if err != nil {
			return err
		}
		if pop.Opcode == opcode.OP_NOTIF {
			v = !v
		}
		if v {
			cond = condTrue
		} else {
			cond = condFalse
		}
	}
	e.condStack = append(e.condStack, cond)
	return nil
}

func (e *engine) execElse() er.R {
	if len(e.condStack) == 0 {
		return ErrUnbalancedConditional.Default()
	}
	idx := len(e.condStack) - 1
	switch e.condStack[idx] {
	case condTrue:
		e.condStack[idx] = condFalse
	case condFalse:
		e.condStack[idx] = condTrue
	}
	return nil
}

func (e *engine) execEndif() er.R {
	if len(e.condStack) == 0 {
		return ErrUnbalancedConditional.Default()
	}
	e.condStack = e.condStack[:len(e.condStack)-1]
	return nil
}

// isPushOpcode reports whether op is one of the data-push opcodes (OP_0,
// OP_DATA_1-75, OP_PUSHDATA1-4, OP_1NEGATE, OP_1-OP_16). OP_RESERVED sits
// numerically between OP_1NEGATE and OP_1 but is not a push opcode, so it
// must be excluded and routed to execOp's reserved-opcode handling.
func isPushOpcode(op byte) bool {
	if op <= opcode.OP_PUSHDATA4 || op == opcode.OP_1NEGATE {
		return true
	}
	return op >= opcode.OP_1 && op <= opcode.OP_16
}

func (e *engine) execPush(pop parsescript.ParsedOpcode) er.R {
	if opcode.IsSmallInt(pop.Opcode) {
		e.dstack.PushInt(scriptNum(opcode.AsSmallInt(pop.Opcode)))
		return nil
	}
	if pop.Opcode == opcode.OP_1NEGATE {
		e.dstack.PushInt(-1)
		return nil
	}
	if len(pop.Data) > MaxScriptElementSize {
		return ErrScriptTooLong.Detail("pushed data exceeds max element size")
	}
	e.dstack.PushByteArray(pop.Data)
	return nil
}

// isScriptHash reports whether pops is the canonical P2SH pattern:
// OP_HASH160 <20-byte-hash> OP_EQUAL.
func isScriptHash(pops []parsescript.ParsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].Opcode == opcode.OP_HASH160 &&
		pops[1].Opcode == opcode.OP_DATA_1+19 &&
		len(pops[1].Data) == 20 &&
		pops[2].Opcode == opcode.OP_EQUAL
}

// extractWitnessProgram reports whether pops is a witness program: a single
// small-int version push followed by a single 2-40 byte data push (BIP-141).
func extractWitnessProgram(pops []parsescript.ParsedOpcode) (bool, int, []byte) {
	if len(pops) != 2 {
		return false, 0, nil
	}
	if !opcode.IsSmallInt(pops[0].Opcode) {
		return false, 0, nil
	}
	dataLen := len(pops[1].Data)
	if pops[1].Opcode > opcode.OP_16 || dataLen < 2 || dataLen > 40 {
		return false, 0, nil
	}
	return true, opcode.AsSmallInt(pops[0].Opcode), pops[1].Data
}

// executeWitnessProgram runs a segwit witness program against the input's
// wire witness stack. Version 0 defines P2WPKH (20-byte
// program: hash of a pubkey) and P2WSH (32-byte program: sha256 of a
// witness script); any other version is reserved for future soft forks and
// is accepted unconditionally, per BIP-141's forward compatibility rule.
// Callers are responsible for verifying the scriptSig constraint (empty for
// native segwit, a single redeem-script push for P2SH-wrapped segwit).
func (e *engine) executeWitnessProgram(version int, program []byte) er.R {
	witnessStack := [][]byte(e.witness)

	if version != 0 {
		return nil
	}

	switch len(program) {
	case 20:
		if len(witnessStack) != 2 {
			return ErrWitnessProgramMismatch.Detail("P2WPKH witness must have exactly 2 items")
		}
		pubKeyHash := chainhash.Hash160(witnessStack[1])
		if !bytes.Equal(pubKeyHash, program) {
			return ErrWitnessProgramMismatch.Detail("P2WPKH witness pubkey does not match program")
		}
		e.dstack.stk = append([][]byte(nil), witnessStack...)
		e.witnessScript = p2pkhScriptForHash160(program)
		e.numOps, e.lastCodeSep, e.condStack = 0, 0, nil
		return e.finishWitnessExec(e.witnessScript)

	case 32:
		if len(witnessStack) == 0 {
			return ErrWitnessProgramMismatch.Detail("P2WSH witness must push a witness script")
		}
		witnessScriptBytes := witnessStack[len(witnessStack)-1]
		sum := sha256.Sum256(witnessScriptBytes)
		if !bytes.Equal(sum[:], program) {
			return ErrWitnessProgramMismatch.Detail("P2WSH witness script does not match program")
		}
		pops, err := parsescript.ParseScript(witnessScriptBytes)
		if err != nil {
			return err
		}
		e.dstack.stk = append([][]byte(nil), witnessStack[:len(witnessStack)-1]...)
		e.witnessScript = pops
		e.numOps, e.lastCodeSep, e.condStack = 0, 0, nil
		return e.finishWitnessExec(pops)

	default:
		return ErrWitnessMalformed.Detail("witness program must be 20 or 32 bytes")
	}
}

// finishWitnessExec runs pops against the engine's current stack (already
// primed by executeWitnessProgram) and enforces the same truthy-top/clean-
// stack rules as the base execution path.
func (e *engine) finishWitnessExec(pops []parsescript.ParsedOpcode) er.R {
	if err := e.run(pops); err != nil {
		return err
	}
	v, err := e.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return ErrEvalFalse.Default()
	}
	if e.dstack.Depth() != 0 {
		return ErrCleanStack.Default()
	}
	return nil
}

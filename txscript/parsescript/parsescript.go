// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parsescript splits a raw script byte string into a sequence of
// ParsedOpcodes, the unit the engine and the standard-pattern matcher both
// operate on.
package parsescript

import (
	"encoding/binary"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/txscript/opcode"
)

// ErrMalformedScript is returned when a script's push-data length runs past
// the end of the script.
var ErrMalformedScript = er.NewErrorType("parsescript").Code("ErrMalformedScript")

// ParsedOpcode represents an opcode that has been parsed and includes any
// potential data associated with it.
type ParsedOpcode struct {
	Opcode byte
	Data   []byte
}

// dataLen returns, for the push opcode op at offset, the length of the
// pushed data and the number of header bytes before it, counting the opcode
// byte itself (1 for OP_DATA_N, 2/3/5 for OP_PUSHDATA1/2/4). Non-push
// opcodes give zero for both.
func dataLen(op byte, script []byte, offset int) (int, int, er.R) {
	switch {
	case op >= opcode.OP_DATA_1 && op <= opcode.OP_DATA_75:
		return int(op), 1, nil
	case op == opcode.OP_PUSHDATA1:
		if offset+1 > len(script) {
			return 0, 0, ErrMalformedScript.Detail("OP_PUSHDATA1 missing length byte")
		}
		return int(script[offset]), 2, nil
	case op == opcode.OP_PUSHDATA2:
		if offset+2 > len(script) {
			return 0, 0, ErrMalformedScript.Detail("OP_PUSHDATA2 missing length bytes")
		}
		return int(binary.LittleEndian.Uint16(script[offset : offset+2])), 3, nil
	case op == opcode.OP_PUSHDATA4:
		if offset+4 > len(script) {
			return 0, 0, ErrMalformedScript.Detail("OP_PUSHDATA4 missing length bytes")
		}
		return int(binary.LittleEndian.Uint32(script[offset : offset+4])), 5, nil
	default:
		return 0, 0, nil
	}
}

// ParseScript preparses the script in bytes into a list of ParsedOpcodes
// while applying a number of sanity checks.
func ParseScript(script []byte) ([]ParsedOpcode, er.R) {
	var parsed []ParsedOpcode
	i := 0
	for i < len(script) {
		op := script[i]
		i++

		length, lenBytes, err := dataLen(op, script, i)
		if err != nil {
			return nil, err
		}

		if lenBytes > 0 {
			// lenBytes includes the opcode itself already consumed for
			// OP_DATA_N (lenBytes==1, no extra length header bytes to
			// skip) and the extra length-header bytes for PUSHDATA*.
			headerExtra := lenBytes - 1
			i += headerExtra
			if i+length > len(script) {
				return nil, ErrMalformedScript.Detail("push data exceeds script length")
			}
			data := make([]byte, length)
			copy(data, script[i:i+length])
			parsed = append(parsed, ParsedOpcode{Opcode: op, Data: data})
			i += length
			continue
		}

		parsed = append(parsed, ParsedOpcode{Opcode: op})
	}
	return parsed, nil
}

// IsPushOnly returns true if the script only contains push operations, a
// requirement enforced on scriptSig by standardness and, for some callers,
// by consensus flags.
func IsPushOnly(pops []ParsedOpcode) bool {
	for _, pop := range pops {
		if pop.Opcode > opcode.OP_16 {
			return false
		}
	}
	return true
}

// IsUnspendable returns whether the passed public key script is
// unspendable, or guaranteed to fail at execution. This allows inputs to be
// pruned instantly when entering the UTXO set.
func IsUnspendable(pkScript []byte) bool {
	pops, err := ParseScript(pkScript)
	if err != nil {
		return true
	}
	return len(pops) > 0 && pops[0].Opcode == opcode.OP_RETURN
}

// RemoveOpcode filters every instance of the opcode from the given script
// (used to strip OP_CODESEPARATOR before hashing, per the legacy sighash
// algorithm).
func RemoveOpcode(pops []ParsedOpcode, op byte) []ParsedOpcode {
	out := make([]ParsedOpcode, 0, len(pops))
	for _, pop := range pops {
		if pop.Opcode != op {
			out = append(out, pop)
		}
	}
	return out
}

// UnparseScript reassembles a script from its parsed opcode list, used
// after RemoveOpcode strips OP_CODESEPARATOR for the legacy sighash
// algorithm. Every push retains its original opcode byte (OP_DATA_N or
// OP_PUSHDATAn), so the reassembled bytes are byte-for-byte identical to
// the source for any script this package itself parsed.
func UnparseScript(pops []ParsedOpcode) ([]byte, er.R) {
	var script []byte
	for _, pop := range pops {
		script = append(script, pop.Opcode)
		switch {
		case pop.Opcode >= opcode.OP_DATA_1 && pop.Opcode <= opcode.OP_DATA_75:
			script = append(script, pop.Data...)
		case pop.Opcode == opcode.OP_PUSHDATA1:
			script = append(script, byte(len(pop.Data)))
			script = append(script, pop.Data...)
		case pop.Opcode == opcode.OP_PUSHDATA2:
			var lb [2]byte
			binary.LittleEndian.PutUint16(lb[:], uint16(len(pop.Data)))
			script = append(script, lb[:]...)
			script = append(script, pop.Data...)
		case pop.Opcode == opcode.OP_PUSHDATA4:
			var lb [4]byte
			binary.LittleEndian.PutUint32(lb[:], uint32(len(pop.Data)))
			script = append(script, lb[:]...)
			script = append(script, pop.Data...)
		}
	}
	return script, nil
}

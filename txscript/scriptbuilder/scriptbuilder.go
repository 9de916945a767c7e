// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptbuilder provides a facility for building custom scripts.
// It allows you to push opcodes, ints, and data while respecting canonical
// encoding. In general it is much easier to use this over manually
// crafting byte slices, however, automated checks are only performed for
// script size and not for general correctness.
package scriptbuilder

import (
	"encoding/binary"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/txscript/opcode"
)

// MaxScriptSize is the maximum allowed length of a raw script.
const MaxScriptSize = 10000

var errScriptTooLong = er.NewErrorType("scriptbuilder").Code("ErrScriptTooLong")

// ScriptBuilder provides a facility for building custom scripts. It allows
// you to push opcodes, ints, and data while respecting canonical encoding.
type ScriptBuilder struct {
	script []byte
	err    er.R
}

// NewScriptBuilder returns a new instance of a script builder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, 500)}
}

// AddOp pushes the passed opcode to the end of the script.
func (b *ScriptBuilder) AddOp(op byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(b.script)+1 > MaxScriptSize {
		b.err = errScriptTooLong.Detail("adding an opcode would exceed the max script size")
		return b
	}
	b.script = append(b.script, op)
	return b
}

// AddInt64 pushes the passed integer to the end of the script using the
// minimal number of bytes via the canonical integer push rules.
func (b *ScriptBuilder) AddInt64(val int64) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if val == 0 {
		return b.AddOp(opcode.OP_0)
	}
	if val == -1 || (val >= 1 && val <= 16) {
		if val == -1 {
			return b.AddOp(opcode.OP_1NEGATE)
		}
		return b.AddOp(byte(opcode.OP_1 - 1 + val))
	}
	return b.AddData(scriptNum(val).Bytes())
}

// AddData pushes the passed data to the end of the script, choosing the
// shortest canonical push opcode for its length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if err := b.addDataInternal(data); err != nil {
		b.err = err
	}
	return b
}

func (b *ScriptBuilder) addDataInternal(data []byte) er.R {
	dataLen := len(data)
	var addl int
	switch {
	case dataLen == 0 || (dataLen == 1 && data[0] == 0):
		addl = 1
	case dataLen < opcode.OP_PUSHDATA1:
		addl = 1 + dataLen
	case dataLen <= 0xff:
		addl = 2 + dataLen
	case dataLen <= 0xffff:
		addl = 3 + dataLen
	default:
		addl = 5 + dataLen
	}
	if len(b.script)+addl > MaxScriptSize {
		return errScriptTooLong.Detail("adding this data push would exceed the max script size")
	}

	switch {
	case dataLen == 0:
		b.script = append(b.script, opcode.OP_0)
		return nil
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		b.script = append(b.script, byte(opcode.OP_1-1)+data[0])
		return nil
	case dataLen == 1 && data[0] == 0x81:
		b.script = append(b.script, opcode.OP_1NEGATE)
		return nil
	case dataLen < opcode.OP_PUSHDATA1:
		b.script = append(b.script, byte(opcode.OP_DATA_1-1)+byte(dataLen))
	case dataLen <= 0xff:
		b.script = append(b.script, opcode.OP_PUSHDATA1, byte(dataLen))
	case dataLen <= 0xffff:
		var lb [2]byte
		binary.LittleEndian.PutUint16(lb[:], uint16(dataLen))
		b.script = append(b.script, opcode.OP_PUSHDATA2)
		b.script = append(b.script, lb[:]...)
	default:
		var lb [4]byte
		binary.LittleEndian.PutUint32(lb[:], uint32(dataLen))
		b.script = append(b.script, opcode.OP_PUSHDATA4)
		b.script = append(b.script, lb[:]...)
	}
	b.script = append(b.script, data...)
	return nil
}

// Reset resets the script so it has no content.
func (b *ScriptBuilder) Reset() *ScriptBuilder {
	b.script = b.script[0:0]
	b.err = nil
	return b
}

// Script returns the currently built script; any deferred error (e.g. from
// exceeding MaxScriptSize) is surfaced here.
func (b *ScriptBuilder) Script() ([]byte, er.R) {
	if b.err != nil {
		return nil, b.err
	}
	return b.script, nil
}

// scriptNum is the minimal little-endian, sign-magnitude encoding used for
// numeric script operands.
type scriptNum int64

func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	m := n
	if isNegative {
		m = -m
	}

	var result []byte
	for m > 0 {
		result = append(result, byte(m&0xff))
		m >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		if isNegative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}
	return result
}

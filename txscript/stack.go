// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/defunctec/crownj/btcutil/er"
)

var errStackUnderflow = er.NewErrorType("txscript").Code("ErrStackUnderflow")

// maxStackSize is the maximum combined height of the stack and alt stack
// during execution.
const maxStackSize = 1000

// stack represents the primitive byte-slice stack used by the script
// engine, with a few convenience accessors for treating the top elements
// as booleans or script numbers.
type stack struct {
	stk [][]byte
}

func (s *stack) Depth() int32 { return int32(len(s.stk)) }

func (s *stack) PushByteArray(so []byte) { s.stk = append(s.stk, so) }

func (s *stack) PushInt(n scriptNum) { s.PushByteArray(n.Bytes()) }

func (s *stack) PushBool(val bool) {
	if val {
		s.PushByteArray([]byte{1})
	} else {
		s.PushByteArray(nil)
	}
}

func (s *stack) PopByteArray() ([]byte, er.R) {
	if len(s.stk) == 0 {
		return nil, errStackUnderflow.Default()
	}
	v := s.stk[len(s.stk)-1]
	s.stk = s.stk[:len(s.stk)-1]
	return v, nil
}

func (s *stack) PopInt(maxNumLen int) (scriptNum, er.R) {
	v, err := s.PopByteArray()
	if err != nil {
		return 0, err
	}
	return makeScriptNum(v, true, maxNumLen)
}

func (s *stack) PopBool() (bool, er.R) {
	v, err := s.PopByteArray()
	if err != nil {
		return false, err
	}
	return asBool(v), nil
}

// PeekByteArray returns the idx'th entry from the top of the stack without
// removing it, where idx 0 is the top.
func (s *stack) PeekByteArray(idx int32) ([]byte, er.R) {
	sz := int32(len(s.stk))
	if idx < 0 || idx >= sz {
		return nil, errStackUnderflow.Default()
	}
	return s.stk[sz-idx-1], nil
}

func (s *stack) PeekBool(idx int32) (bool, er.R) {
	v, err := s.PeekByteArray(idx)
	if err != nil {
		return false, err
	}
	return asBool(v), nil
}

func (s *stack) PeekInt(idx int32, maxNumLen int) (scriptNum, er.R) {
	v, err := s.PeekByteArray(idx)
	if err != nil {
		return 0, err
	}
	return makeScriptNum(v, true, maxNumLen)
}

// dropAt removes the idx'th entry from the top of the stack, where idx 0 is
// the top (used for OP_NIP: drop the second-from-top item).
func (s *stack) dropAt(idx int32) er.R {
	sz := int32(len(s.stk))
	if idx < 0 || idx >= sz {
		return errStackUnderflow.Default()
	}
	pos := sz - idx - 1
	s.stk = append(s.stk[:pos], s.stk[pos+1:]...)
	return nil
}

// Nip implements OP_NIP: remove the second-from-top stack item.
func (s *stack) Nip() er.R { return s.dropAt(1) }

// Drop implements OP_DROP.
func (s *stack) Drop() er.R {
	_, err := s.PopByteArray()
	return err
}

// Dup implements OP_DUP.
func (s *stack) Dup() er.R {
	v, err := s.PeekByteArray(0)
	if err != nil {
		return err
	}
	s.PushByteArray(v)
	return nil
}

// Over implements OP_OVER: copy the second-from-top item to the top.
func (s *stack) Over() er.R {
	v, err := s.PeekByteArray(1)
	if err != nil {
		return err
	}
	s.PushByteArray(v)
	return nil
}

// Swap implements OP_SWAP: exchange the top two stack items.
func (s *stack) Swap() er.R {
	sz := len(s.stk)
	if sz < 2 {
		return errStackUnderflow.Default()
	}
	s.stk[sz-1], s.stk[sz-2] = s.stk[sz-2], s.stk[sz-1]
	return nil
}

// Rot implements OP_ROT: rotate the top three stack items left.
func (s *stack) Rot() er.R {
	sz := len(s.stk)
	if sz < 3 {
		return errStackUnderflow.Default()
	}
	s.stk[sz-3], s.stk[sz-2], s.stk[sz-1] = s.stk[sz-2], s.stk[sz-1], s.stk[sz-3]
	return nil
}

// Tuck implements OP_TUCK: copy the top item to below the second item.
func (s *stack) Tuck() er.R {
	top, err := s.PeekByteArray(0)
	if err != nil {
		return err
	}
	sz := len(s.stk)
	if sz < 2 {
		return errStackUnderflow.Default()
	}
	s.stk = append(s.stk, nil)
	copy(s.stk[sz-1:], s.stk[sz-2:])
	s.stk[sz-2] = top
	return nil
}

// PickN implements OP_PICK: push a copy of the idx'th item from the top
// (excluding the index itself, which the opcode handler has already
// popped).
func (s *stack) PickN(idx int32) er.R {
	v, err := s.PeekByteArray(idx)
	if err != nil {
		return err
	}
	s.PushByteArray(v)
	return nil
}

// RollN implements OP_ROLL: move the idx'th item from the top to the top.
func (s *stack) RollN(idx int32) er.R {
	v, err := s.PeekByteArray(idx)
	if err != nil {
		return err
	}
	if err := s.dropAt(idx); err != nil {
		return err
	}
	s.PushByteArray(v)
	return nil
}

// asBool interprets a stack item as the script language's notion of a
// boolean: any non-zero value that is not negative zero is true.
func asBool(v []byte) bool {
	for i := range v {
		if v[i] != 0 {
			if i == len(v)-1 && v[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

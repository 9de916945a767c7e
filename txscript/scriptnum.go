// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "github.com/defunctec/crownj/btcutil/er"

// defaultScriptNumLen is the default number of bytes data being interpreted
// as an integer may be.
const defaultScriptNumLen = 4

var errNumOutOfRange = er.NewErrorType("txscript").Code("ErrNumberTooBig")
var errMinimalData = er.NewErrorType("txscript").Code("ErrMinimalData")

// scriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by
// consensus: numbers are little-endian, sign-magnitude encoded, and must
// be encoded using the minimum number of bytes.
type scriptNum int64

// checkMinimalDataEncoding returns whether or not the passed byte array
// adheres to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) er.R {
	if len(v) == 0 {
		return nil
	}
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			return errMinimalData.Detail("numeric value encoded with superfluous trailing zero byte")
		}
	}
	return nil
}

// makeScriptNum interprets v as a little-endian sign-magnitude integer,
// failing if v exceeds maxNumLen or (when requireMinimal) is not minimally
// encoded.
func makeScriptNum(v []byte, requireMinimal bool, maxNumLen int) (scriptNum, er.R) {
	if len(v) > maxNumLen {
		return 0, errNumOutOfRange.Detail("numeric value exceeds max allowed length")
	}
	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}
	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}

	if v[len(v)-1]&0x80 != 0 {
		result &^= 0x80 << uint8(8*(len(v)-1))
		return scriptNum(-result), nil
	}
	return scriptNum(result), nil
}

// Bytes returns the minimally-encoded little-endian, sign-magnitude byte
// representation of the number.
func (n scriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	m := int64(n)
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

// Int32 returns the script number clamped to the int32 range.
func (n scriptNum) Int32() int32 {
	v := int64(n)
	if v > int64(1<<31-1) {
		return 1<<31 - 1
	}
	if v < int64(-(1 << 31)) {
		return -(1 << 31)
	}
	return int32(v)
}

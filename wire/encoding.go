// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// ErrMalformedMessage is the error code every codec failure in this package
// is tagged with.
var ErrMalformedMessage = er.NewErrorType("wire").Code("ErrMalformedMessage")

func messageError(fn, desc string) er.R {
	return ErrMalformedMessage.Detail(fn + ": " + desc)
}

type endianness bool

const (
	littleEndian endianness = false
	bigEndian    endianness = true
)

// binarySerializer provides fixed-width integer decode/encode helpers
// without the per-call allocation of binary.Read/Write's reflection path.
type binarySerializerType struct{}

var binarySerializer binarySerializerType

func (binarySerializerType) Uint8(r io.Reader) (uint8, er.R) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	return b[0], nil
}

func (binarySerializerType) Uint16(r io.Reader, e endianness) (uint16, er.R) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	if e == bigEndian {
		return binary.BigEndian.Uint16(b[:]), nil
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (binarySerializerType) Uint32(r io.Reader, e endianness) (uint32, er.R) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	if e == bigEndian {
		return binary.BigEndian.Uint32(b[:]), nil
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (binarySerializerType) Uint64(r io.Reader, e endianness) (uint64, er.R) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	if e == bigEndian {
		return binary.BigEndian.Uint64(b[:]), nil
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (binarySerializerType) PutUint8(w io.Writer, v uint8) er.R {
	_, err := w.Write([]byte{v})
	return er.E(err)
}

func (binarySerializerType) PutUint16(w io.Writer, e endianness, v uint16) er.R {
	var b [2]byte
	if e == bigEndian {
		binary.BigEndian.PutUint16(b[:], v)
	} else {
		binary.LittleEndian.PutUint16(b[:], v)
	}
	_, err := w.Write(b[:])
	return er.E(err)
}

func (binarySerializerType) PutUint32(w io.Writer, e endianness, v uint32) er.R {
	var b [4]byte
	if e == bigEndian {
		binary.BigEndian.PutUint32(b[:], v)
	} else {
		binary.LittleEndian.PutUint32(b[:], v)
	}
	_, err := w.Write(b[:])
	return er.E(err)
}

func (binarySerializerType) PutUint64(w io.Writer, e endianness, v uint64) er.R {
	var b [8]byte
	if e == bigEndian {
		binary.BigEndian.PutUint64(b[:], v)
	} else {
		binary.LittleEndian.PutUint64(b[:], v)
	}
	_, err := w.Write(b[:])
	return er.E(err)
}

// readElement reads the next sequence of bytes from r using the data type
// encoded in element. This is only used for bare scalar fields; compound
// types each have their own read*/write* helper.
func readElement(r io.Reader, element interface{}) er.R {
	switch e := element.(type) {
	case *uint32:
		v, err := binarySerializer.Uint32(r, littleEndian)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *int32:
		v, err := binarySerializer.Uint32(r, littleEndian)
		if err != nil {
			return err
		}
		*e = int32(v)
		return nil
	case *uint64:
		v, err := binarySerializer.Uint64(r, littleEndian)
		if err != nil {
			return err
		}
		*e = v
		return nil
	case *int64:
		v, err := binarySerializer.Uint64(r, littleEndian)
		if err != nil {
			return err
		}
		*e = int64(v)
		return nil
	case *bool:
		v, err := binarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = v != 0
		return nil
	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return er.E(err)
	default:
		return er.Errorf("readElement: unsupported type %T", element)
	}
}

// VarIntSerializeSize returns the number of bytes it would take to encode x
// as a variable length integer.
func VarIntSerializeSize(x uint64) int {
	if x < 0xfd {
		return 1
	}
	if x <= 0xffff {
		return 3
	}
	if x <= 0xffffffff {
		return 5
	}
	return 9
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64.
func ReadVarInt(r io.Reader, pver uint32) (uint64, er.R) {
	discriminant, err := binarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}
	switch discriminant {
	case 0xff:
		v, err := binarySerializer.Uint64(r, littleEndian)
		if err != nil {
			return 0, err
		}
		if v < 0x100000000 {
			return 0, messageError("ReadVarInt", "non-canonical varint (9-byte form for a small value)")
		}
		return v, nil
	case 0xfe:
		v, err := binarySerializer.Uint32(r, littleEndian)
		if err != nil {
			return 0, err
		}
		if v < 0x10000 {
			return 0, messageError("ReadVarInt", "non-canonical varint (5-byte form for a small value)")
		}
		return uint64(v), nil
	case 0xfd:
		v, err := binarySerializer.Uint16(r, littleEndian)
		if err != nil {
			return 0, err
		}
		if v < 0xfd {
			return 0, messageError("ReadVarInt", "non-canonical varint (3-byte form for a small value)")
		}
		return uint64(v), nil
	default:
		return uint64(discriminant), nil
	}
}

// WriteVarInt serializes x to w using the minimal-size variable length
// integer encoding.
func WriteVarInt(w io.Writer, pver uint32, x uint64) er.R {
	if x < 0xfd {
		return binarySerializer.PutUint8(w, uint8(x))
	}
	if x <= 0xffff {
		if err := binarySerializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		return binarySerializer.PutUint16(w, littleEndian, uint16(x))
	}
	if x <= 0xffffffff {
		if err := binarySerializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return binarySerializer.PutUint32(w, littleEndian, uint32(x))
	}
	if err := binarySerializer.PutUint8(w, 0xff); err != nil {
		return err
	}
	return binarySerializer.PutUint64(w, littleEndian, x)
}

// MaxVarIntPayload is the maximum payload size for a variable length
// integer.
const MaxVarIntPayload = 9

// ReadVarBytes reads a variable length byte array, prefixed by its
// compact-size length, failing if the length exceeds maxAllowed.
func ReadVarBytes(r io.Reader, pver uint32, maxAllowed uint32, fieldName string) ([]byte, er.R) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		return nil, messageError("ReadVarBytes", fieldName+" exceeds max allowed size")
	}
	b := make([]byte, count)
	if _, errr := io.ReadFull(r, b); errr != nil {
		return nil, er.E(errr)
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array, prefixed by its
// compact-size length.
func WriteVarBytes(w io.Writer, pver uint32, bytes []byte) er.R {
	if err := WriteVarInt(w, pver, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return er.E(err)
}

// ReadVarString reads a variable length string, prefixed by its compact
// size length.
func ReadVarString(r io.Reader, pver uint32) (string, er.R) {
	b, err := ReadVarBytes(r, pver, MaxMessagePayload, "variable length string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString serializes str as a variable length byte array prefixed by
// its compact-size length.
func WriteVarString(w io.Writer, pver uint32, str string) er.R {
	return WriteVarBytes(w, pver, []byte(str))
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type used throughout the
// codec, block and chain-engine layers.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/defunctec/crownj/btcutil/er"
	"golang.org/x/crypto/ripemd160"
)

// HashSize is the number of bytes in a hash produced by this package.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = er.NewErrorType("chainhash").Code("ErrHashStrSize")

// Hash is a 32-byte double sha256 digest, stored internally in the same
// little-endian byte order it is transmitted on the wire. String() renders
// it big-endian, matching the way block/tx hashes are conventionally
// displayed.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash.
func (hash Hash) String() string {
	var buf [HashSize]byte
	for i := 0; i < HashSize/2; i++ {
		buf[i], buf[HashSize-1-i] = hash[HashSize-1-i], hash[i]
	}
	return hex.EncodeToString(buf[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
func (hash Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (hash *Hash) SetBytes(newHash []byte) er.R {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return er.Errorf("invalid hash length of %v, want %v", nhlen, HashSize)
	}
	copy(hash[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// Compare returns -1, 0 or 1 depending on whether hash is less than, equal
// to, or greater than target, comparing from the last wire byte down to the
// first, i.e. treating the hash as a little-endian number. The resulting
// order matches that of the big-endian display strings.
func (hash *Hash) Compare(target *Hash) int {
	for i := HashSize - 1; i >= 0; i-- {
		if hash[i] < target[i] {
			return -1
		}
		if hash[i] > target[i] {
			return 1
		}
	}
	return 0
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, er.R) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, err
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the big-endian hexadecimal string of a byte-reversed hash, but any missing
// characters result in zero padding at the end of the hash.
func NewHashFromStr(hash string) (*Hash, er.R) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-reversed hexadecimal string encoding of a Hash to
// a destination.
func Decode(dst *Hash, src string) er.R {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize.Detail("max hash string length is " +
			strconv.Itoa(MaxHashStringSize))
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, errr := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if errr != nil {
		return er.E(errr)
	}

	for i, b := range reversedHash[:HashSize/2] {
		reversedHash[i], reversedHash[HashSize-1-i] = reversedHash[HashSize-1-i], b
	}
	*dst = reversedHash
	return nil
}

// Sha256sum returns a single sha256 digest of the data.
func Sha256sum(b []byte) [HashSize]byte {
	return sha256.Sum256(b)
}

// DoubleHashB calculates sha256(sha256(b)) and returns the resulting bytes.
func DoubleHashB(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

// DoubleHashH calculates sha256(sha256(b)) and returns the resulting bytes
// as a Hash.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// Hash160 calculates ripemd160(sha256(b)), the digest used to derive
// P2PKH/P2SH addresses from a public key or redeem script.
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	// ripemd160.New().Write never errors.
	_, _ = r.Write(sha[:])
	return r.Sum(nil)
}

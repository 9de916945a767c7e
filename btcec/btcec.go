// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcec wraps github.com/decred/dcrd/dcrec/secp256k1/v4 behind the
// narrow PrivateKey/PublicKey/signature surface the rest of this module
// (txscript's signing and checksig paths, pktwallet) expects.
package btcec

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/defunctec/crownj/btcutil/er"
)

// PrivKeyBytesLen is the number of bytes a serialized private key takes up.
const PrivKeyBytesLen = 32

// PubKeyBytesLenCompressed is the number of bytes a compressed public key
// takes up.
const PubKeyBytesLenCompressed = 33

// PubKeyBytesLenUncompressed is the number of bytes an uncompressed public
// key takes up.
const PubKeyBytesLenUncompressed = 65

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	inner secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	inner secp256k1.PublicKey
}

// Signature wraps a secp256k1 ECDSA signature.
type Signature struct {
	inner *ecdsa.Signature
}

var errBadSignature = er.NewErrorType("btcec").Code("ErrBadSignature")
var errBadPrivateKey = er.NewErrorType("btcec").Code("ErrBadPrivateKey")
var errBadPublicKey = er.NewErrorType("btcec").Code("ErrBadPublicKey")

// PrivKeyFromBytes returns a PrivateKey and its corresponding PublicKey
// parsed from a 32-byte big-endian scalar.
func PrivKeyFromBytes(b []byte) (*PrivateKey, *PublicKey) {
	priv := secp256k1.PrivKeyFromBytes(b)
	pub := priv.PubKey()
	return &PrivateKey{inner: *priv}, &PublicKey{inner: *pub}
}

// NewPrivateKey generates a new random private key.
func NewPrivateKey() (*PrivateKey, er.R) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, er.E(err)
	}
	return &PrivateKey{inner: *key}, nil
}

// PubKey returns the public key corresponding to this private key.
func (p *PrivateKey) PubKey() *PublicKey {
	pub := p.inner.PubKey()
	return &PublicKey{inner: *pub}
}

// Serialize returns the private key as a 32-byte big-endian scalar.
func (p *PrivateKey) Serialize() []byte { return p.inner.Serialize() }

// Sign produces an ECDSA signature over the given 32-byte digest using
// RFC6979 deterministic nonce generation.
func (p *PrivateKey) Sign(hash []byte) (*Signature, er.R) {
	if len(hash) != 32 {
		return nil, errBadSignature.Detail("hash must be exactly 32 bytes")
	}
	sig := ecdsa.Sign(&p.inner, hash)
	return &Signature{inner: sig}, nil
}

// ParsePubKey parses a serialized (compressed or uncompressed) public key.
func ParsePubKey(b []byte) (*PublicKey, er.R) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, errBadPublicKey.Detail(err.Error())
	}
	return &PublicKey{inner: *pub}, nil
}

// SerializeCompressed returns the 33-byte compressed form of the public key.
func (p *PublicKey) SerializeCompressed() []byte { return p.inner.SerializeCompressed() }

// SerializeUncompressed returns the 65-byte uncompressed form of the public
// key.
func (p *PublicKey) SerializeUncompressed() []byte { return p.inner.SerializeUncompressed() }

// IsEqual reports whether the two public keys are the same point.
func (p *PublicKey) IsEqual(o *PublicKey) bool { return p.inner.IsEqual(&o.inner) }

// ParseSignature parses a DER-encoded ECDSA signature, as appears in a CRW
// scriptSig.
func ParseSignature(sigStr []byte) (*Signature, er.R) {
	sig, err := ecdsa.ParseDERSignature(sigStr)
	if err != nil {
		return nil, errBadSignature.Detail(err.Error())
	}
	return &Signature{inner: sig}, nil
}

// Serialize returns the DER encoding of the signature.
func (s *Signature) Serialize() []byte { return s.inner.Serialize() }

// Verify reports whether the signature is a valid ECDSA signature of hash
// under pubKey.
func (s *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	return s.inner.Verify(hash, &pubKey.inner)
}

// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package btcutil

// Address encoding/decoding: turns a scriptPubKey pattern recognized by
// txscript into a human-presentable string, and back.

import (
	"crypto/sha256"

	"github.com/decred/dcrd/bech32"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/mr-tron/base58"
)

var AddressErrors = er.NewErrorType("btcutil.address")

var (
	// ErrChecksumMismatch indicates that the checksum of a check-encoded
	// string does not verify against the checksum.
	ErrChecksumMismatch = AddressErrors.CodeWithDetail("ErrChecksumMismatch", "checksum mismatch")

	// ErrUnknownAddressType indicates that the address type is not
	// recognized.
	ErrUnknownAddressType = AddressErrors.CodeWithDetail("ErrUnknownAddressType", "unknown address type")

	// ErrAddressCollision indicates that the address's network does not
	// match the expected network.
	ErrAddressCollision = AddressErrors.CodeWithDetail("ErrAddressCollision", "address collides with a different network or type")
)

// Address is anything that can encode itself into a CRW address string and
// report the raw script bytes needed to pay it.
type Address interface {
	// EncodeAddress returns the string encoding of the address.
	EncodeAddress() string

	// ScriptAddress returns the raw bytes of the address to be used
	// when inserting the address into a txout's script.
	ScriptAddress() []byte

	// IsForNet returns whether the address is associated with the given
	// network.
	IsForNet(params *chaincfg.Params) bool

	// String returns a human-readable string for the address.
	String() string
}

// base58CheckEncode prepends ver to payload, appends a 4-byte double-sha256
// checksum, and base58-encodes the result (the classic P2PKH/P2SH address
// format).
func base58CheckEncode(payload []byte, ver byte) string {
	b := make([]byte, 0, 1+len(payload)+4)
	b = append(b, ver)
	b = append(b, payload...)
	cksum := checksum(b)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

func checksum(b []byte) [4]byte {
	h1 := sha256.Sum256(b)
	h2 := sha256.Sum256(h1[:])
	var c [4]byte
	copy(c[:], h2[:4])
	return c
}

// base58CheckDecode decodes a base58-check string, returning the payload,
// the version byte, and any decode error.
func base58CheckDecode(encoded string) (payload []byte, ver byte, err er.R) {
	decoded, derr := base58.Decode(encoded)
	if derr != nil {
		return nil, 0, er.E(derr)
	}
	if len(decoded) < 5 {
		return nil, 0, er.New("decoded address is too short")
	}
	ver = decoded[0]
	var cksum [4]byte
	copy(cksum[:], decoded[len(decoded)-4:])
	payload = decoded[1 : len(decoded)-4]
	if checksum(decoded[:len(decoded)-4]) != cksum {
		return nil, 0, ErrChecksumMismatch.Default()
	}
	return payload, ver, nil
}

// DecodeAddress decodes the string encoding of an address and returns the
// Address if it is a valid encoding for a known address type and is for the
// given network.
func DecodeAddress(addr string, params *chaincfg.Params) (Address, er.R) {
	if hrp, data, derr := bech32Decode(addr); derr == nil && hrp == params.Bech32HRPSegwit {
		return decodeSegwitAddress(data, params)
	}

	payload, ver, err := base58CheckDecode(addr)
	if err != nil {
		return nil, err
	}

	switch ver {
	case params.PubKeyHashAddrID:
		return newAddressPubKeyHash(payload, params)
	case params.ScriptHashAddrID:
		return newAddressScriptHashFromHash(payload, params)
	default:
		return nil, ErrUnknownAddressType.Detail("unknown address version byte")
	}
}

func bech32Decode(addr string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", nil, err
	}
	return hrp, data, nil
}

func decodeSegwitAddress(data []byte, params *chaincfg.Params) (Address, er.R) {
	if len(data) < 1 {
		return nil, er.New("empty segwit address payload")
	}
	version := data[0]
	converted, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, er.E(err)
	}
	if version != 0 {
		return nil, ErrUnknownAddressType.Detail("unsupported witness version")
	}
	switch len(converted) {
	case 20:
		return newAddressWitnessPubKeyHash(converted, params)
	case 32:
		return newAddressWitnessScriptHash(converted, params)
	default:
		return nil, er.New("invalid witness program length")
	}
}

// AddressPubKeyHash is an Address for a pay-to-pubkey-hash (P2PKH)
// transaction.
type AddressPubKeyHash struct {
	hash   [20]byte
	params *chaincfg.Params
}

// NewAddressPubKeyHash returns a new AddressPubKeyHash.
func NewAddressPubKeyHash(hash160 []byte, params *chaincfg.Params) (*AddressPubKeyHash, er.R) {
	return newAddressPubKeyHash(hash160, params)
}

func newAddressPubKeyHash(hash160 []byte, params *chaincfg.Params) (*AddressPubKeyHash, er.R) {
	if len(hash160) != 20 {
		return nil, er.New("hash160 must be 20 bytes")
	}
	a := &AddressPubKeyHash{params: params}
	copy(a.hash[:], hash160)
	return a, nil
}

func (a *AddressPubKeyHash) EncodeAddress() string {
	return base58CheckEncode(a.hash[:], a.params.PubKeyHashAddrID)
}
func (a *AddressPubKeyHash) ScriptAddress() []byte            { return a.hash[:] }
func (a *AddressPubKeyHash) IsForNet(p *chaincfg.Params) bool  { return a.params.Net == p.Net }
func (a *AddressPubKeyHash) String() string                   { return a.EncodeAddress() }
func (a *AddressPubKeyHash) Hash160() *[20]byte                { return &a.hash }

// AddressScriptHash is an Address for a pay-to-script-hash (P2SH)
// transaction.
type AddressScriptHash struct {
	hash   [20]byte
	params *chaincfg.Params
}

// NewAddressScriptHash returns a new AddressScriptHash computed from the
// given redeem script.
func NewAddressScriptHash(redeemScript []byte, params *chaincfg.Params) (*AddressScriptHash, er.R) {
	return newAddressScriptHashFromHash(chainhash.Hash160(redeemScript), params)
}

// NewAddressScriptHashFromHash returns a new AddressScriptHash from an
// already-computed HASH160.
func NewAddressScriptHashFromHash(hash160 []byte, params *chaincfg.Params) (*AddressScriptHash, er.R) {
	return newAddressScriptHashFromHash(hash160, params)
}

func newAddressScriptHashFromHash(hash160 []byte, params *chaincfg.Params) (*AddressScriptHash, er.R) {
	if len(hash160) != 20 {
		return nil, er.New("hash160 must be 20 bytes")
	}
	a := &AddressScriptHash{params: params}
	copy(a.hash[:], hash160)
	return a, nil
}

func (a *AddressScriptHash) EncodeAddress() string {
	return base58CheckEncode(a.hash[:], a.params.ScriptHashAddrID)
}
func (a *AddressScriptHash) ScriptAddress() []byte           { return a.hash[:] }
func (a *AddressScriptHash) IsForNet(p *chaincfg.Params) bool { return a.params.Net == p.Net }
func (a *AddressScriptHash) String() string                  { return a.EncodeAddress() }

// AddressWitnessPubKeyHash is an Address for a pay-to-witness-pubkey-hash
// (P2WPKH) output, a BIP-141 witness program.
type AddressWitnessPubKeyHash struct {
	hash   [20]byte
	params *chaincfg.Params
}

func NewAddressWitnessPubKeyHash(hash160 []byte, params *chaincfg.Params) (*AddressWitnessPubKeyHash, er.R) {
	return newAddressWitnessPubKeyHash(hash160, params)
}

func newAddressWitnessPubKeyHash(hash160 []byte, params *chaincfg.Params) (*AddressWitnessPubKeyHash, er.R) {
	if len(hash160) != 20 {
		return nil, er.New("hash160 must be 20 bytes")
	}
	a := &AddressWitnessPubKeyHash{params: params}
	copy(a.hash[:], hash160)
	return a, nil
}

func (a *AddressWitnessPubKeyHash) EncodeAddress() string {
	s, err := encodeSegwitAddress(a.params.Bech32HRPSegwit, 0, a.hash[:])
	if err != nil {
		return ""
	}
	return s
}
func (a *AddressWitnessPubKeyHash) ScriptAddress() []byte           { return a.hash[:] }
func (a *AddressWitnessPubKeyHash) IsForNet(p *chaincfg.Params) bool { return a.params.Net == p.Net }
func (a *AddressWitnessPubKeyHash) String() string                  { return a.EncodeAddress() }

// AddressWitnessScriptHash is an Address for a pay-to-witness-script-hash
// (P2WSH) output.
type AddressWitnessScriptHash struct {
	hash   [32]byte
	params *chaincfg.Params
}

func NewAddressWitnessScriptHash(sha256Hash []byte, params *chaincfg.Params) (*AddressWitnessScriptHash, er.R) {
	return newAddressWitnessScriptHash(sha256Hash, params)
}

func newAddressWitnessScriptHash(sha256Hash []byte, params *chaincfg.Params) (*AddressWitnessScriptHash, er.R) {
	if len(sha256Hash) != 32 {
		return nil, er.New("witness script hash must be 32 bytes")
	}
	a := &AddressWitnessScriptHash{params: params}
	copy(a.hash[:], sha256Hash)
	return a, nil
}

func (a *AddressWitnessScriptHash) EncodeAddress() string {
	s, err := encodeSegwitAddress(a.params.Bech32HRPSegwit, 0, a.hash[:])
	if err != nil {
		return ""
	}
	return s
}
func (a *AddressWitnessScriptHash) ScriptAddress() []byte           { return a.hash[:] }
func (a *AddressWitnessScriptHash) IsForNet(p *chaincfg.Params) bool { return a.params.Net == p.Net }
func (a *AddressWitnessScriptHash) String() string                  { return a.EncodeAddress() }

func encodeSegwitAddress(hrp string, version byte, program []byte) (string, error) {
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := make([]byte, 0, len(converted)+1)
	data = append(data, version)
	data = append(data, converted...)
	return bech32.Encode(hrp, data)
}

// AddressPubKey is an Address for a raw public key (P2PK scriptPubKey), or
// for presenting the address a compressed/uncompressed pubkey hashes to.
type AddressPubKey struct {
	pubKeyBytes []byte
	params      *chaincfg.Params
}

// NewAddressPubKey returns a new AddressPubKey which represents a CRW
// address, and is used to also derive the pay-to-pubkey-hash address.
func NewAddressPubKey(serializedPubKey []byte, params *chaincfg.Params) (*AddressPubKey, er.R) {
	cp := append([]byte(nil), serializedPubKey...)
	return &AddressPubKey{pubKeyBytes: cp, params: params}, nil
}

// ScriptAddress returns the bytes to be included in a script to pay to a
// pubkey directly (i.e. the raw serialized pubkey itself).
func (a *AddressPubKey) ScriptAddress() []byte { return a.pubKeyBytes }

// AddressPubKeyHash returns the pay-to-pubkey-hash address derived from
// this pubkey.
func (a *AddressPubKey) AddressPubKeyHash() *AddressPubKeyHash {
	addr, _ := newAddressPubKeyHash(chainhash.Hash160(a.pubKeyBytes), a.params)
	return addr
}

// EncodeAddress returns the string encoding of the pubkey as a
// pay-to-pubkey-hash address -- the conventional display form, matching
// what scriptPubKey pattern recognition returns for bare P2PK outputs.
func (a *AddressPubKey) EncodeAddress() string { return a.AddressPubKeyHash().EncodeAddress() }

func (a *AddressPubKey) IsForNet(p *chaincfg.Params) bool { return a.params.Net == p.Net }
func (a *AddressPubKey) String() string                   { return base58.Encode(a.pubKeyBytes) }

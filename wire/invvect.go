// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg/chainhash"
)

// InvType represents the allowed types of inventory vectors.
type InvType uint32

const (
	InvTypeError          InvType = 0
	InvTypeTx             InvType = 1
	InvTypeBlock          InvType = 2
	InvTypeFilteredBlock  InvType = 3
	InvTypeWitnessBlock           = InvTypeBlock | InvTypeWitnessFlag
	InvTypeWitnessTx              = InvTypeTx | InvTypeWitnessFlag
	InvTypeFilteredWitnessBlock   = InvTypeFilteredBlock | InvTypeWitnessFlag
)

// InvTypeWitnessFlag is OR'd into an InvType to indicate the sender wants
// witness data included in the corresponding getdata response.
const InvTypeWitnessFlag InvType = 1 << 30

// ivStrings maps an InvType to a human-readable name.
var ivStrings = map[InvType]string{
	InvTypeError:                "ERROR",
	InvTypeTx:                   "MSG_TX",
	InvTypeBlock:                "MSG_BLOCK",
	InvTypeFilteredBlock:        "MSG_FILTERED_BLOCK",
	InvTypeWitnessBlock:         "MSG_WITNESS_BLOCK",
	InvTypeWitnessTx:            "MSG_WITNESS_TX",
	InvTypeFilteredWitnessBlock: "MSG_FILTERED_WITNESS_BLOCK",
}

// String returns the InvType in human-readable form.
func (invtype InvType) String() string {
	if s, ok := ivStrings[invtype]; ok {
		return s
	}
	return fmt.Sprintf("Unknown InvType (%d)", uint32(invtype))
}

// InvVect defines a CRW inventory vector, used to describe data, as
// specified by the Type field, that a peer wants, has, or does not have.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, pver uint32, iv *InvVect) er.R {
	t, err := binarySerializer.Uint32(r, littleEndian)
	if err != nil {
		return err
	}
	iv.Type = InvType(t)
	_, errr := io.ReadFull(r, iv.Hash[:])
	return er.E(errr)
}

func writeInvVect(w io.Writer, pver uint32, iv *InvVect) er.R {
	if err := binarySerializer.PutUint32(w, littleEndian, uint32(iv.Type)); err != nil {
		return err
	}
	_, err := w.Write(iv.Hash[:])
	return er.E(err)
}

// maxInvPerMsg is the maximum number of inventory vectors that can be in a
// single CRW inv, getdata, or notfound message.
const maxInvPerMsg = 50000

// maxInvPayload is the maximum size in bytes that an inv, getdata, or
// notfound message can be: MaxVarIntPayload for the count, plus maxInvPerMsg
// inventory vectors each 36 bytes.
const maxInvPayload = 9 + (maxInvPerMsg * (4 + chainhash.HashSize))

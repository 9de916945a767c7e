// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"sort"
	"time"
)

// compactToBig converts a compact representation (the "Bits" field of a
// block header) to a big.Int, using the same mantissa/exponent encoding
// Bitcoin-derived chains store difficulty targets in.
func compactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if compact&0x00800000 != 0 {
		bn = bn.Neg(bn)
	}
	return bn
}

// bigToCompact converts a big.Int target back to its compact ("Bits")
// representation.
func bigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// blockIndexNode is the minimal view of a block the difficulty/median-time
// calculations need: its own header fields plus however deep into the
// ancestor chain a caller asks to walk.
type blockIndexNode interface {
	Height() int32
	Bits() uint32
	Timestamp() time.Time
	Ancestor(height int32) blockIndexNode
}

// medianTimeBlocks is the number of blocks whose timestamps are averaged
// (by taking the median, per BIP-113) to compute the median time past used
// as the lower bound on a new block's timestamp.
const medianTimeBlocks = 11

// calcPastMedianTime returns the median timestamp of the last
// medianTimeBlocks blocks ending at (and including) node.
func calcPastMedianTime(node blockIndexNode) time.Time {
	timestamps := make([]time.Time, 0, medianTimeBlocks)
	n := node
	for i := 0; i < medianTimeBlocks && n != nil; i++ {
		timestamps = append(timestamps, n.Timestamp())
		if n.Height() == 0 {
			break
		}
		n = n.Ancestor(n.Height() - 1)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
	return timestamps[len(timestamps)/2]
}

// calcNextRequiredDifficulty computes the Bits value the next block after
// node must satisfy, retargeting every targetTimespan/targetTimePerBlock
// blocks and clamping the adjustment factor to [1/retargetFactor,
// retargetFactor].
func calcNextRequiredDifficulty(
	node blockIndexNode,
	newBlockTime time.Time,
	powLimit *big.Int,
	blocksPerRetarget int32,
	targetTimespan time.Duration,
	retargetAdjustmentFactor int64,
) uint32 {
	if node == nil {
		return bigToCompact(powLimit)
	}

	// Only change difficulty at the configured retarget interval;
	// otherwise the new block carries forward the current target.
	if (node.Height()+1)%blocksPerRetarget != 0 {
		return node.Bits()
	}

	firstNode := node
	for i := int32(0); i < blocksPerRetarget-1 && firstNode != nil; i++ {
		firstNode = firstNode.Ancestor(firstNode.Height() - 1)
	}
	if firstNode == nil {
		return node.Bits()
	}

	actualTimespan := node.Timestamp().Sub(firstNode.Timestamp())
	minTimespan := targetTimespan / time.Duration(retargetAdjustmentFactor)
	maxTimespan := targetTimespan * time.Duration(retargetAdjustmentFactor)
	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	} else if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	oldTarget := compactToBig(node.Bits())
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(int64(actualTimespan)))
	newTarget.Div(newTarget, big.NewInt(int64(targetTimespan)))

	if newTarget.Cmp(powLimit) > 0 {
		newTarget.Set(powLimit)
	}
	return bigToCompact(newTarget)
}

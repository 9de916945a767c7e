// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

// baseSubsidy is the starting block reward, in base units, before any
// halving has occurred.
const baseSubsidy = 50 * 1e8

// CalcBlockSubsidy returns the block subsidy for a block at the provided
// height, halving every halvingInterval blocks until it reaches zero.
func CalcBlockSubsidy(height int32, halvingInterval int32) int64 {
	if halvingInterval <= 0 {
		return baseSubsidy
	}
	halvings := uint(height / halvingInterval)
	if halvings >= 64 {
		return 0
	}
	return baseSubsidy >> halvings
}

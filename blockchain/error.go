// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the full-validation chain engine: the
// context-free sanity checks, the UTXO-backed block store, and the
// ProcessBlock/reorg state machine that together decide whether a block
// extends, forks, or is rejected from the best chain.
package blockchain

import "github.com/defunctec/crownj/btcutil/er"

// ruleErrorType namespaces every consensus-rule violation this package can
// raise, matching the VerificationError umbrella the rest of the module's
// error taxonomy falls under.
var ruleErrorType = er.NewErrorType("blockchain")

var (
	ErrDuplicateBlock       = ruleErrorType.Code("ErrDuplicateBlock")
	ErrMissingParent        = ruleErrorType.Code("ErrMissingParent")
	ErrNoTransactions       = ruleErrorType.Code("ErrNoTransactions")
	ErrNoTxInputs           = ruleErrorType.Code("ErrNoTxInputs")
	ErrNoTxOutputs          = ruleErrorType.Code("ErrNoTxOutputs")
	ErrTxTooBig             = ruleErrorType.Code("ErrTxTooBig")
	ErrBadTxOutValue        = ruleErrorType.Code("ErrBadTxOutValue")
	ErrDuplicateTxInputs    = ruleErrorType.Code("ErrDuplicateTxInputs")
	ErrBadCoinbaseScriptLen = ruleErrorType.Code("ErrBadCoinbaseScriptLen")
	ErrFirstTxNotCoinbase   = ruleErrorType.Code("ErrFirstTxNotCoinbase")
	ErrMultipleCoinbases    = ruleErrorType.Code("ErrMultipleCoinbases")
	ErrBadMerkleRoot        = ruleErrorType.Code("ErrBadMerkleRoot")
	ErrDuplicateTx          = ruleErrorType.Code("ErrDuplicateTx")
	ErrBlockTooBig          = ruleErrorType.Code("ErrBlockTooBig")
	ErrHighHash             = ruleErrorType.Code("ErrHighHash")
	ErrBadBits              = ruleErrorType.Code("ErrBadBits")
	ErrTimeTooOld           = ruleErrorType.Code("ErrTimeTooOld")
	ErrTimeTooNew           = ruleErrorType.Code("ErrTimeTooNew")
	ErrUnexpectedDifficulty = ruleErrorType.Code("ErrUnexpectedDifficulty")
	ErrMissingTxOut         = ruleErrorType.Code("ErrMissingTxOut")
	ErrSpentTxOut           = ruleErrorType.Code("ErrSpentTxOut")
	ErrImmatureSpend        = ruleErrorType.Code("ErrImmatureSpend")
	ErrSpendTooHigh         = ruleErrorType.Code("ErrSpendTooHigh")
	ErrBadFees              = ruleErrorType.Code("ErrBadFees")
	ErrBadSubsidy           = ruleErrorType.Code("ErrBadSubsidy")
	ErrScriptValidation     = ruleErrorType.Code("ErrScriptValidation")
	ErrReorgTooDeep         = ruleErrorType.Code("ErrReorgTooDeep")
	ErrOrphanBlock          = ruleErrorType.Code("ErrOrphanBlock")
	ErrChainTipUnknown      = ruleErrorType.Code("ErrChainTipUnknown")
)

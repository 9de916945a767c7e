// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "github.com/defunctec/crownj/btcutil/er"

// errType namespaces every failure this package's interpreter raises.
var errType = er.NewErrorType("txscript")

var (
	ErrScriptTooLong      = errType.Code("ErrScriptTooLong")
	ErrTooManyOperations  = errType.Code("ErrTooManyOperations")
	ErrStackDepth         = errType.Code("ErrStackDepth")
	ErrUnbalancedConditional = errType.Code("ErrUnbalancedConditional")
	ErrInvalidOpcode      = errType.Code("ErrInvalidOpcode")
	ErrReservedOpcode     = errType.Code("ErrReservedOpcode")
	ErrDisabledOpcode     = errType.Code("ErrDisabledOpcode")
	ErrVerify             = errType.Code("ErrVerify")
	ErrEvalFalse          = errType.Code("ErrEvalFalse")
	ErrEarlyReturn        = errType.Code("ErrEarlyReturn")
	ErrCheckSigVerify     = errType.Code("ErrCheckSigVerify")
	ErrCheckMultiSigVerify = errType.Code("ErrCheckMultiSigVerify")
	ErrNumEqualVerify     = errType.Code("ErrNumEqualVerify")
	ErrEqualVerify         = errType.Code("ErrEqualVerify")
	ErrCleanStack         = errType.Code("ErrCleanStack")
	ErrP2SHPushOnly       = errType.Code("ErrP2SHPushOnly")
	ErrWitnessMalformed   = errType.Code("ErrWitnessMalformed")
	ErrWitnessProgramMismatch = errType.Code("ErrWitnessProgramMismatch")
	ErrPubKeyFormat       = errType.Code("ErrPubKeyFormat")
	ErrSigFormat          = errType.Code("ErrSigFormat")
	ErrSigHighS           = errType.Code("ErrSigHighS")
	ErrNegativeLockTime   = errType.Code("ErrNegativeLockTime")
	ErrUnsatisfiedLockTime = errType.Code("ErrUnsatisfiedLockTime")
	ErrNullFail           = errType.Code("ErrNullFail")
	ErrUnsupportedAddress = errType.Code("ErrUnsupportedAddress")
)

// Package constants holds the wire-level numeric limits shared by the
// codec and message layers. Split out from wire
// itself so that these values can be used without importing the whole
// message set.
package constants

// MaxTxInSequenceNum is the maximum value a sequence number can be, except
// for the special case documented in MaxPrevOutIndex below. The sequence
// number used to be used to update transactions before locktime, but is
// now primarily used to enforce BIP-68 relative lock-time semantics.
const MaxTxInSequenceNum uint32 = 0xffffffff

// MaxPrevOutIndex is the maximum index a previous output (outpoint) can be,
// used as the index within the null-outpoint marking a coinbase input.
const MaxPrevOutIndex uint32 = 0xffffffff

// MinTxOutPayload is the minimum payload size for a transaction output.
// Value 8 bytes + PkScript length guess of 1 byte.
const MinTxOutPayload = 9

// SequenceLockTimeDisabled, when set in a TxIn's Sequence, means BIP-68
// relative lock-time semantics are not enforced for that input.
const SequenceLockTimeDisabled = 1 << 31

// SequenceLockTimeIsSeconds, when set, means the relative lock-time in the
// low 16 bits of Sequence is in units of 512 seconds rather than blocks.
const SequenceLockTimeIsSeconds = 1 << 22

// SequenceLockTimeMask extracts the relative lock-time value (block count
// or 512-second groups) from a TxIn's Sequence field.
const SequenceLockTimeMask = 0x0000ffff

// SequenceLockTimeGranularity is the number of bits the time-based relative
// lock-time is left-shifted by, matching BIP-68.
const SequenceLockTimeGranularity = 9

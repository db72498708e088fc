// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorKind identifies a kind of error that can be produced while building
// or validating the block index, the active chain, or the UTXO view.  It is
// a distinct type so callers can use errors.Is against sentinel values
// instead of string matching.
type ErrorKind string

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

const (
	// ErrMissingParent indicates a block or header was submitted whose
	// parent is not already known to the block index.
	ErrMissingParent = ErrorKind("ErrMissingParent")

	// ErrUnknownBlock indicates a hash was not found in the block index.
	ErrUnknownBlock = ErrorKind("ErrUnknownBlock")

	// ErrHighHash indicates a block's hash does not satisfy the
	// proof-of-work target encoded in its own bits field.
	ErrHighHash = ErrorKind("ErrHighHash")

	// ErrBadBits indicates a block's difficulty bits do not match the
	// value calculated from the difficulty retarget rules.
	ErrBadBits = ErrorKind("ErrBadBits")

	// ErrTimeTooOld indicates a block's timestamp is not after the median
	// time of the previous several blocks.
	ErrTimeTooOld = ErrorKind("ErrTimeTooOld")

	// ErrTimeTooNew indicates a block's timestamp is too far in the
	// future.
	ErrTimeTooNew = ErrorKind("ErrTimeTooNew")

	// ErrNoTransactions indicates a block contains no transactions.
	ErrNoTransactions = ErrorKind("ErrNoTransactions")

	// ErrFirstTxNotCoinbase indicates the first transaction in a block is
	// not a coinbase transaction.
	ErrFirstTxNotCoinbase = ErrorKind("ErrFirstTxNotCoinbase")

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases = ErrorKind("ErrMultipleCoinbases")

	// ErrBadMerkleRoot indicates the calculated merkle root for a block
	// does not match the one recorded in its header.
	ErrBadMerkleRoot = ErrorKind("ErrBadMerkleRoot")

	// ErrDuplicateTx indicates a block introduces a transaction whose id
	// duplicates an existing, unspent transaction and is not covered by
	// the BIP-30 historical exemption.
	ErrDuplicateTx = ErrorKind("ErrDuplicateTx")

	// ErrMissingTxOut indicates a transaction input spends an output that
	// is not found in the UTXO view or the same block's earlier
	// transactions.
	ErrMissingTxOut = ErrorKind("ErrMissingTxOut")

	// ErrImmatureSpend indicates an input attempts to spend a coinbase
	// output before it has reached the required maturity depth.
	ErrImmatureSpend = ErrorKind("ErrImmatureSpend")

	// ErrSpentTxOut indicates an input attempts to spend an output that
	// has already been spent.
	ErrSpentTxOut = ErrorKind("ErrSpentTxOut")

	// ErrUnfinalizedTx indicates a transaction is not finalized and thus
	// is not allowed to be included in a block.
	ErrUnfinalizedTx = ErrorKind("ErrUnfinalizedTx")

	// ErrInsufficientInput indicates a transaction's output value exceeds
	// the value of the inputs it spends.
	ErrInsufficientInput = ErrorKind("ErrInsufficientInput")

	// ErrScriptValidation indicates a transaction input's signature
	// script and the matching output's public key script failed to
	// validate together under the script engine.
	ErrScriptValidation = ErrorKind("ErrScriptValidation")

	// ErrInvalidAncestorQuery indicates a request for a block node's
	// ancestor at a height the node cannot satisfy (negative, or above
	// its own height).
	ErrInvalidAncestorQuery = ErrorKind("ErrInvalidAncestorQuery")

	// ErrInvalidAncestor indicates a header was accepted whose parent is
	// already known to have failed validation.
	ErrInvalidAncestor = ErrorKind("ErrInvalidAncestor")
)

// RuleError identifies a rule violation encountered while processing a
// block, header, or transaction against the active chain.  It carries an
// ErrorKind the caller can match against with errors.Is and a
// human-readable description for logs.
type RuleError struct {
	ErrorCode   ErrorKind
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying ErrorKind so errors.Is(err, ErrBadBits) and
// similar sentinel comparisons work against a wrapped RuleError.
func (e RuleError) Unwrap() error {
	return e.ErrorCode
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{ErrorCode: kind, Description: desc}
}

// ruleErrorf is a convenience wrapper around ruleError that formats the
// description.
func ruleErrorf(kind ErrorKind, format string, args ...interface{}) RuleError {
	return ruleError(kind, fmt.Sprintf(format, args...))
}

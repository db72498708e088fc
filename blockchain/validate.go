// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/txscript"
	"github.com/hindsights/xbtc/wire"
)

// maxTimeOffset is how far into the future, relative to the local clock, a
// block's timestamp is allowed to be before it is rejected.
const maxTimeOffset = 2 * time.Hour

// CheckBlockHeaderSanity performs context-free sanity checks on a header:
// its own proof-of-work is satisfied and its timestamp isn't absurdly far
// in the future.
func (b *BlockChain) CheckBlockHeaderSanity(header *wire.BlockHeader, now time.Time) error {
	hash := header.BlockHash()
	target := CompactToBig(header.Bits)
	if target.Sign() <= 0 || target.Cmp(b.chainParams.PowLimit) > 0 {
		return ruleErrorf(ErrHighHash, "block %s target %064x is outside valid range", hash, target)
	}
	hashNum := HashToBig((*[32]byte)(&hash))
	if hashNum.Cmp(target) > 0 {
		return ruleErrorf(ErrHighHash, "block hash %s is higher than expected target %064x", hash, target)
	}

	if header.Timestamp.After(now.Add(maxTimeOffset)) {
		return ruleErrorf(ErrTimeTooNew, "block timestamp %s is too far in the future", header.Timestamp)
	}
	return nil
}

// CheckConnectHeader validates header against the tip it would extend:
// its parent must be known, its timestamp must exceed the median of the
// last 11 blocks, and its bits must match the value the retarget rules
// require.
func (b *BlockChain) CheckConnectHeader(header *wire.BlockHeader) (*blockNode, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	parent := b.index.LookupNode(&header.PrevBlock)
	if parent == nil {
		return nil, ruleErrorf(ErrMissingParent, "header references unknown parent %s", header.PrevBlock)
	}

	if !header.Timestamp.After(parent.calcPastMedianTime()) {
		return nil, ruleErrorf(ErrTimeTooOld, "block timestamp %s is not after median time %s",
			header.Timestamp, parent.calcPastMedianTime())
	}

	requiredBits := b.calcNextRequiredDifficulty(parent)
	if header.Bits != requiredBits {
		return nil, ruleErrorf(ErrBadBits, "block bits %08x does not match required %08x", header.Bits, requiredBits)
	}

	return parent, nil
}

// checkBlockSanity validates block-level invariants that do not depend on
// the UTXO set: a non-empty transaction list, exactly one coinbase in the
// first position, and a merkle root matching the header.
func (b *BlockChain) checkBlockSanity(block *wire.MsgBlock) error {
	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}
	if !isCoinBase(block.Transactions[0]) {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction in block is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if isCoinBase(tx) {
			return ruleError(ErrMultipleCoinbases, "block contains more than one coinbase transaction")
		}
	}

	calculated := calcMerkleRoot(block.Transactions)
	if calculated != block.Header.MerkleRoot {
		return ruleErrorf(ErrBadMerkleRoot, "merkle root mismatch: header has %s, calculated %s",
			block.Header.MerkleRoot, calculated)
	}
	return nil
}

// isCoinBase reports whether tx is a coinbase transaction: exactly one
// input, referencing a null (all-zero hash, max index) previous outpoint.
func isCoinBase(tx *wire.MsgTx) bool {
	if len(tx.TxIn) != 1 {
		return false
	}
	prevOut := &tx.TxIn[0].PreviousOutPoint
	return prevOut.Index == 0xffffffff && prevOut.Hash.IsZero()
}

// calcMerkleRoot builds the merkle tree over the transactions' ids and
// returns its root, duplicating the final element of an odd-length level
// per the historical chain's construction.
func calcMerkleRoot(txs []*wire.MsgTx) chainhash.Hash {
	if len(txs) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		level[i] = tx.TxHash()
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, len(level)/2)
		for i := range next {
			var buf [64]byte
			copy(buf[:32], level[2*i][:])
			copy(buf[32:], level[2*i+1][:])
			next[i] = chainhash.DoubleHashH(buf[:])
		}
		level = next
	}
	return level[0]
}

// checkDuplicateTransaction guards against BIP-30: no output of any
// transaction in the block may already exist as a still-unspent output,
// except in the two historical blocks recorded (by height and block hash)
// in params.BIP30Exceptions. Outputs not already in the view are resolved
// through fetch, so duplicates are caught even when nothing in this block
// spends them.
func (b *BlockChain) checkDuplicateTransaction(node *blockNode, block *wire.MsgBlock, view *UtxoViewpoint,
	fetch func(wire.OutPoint) (*UtxoEntry, error)) error {

	if exceptionHash, ok := b.chainParams.BIP30Exceptions[node.height]; ok {
		if exceptionHash == node.hash {
			return nil
		}
	}

	for _, tx := range block.Transactions {
		txHash := tx.TxHash()
		for outIdx := range tx.TxOut {
			outpoint := wire.OutPoint{Hash: txHash, Index: uint32(outIdx)}
			entry := view.LookupEntry(outpoint)
			if entry == nil && fetch != nil {
				var err error
				entry, err = fetch(outpoint)
				if err != nil {
					return err
				}
			}
			if entry != nil && !entry.IsSpent() {
				return ruleErrorf(ErrDuplicateTx, "transaction %s duplicates an existing unspent transaction", txHash)
			}
		}
	}
	return nil
}

// checkTransactionInputs verifies a non-coinbase transaction's inputs
// exist, are mature (if coinbase-derived), are unspent, and that the sum
// of input amounts is not less than the sum of output amounts, returning
// the transaction fee (input sum minus output sum).
func (b *BlockChain) checkTransactionInputs(tx *wire.MsgTx, txHeight int64, view *UtxoViewpoint) (int64, error) {
	var inputSum int64
	for _, txIn := range tx.TxIn {
		entry := view.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			return 0, ruleErrorf(ErrMissingTxOut, "output %s referenced by transaction is not known",
				txIn.PreviousOutPoint)
		}
		if entry.IsSpent() {
			return 0, ruleErrorf(ErrSpentTxOut, "output %s referenced by transaction was already spent",
				txIn.PreviousOutPoint)
		}
		if entry.IsCoinBase() {
			originHeight := entry.BlockHeight()
			blocksSinceCreation := txHeight - originHeight
			if blocksSinceCreation < int64(b.chainParams.CoinbaseMaturity) {
				return 0, ruleErrorf(ErrImmatureSpend,
					"tried to spend coinbase output %s from height %d at height %d before required maturity of %d blocks",
					txIn.PreviousOutPoint, originHeight, txHeight, b.chainParams.CoinbaseMaturity)
			}
		}
		inputSum += entry.Amount()
	}

	var outputSum int64
	for _, txOut := range tx.TxOut {
		outputSum += txOut.Value
	}

	if inputSum < outputSum {
		return 0, ruleErrorf(ErrInsufficientInput, "total input amount %d is less than total output amount %d",
			inputSum, outputSum)
	}
	return inputSum - outputSum, nil
}

// checkTransactionScripts runs the script engine over every input of tx,
// pairing its signature script against the public key script of the
// output it spends. The heavy lifting is delegated to the txscript
// package; this function only wires a TxSigChecker backed by the chain's
// shared SigCache for each input.
func (b *BlockChain) checkTransactionScripts(tx *wire.MsgTx, view *UtxoViewpoint, sigCache *txscript.SigCache) error {
	for idx, txIn := range tx.TxIn {
		entry := view.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			return ruleErrorf(ErrMissingTxOut, "output %s referenced by transaction is not known",
				txIn.PreviousOutPoint)
		}

		checker := &txscript.TxSigChecker{Tx: tx, TxIdx: idx, SigCache: sigCache}
		vm, err := txscript.NewEngine(entry.PkScript(), txIn.SignatureScript, txscript.ScriptNoFlags, sigCache, checker)
		if err != nil {
			return ruleErrorf(ErrScriptValidation, "input %d: %v", idx, err)
		}
		if err := vm.Execute(); err != nil {
			return ruleErrorf(ErrScriptValidation, "input %d: %v", idx, err)
		}
	}
	return nil
}

// connectTransaction applies a transaction's effect to the view: its
// inputs are marked spent and its outputs become newly available unspent
// outputs at the given height.
func connectTransaction(view *UtxoViewpoint, tx *wire.MsgTx, height int64, isCoinBase bool) {
	if !isCoinBase {
		for _, txIn := range tx.TxIn {
			view.SpendEntry(txIn.PreviousOutPoint)
		}
	}
	txHash := tx.TxHash()
	for outIdx, txOut := range tx.TxOut {
		view.AddEntry(wire.OutPoint{Hash: txHash, Index: uint32(outIdx)}, txOut.Value, txOut.PkScript, height, isCoinBase)
	}
}

// CheckConnectBlock performs full validation of a block against the chain
// tip it would extend: block sanity, BIP-30 duplicate check, per-input
// maturity/amount/script checks, and the coinbase subsidy-plus-fees bound.
// The supplied view is mutated in place to reflect the block's effect.
func (b *BlockChain) CheckConnectBlock(node *blockNode, block *wire.MsgBlock, view *UtxoViewpoint,
	fetch func(wire.OutPoint) (*UtxoEntry, error), sigCache *txscript.SigCache) error {

	if err := b.checkBlockSanity(block); err != nil {
		return err
	}
	// The duplicate check must run before the block's own outputs are
	// visible in the view, so it only ever sees pre-existing coins.
	if err := b.checkDuplicateTransaction(node, block, view, fetch); err != nil {
		return err
	}
	if err := view.fetchInputUtxos(block, fetch); err != nil {
		return err
	}

	var totalFees int64
	for txIdx, tx := range block.Transactions {
		if txIdx == 0 {
			connectTransaction(view, tx, node.height, true)
			continue
		}
		fee, err := b.checkTransactionInputs(tx, node.height, view)
		if err != nil {
			return err
		}
		if err := b.checkTransactionScripts(tx, view, sigCache); err != nil {
			return err
		}
		totalFees += fee
		connectTransaction(view, tx, node.height, false)
	}

	var coinbaseOut int64
	for _, txOut := range block.Transactions[0].TxOut {
		coinbaseOut += txOut.Value
	}
	maxSubsidy := CalcBlockSubsidy(node.height, b.chainParams) + totalFees
	if coinbaseOut > maxSubsidy {
		return ruleErrorf(ErrInsufficientInput, "coinbase pays %d, exceeds allowed subsidy plus fees of %d",
			coinbaseOut, maxSubsidy)
	}

	return nil
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// UtxoEntry houses details about an individual unspent transaction output,
// along with the block metadata needed to enforce coinbase maturity.
type UtxoEntry struct {
	amount      int64
	pkScript    []byte
	blockHeight int64
	isCoinBase  bool
	spent       bool
}

// Amount returns the amount of the output.
func (e *UtxoEntry) Amount() int64 { return e.amount }

// PkScript returns the public key script of the output.
func (e *UtxoEntry) PkScript() []byte { return e.pkScript }

// BlockHeight returns the height of the block containing the output.
func (e *UtxoEntry) BlockHeight() int64 { return e.blockHeight }

// IsCoinBase returns whether the output originated from a coinbase
// transaction.
func (e *UtxoEntry) IsCoinBase() bool { return e.isCoinBase }

// IsSpent returns whether the output has already been spent.
func (e *UtxoEntry) IsSpent() bool { return e.spent }

// UtxoViewpoint represents a view into the set of unspent transaction
// outputs as of a particular point in the chain, backed by an in-memory
// map that is layered on top of the on-disk chain-state database (see the
// database package's ChainStateDB).  Entries are loaded lazily via
// fetchInputUtxos and cached here for the remainder of a block's
// validation.
type UtxoViewpoint struct {
	entries map[wire.OutPoint]*UtxoEntry
}

// NewUtxoViewpoint returns an empty utxo view.
func NewUtxoViewpoint() *UtxoViewpoint {
	return &UtxoViewpoint{entries: make(map[wire.OutPoint]*UtxoEntry)}
}

// LookupEntry returns the entry for the given outpoint, or nil if it isn't
// in the view (the backing store must be consulted by the caller).
func (view *UtxoViewpoint) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	return view.entries[outpoint]
}

// AddEntry records a new unspent output in the view, as happens when a
// block's transactions are connected.
func (view *UtxoViewpoint) AddEntry(outpoint wire.OutPoint, amount int64, pkScript []byte, blockHeight int64, isCoinBase bool) {
	view.entries[outpoint] = &UtxoEntry{
		amount:      amount,
		pkScript:    pkScript,
		blockHeight: blockHeight,
		isCoinBase:  isCoinBase,
	}
}

// Entries returns the view's underlying outpoint-to-entry map so callers
// (the blockcache package, specifically) can classify which outputs were
// newly created or spent while validating a block, in order to persist
// that delta to the chain-state database. Callers must treat the returned
// map as read-only.
func (view *UtxoViewpoint) Entries() map[wire.OutPoint]*UtxoEntry {
	return view.entries
}

// SpendEntry marks the output at outpoint as spent.  The entry is kept
// (rather than deleted) so a block connecting multiple transactions that
// reference the same prior output in sequence can still see it was once
// present and report it as already spent.
func (view *UtxoViewpoint) SpendEntry(outpoint wire.OutPoint) {
	if entry, ok := view.entries[outpoint]; ok {
		entry.spent = true
	}
}

// fetchInputUtxos populates the view with every output referenced as an
// input by the block's transactions, consulting entries created earlier in
// the same block before falling back to the backing store, so a spend of an
// output created earlier in the same block resolves without touching the
// persisted UTXO set.
func (view *UtxoViewpoint) fetchInputUtxos(block *wire.MsgBlock, fetch func(wire.OutPoint) (*UtxoEntry, error)) error {
	// Transactions created earlier in this block become available to
	// later ones as each is passed, so an input can never resolve
	// against a transaction that appears after it.
	earlier := make(map[chainhash.Hash]*wire.MsgTx, len(block.Transactions))
	if len(block.Transactions) > 0 {
		cb := block.Transactions[0]
		earlier[cb.TxHash()] = cb
	}
	for txIdx, tx := range block.Transactions {
		if txIdx == 0 {
			continue // coinbase has no real inputs to resolve
		}
		for _, txIn := range tx.TxIn {
			outpoint := txIn.PreviousOutPoint
			if _, ok := view.entries[outpoint]; ok {
				continue
			}
			if prev, ok := earlier[outpoint.Hash]; ok {
				if outpoint.Index < uint32(len(prev.TxOut)) {
					out := prev.TxOut[outpoint.Index]
					view.AddEntry(outpoint, out.Value, out.PkScript, 0, false)
				}
				continue
			}
			entry, err := fetch(outpoint)
			if err != nil {
				return err
			}
			if entry != nil {
				view.entries[outpoint] = entry
			}
		}
		earlier[tx.TxHash()] = tx
	}
	return nil
}

// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// buildSpendingBlock returns a two-transaction block where the second
// transaction spends an output produced by the first, neither of which has
// ever been recorded in a backing store, exercising the "earlier
// transaction in the same block" fallback.
func buildSpendingBlock() *wire.MsgBlock {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, Sequence: 0xffffffff})
	coinbase.AddTxOut(wire.NewTxOut(50*1e8, []byte{0x51}))

	spender := wire.NewMsgTx(1)
	spender.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: coinbase.TxHash(), Index: 0},
		Sequence:         0xffffffff,
	})
	spender.AddTxOut(wire.NewTxOut(40*1e8, []byte{0x51}))

	block := &wire.MsgBlock{}
	block.AddTransaction(coinbase)
	block.AddTransaction(spender)
	return block
}

// TestFetchInputUtxosSameBlockFallback ensures an input spending an output
// created earlier in the same block resolves without the backing-store
// fetch callback ever being invoked.
func TestFetchInputUtxosSameBlockFallback(t *testing.T) {
	t.Parallel()

	block := buildSpendingBlock()
	view := NewUtxoViewpoint()

	fetchCalled := false
	fetch := func(wire.OutPoint) (*UtxoEntry, error) {
		fetchCalled = true
		return nil, nil
	}

	if err := view.fetchInputUtxos(block, fetch); err != nil {
		t.Fatalf("fetchInputUtxos: %v", err)
	}
	if fetchCalled {
		t.Fatalf("expected the same-block output to satisfy the lookup without a backing-store fetch")
	}

	outpoint := wire.OutPoint{Hash: block.Transactions[0].TxHash(), Index: 0}
	entry := view.LookupEntry(outpoint)
	if entry == nil {
		t.Fatalf("expected an entry for the coinbase output")
	}
	if entry.Amount() != 50*1e8 {
		t.Fatalf("expected amount %d, got %d", int64(50*1e8), entry.Amount())
	}
}

// TestFetchInputUtxosFallsBackToStore ensures inputs not satisfied by an
// earlier same-block transaction are resolved via the fetch callback.
func TestFetchInputUtxosFallsBackToStore(t *testing.T) {
	t.Parallel()

	spent := wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: spent, Sequence: 0xffffffff})
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, Sequence: 0xffffffff})
	coinbase.AddTxOut(wire.NewTxOut(50*1e8, []byte{0x51}))

	block := &wire.MsgBlock{}
	block.AddTransaction(coinbase)
	block.AddTransaction(tx)

	view := NewUtxoViewpoint()
	var fetchedOutpoint wire.OutPoint
	err := view.fetchInputUtxos(block, func(op wire.OutPoint) (*UtxoEntry, error) {
		fetchedOutpoint = op
		return &UtxoEntry{amount: 5, blockHeight: 1}, nil
	})
	if err != nil {
		t.Fatalf("fetchInputUtxos: %v", err)
	}
	if fetchedOutpoint != spent {
		t.Fatalf("expected fetch for %s, got %s", spent, fetchedOutpoint)
	}
	if entry := view.LookupEntry(spent); entry == nil || entry.Amount() != 5 {
		t.Fatalf("expected fetched entry with amount 5, got %v", entry)
	}
}

// TestSpendEntry ensures SpendEntry marks an entry spent in place rather
// than deleting it.
func TestSpendEntry(t *testing.T) {
	t.Parallel()

	view := NewUtxoViewpoint()
	outpoint := wire.OutPoint{Hash: chainhash.Hash{0x02}, Index: 0}
	view.AddEntry(outpoint, 100, []byte{0x51}, 1, false)

	view.SpendEntry(outpoint)

	entry := view.LookupEntry(outpoint)
	if entry == nil {
		t.Fatalf("expected entry to remain present after spending")
	}
	if !entry.IsSpent() {
		t.Fatalf("expected entry to be marked spent")
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// testParamsWithException returns a minimal Params carrying a single
// BIP-30 exception entry, enough to exercise checkDuplicateTransaction
// without needing a full network parameter set.
func testParamsWithException(height int64, hash chainhash.Hash) *chaincfg.Params {
	return &chaincfg.Params{
		BIP30Exceptions: map[int64]chainhash.Hash{height: hash},
	}
}

// TestIsCoinBase ensures isCoinBase recognizes the null-outpoint, max-index
// input pattern and rejects anything else.
func TestIsCoinBase(t *testing.T) {
	t.Parallel()

	cb := wire.NewMsgTx(1)
	cb.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	if !isCoinBase(cb) {
		t.Fatalf("expected a null-outpoint single-input tx to be a coinbase")
	}

	notCB := wire.NewMsgTx(1)
	notCB.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}})
	if isCoinBase(notCB) {
		t.Fatalf("expected a tx spending a real outpoint not to be a coinbase")
	}
}

// TestCalcMerkleRootSingleTx ensures a one-transaction block's merkle root
// is simply that transaction's id.
func TestCalcMerkleRootSingleTx(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	tx.AddTxOut(wire.NewTxOut(50*1e8, []byte{0x51}))

	got := calcMerkleRoot([]*wire.MsgTx{tx})
	want := tx.TxHash()
	if got != want {
		t.Fatalf("calcMerkleRoot: got %s, want %s", got, want)
	}
}

// TestCalcMerkleRootOddDuplicatesLast ensures an odd number of
// transactions duplicates the final hash at each level, per the historical
// chain's merkle tree construction.
func TestCalcMerkleRootOddDuplicatesLast(t *testing.T) {
	t.Parallel()

	mkTx := func(seq uint32) *wire.MsgTx {
		tx := wire.NewMsgTx(1)
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, Sequence: seq})
		tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))
		return tx
	}

	txs := []*wire.MsgTx{mkTx(1), mkTx(2), mkTx(3)}
	duplicated := []*wire.MsgTx{mkTx(1), mkTx(2), mkTx(3), mkTx(3)}

	got := calcMerkleRoot(txs)
	want := calcMerkleRoot(duplicated)
	if got != want {
		t.Fatalf("expected odd-length root to equal explicit duplication: got %s, want %s", got, want)
	}
}

// TestCheckDuplicateTransactionExemption ensures the BIP-30 exception
// table allows the two historical blocks to pass despite an unspent
// duplicate, while any other block at those outpoints is rejected.
func TestCheckDuplicateTransactionExemption(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	tx.AddTxOut(wire.NewTxOut(1, []byte{0x51}))

	block := &wire.MsgBlock{}
	block.AddTransaction(tx)

	view := NewUtxoViewpoint()
	view.AddEntry(wire.OutPoint{Hash: tx.TxHash(), Index: 0}, 1, []byte{0x51}, 0, false)

	exceptionHash := chainhash.Hash{0xaa}
	bc := &BlockChain{chainParams: testParamsWithException(91842, exceptionHash)}

	noFetch := func(wire.OutPoint) (*UtxoEntry, error) { return nil, nil }

	exemptNode := &blockNode{height: 91842, hash: exceptionHash}
	if err := bc.checkDuplicateTransaction(exemptNode, block, view, noFetch); err != nil {
		t.Fatalf("expected the documented exemption to pass: %v", err)
	}

	otherNode := &blockNode{height: 91842, hash: chainhash.Hash{0xbb}}
	if err := bc.checkDuplicateTransaction(otherNode, block, view, noFetch); err == nil {
		t.Fatalf("expected a non-exempt block at the same height to be rejected")
	}
}

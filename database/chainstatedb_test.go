// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"testing"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

func TestChainStateDBWriteCoinsRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := OpenChainStateDB(dir, 0)
	if err != nil {
		t.Fatalf("OpenChainStateDB: %v", err)
	}
	defer db.Close()

	outpoint := wire.OutPoint{Hash: chainhash.Hash{7}, Index: 1}
	coin := &CoinRecord{Amount: 5000000000, PkScript: []byte{0x76, 0xa9, 0x14}, BlockHeight: 100, IsCoinBase: true}
	best := chainhash.Hash{9}

	added := map[wire.OutPoint]*CoinRecord{outpoint: coin}
	if err := db.WriteCoins(added, nil, best); err != nil {
		t.Fatalf("WriteCoins: %v", err)
	}

	got, err := db.ReadCoin(outpoint)
	if err != nil {
		t.Fatalf("ReadCoin: %v", err)
	}
	if got == nil {
		t.Fatal("expected coin to be present")
	}
	if got.Amount != coin.Amount || got.BlockHeight != coin.BlockHeight || got.IsCoinBase != coin.IsCoinBase {
		t.Fatalf("round-tripped coin mismatch: got %+v want %+v", got, coin)
	}

	gotBest, err := db.ReadBestBlock()
	if err != nil {
		t.Fatalf("ReadBestBlock: %v", err)
	}
	if gotBest != best {
		t.Fatalf("best block mismatch: got %s want %s", gotBest, best)
	}

	if err := db.WriteCoins(nil, []wire.OutPoint{outpoint}, best); err != nil {
		t.Fatalf("WriteCoins removal: %v", err)
	}
	got, err = db.ReadCoin(outpoint)
	if err != nil {
		t.Fatalf("ReadCoin after removal: %v", err)
	}
	if got != nil {
		t.Fatal("expected coin to be gone after removal batch")
	}
}

func TestChainStateDBSkipsZeroValueCoins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := OpenChainStateDB(dir, 0)
	if err != nil {
		t.Fatalf("OpenChainStateDB: %v", err)
	}
	defer db.Close()

	outpoint := wire.OutPoint{Hash: chainhash.Hash{3}, Index: 0}
	added := map[wire.OutPoint]*CoinRecord{outpoint: {Amount: 0, PkScript: []byte{0x6a}}}
	if err := db.WriteCoins(added, nil, chainhash.Hash{}); err != nil {
		t.Fatalf("WriteCoins: %v", err)
	}
	got, err := db.ReadCoin(outpoint)
	if err != nil {
		t.Fatalf("ReadCoin: %v", err)
	}
	if got != nil {
		t.Fatal("a zero-value coin must not be persisted")
	}
}

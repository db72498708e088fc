// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"math/big"
	"testing"
	"time"

	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

func sampleSnapshot(prevBlock chainhash.Hash, height int64) *blockchain.NodeSnapshot {
	header := wire.BlockHeader{
		Version:    1,
		PrevBlock:  prevBlock,
		MerkleRoot: chainhash.Hash{byte(height)},
		Timestamp:  time.Unix(1231006505+height*600, 0),
		Bits:       0x1d00ffff,
		Nonce:      uint32(height),
	}
	return &blockchain.NodeSnapshot{
		Header:       header,
		Hash:         header.BlockHash(),
		Height:       height,
		HaveData:     true,
		Valid:        true,
		TxCount:      1,
		ChainTxCount: uint64(height + 1),
		FileIndex:    0,
		DataPos:      8,
		ChainWork:    big.NewInt(1),
	}
}

func TestBlockIndexDBWriteLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := OpenBlockIndexDB(dir, 0)
	if err != nil {
		t.Fatalf("OpenBlockIndexDB: %v", err)
	}
	defer db.Close()

	genesis := sampleSnapshot(chainhash.Hash{}, 0)
	child := sampleSnapshot(genesis.Hash, 1)

	if err := db.WriteBlocks([]*blockchain.NodeSnapshot{genesis, child},
		[]*BlockFileInfo{{FileIndex: 0, Blocks: 2, Size: 400}}, 0); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}

	snaps, files, lastFile, err := db.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if len(files) != 1 || files[0].Blocks != 2 {
		t.Fatalf("unexpected file records: %+v", files)
	}
	if lastFile != 0 {
		t.Fatalf("expected last file 0, got %d", lastFile)
	}

	byHash := make(map[chainhash.Hash]*blockchain.NodeSnapshot)
	for _, snap := range snaps {
		byHash[snap.Hash] = snap
	}
	got, ok := byHash[child.Hash]
	if !ok {
		t.Fatal("child snapshot missing after round trip")
	}
	if got.Height != child.Height || got.TxCount != child.TxCount || got.ChainTxCount != child.ChainTxCount {
		t.Fatalf("round-tripped snapshot mismatch: got %+v want %+v", got, child)
	}
	if got.Header.PrevBlock != genesis.Hash {
		t.Fatalf("round-tripped prev block mismatch: got %s want %s", got.Header.PrevBlock, genesis.Hash)
	}
}

func TestBlockIndexDBObfuscationIsStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := OpenBlockIndexDB(dir, 0)
	if err != nil {
		t.Fatalf("OpenBlockIndexDB: %v", err)
	}
	key := append([]byte(nil), db.obfuscate...)
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBlockIndexDB(dir, 0)
	if err != nil {
		t.Fatalf("reopen OpenBlockIndexDB: %v", err)
	}
	defer reopened.Close()
	if string(reopened.obfuscate) != string(key) {
		t.Fatal("obfuscation key was not honored across reopen")
	}
}

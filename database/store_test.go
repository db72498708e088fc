// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"testing"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

func TestStoreWriteBlockAsyncThenRead(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), wire.MainNet, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	block := sampleBlock()
	done := make(chan struct{})
	var fileIndex int32
	var dataPos uint32
	var writeErr error
	store.WriteBlockAsync(block, 0, block.Header.Timestamp.Unix(), func(fi int32, pos uint32, err error) {
		fileIndex, dataPos, writeErr = fi, pos, err
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async block write")
	}
	if writeErr != nil {
		t.Fatalf("WriteBlockAsync: %v", writeErr)
	}

	got, err := store.ReadBlock(fileIndex, dataPos)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if got.Header.BlockHash() != block.Header.BlockHash() {
		t.Fatal("round-tripped block hash mismatch")
	}
}

func TestStoreFlushCoinsAsyncThenReadCoin(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), wire.MainNet, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	outpoint := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}
	added := map[wire.OutPoint]*CoinRecord{outpoint: {Amount: 100, PkScript: []byte{0x51}}}

	done := make(chan error, 1)
	store.FlushCoinsAsync(added, nil, chainhash.Hash{2}, func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("FlushCoinsAsync: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async coin flush")
	}

	entry, err := store.ReadCoin(outpoint)
	if err != nil {
		t.Fatalf("ReadCoin: %v", err)
	}
	if entry == nil || entry.Amount() != 100 {
		t.Fatalf("unexpected entry after flush: %+v", entry)
	}
}

func TestStoreLoadChainEmpty(t *testing.T) {
	t.Parallel()

	store, err := Open(t.TempDir(), wire.MainNet, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	snaps, best, err := store.LoadChain()
	if err != nil {
		t.Fatalf("LoadChain: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("expected no persisted snapshots, got %d", len(snaps))
	}
	if !best.IsZero() {
		t.Fatalf("expected zero best block, got %s", best)
	}
}

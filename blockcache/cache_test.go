// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockcache

import (
	"testing"
	"time"

	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/database"
	"github.com/hindsights/xbtc/txscript"
	"github.com/hindsights/xbtc/wire"
)

func newTestCache(t *testing.T) (*Cache, *database.Store) {
	t.Helper()
	params := chaincfg.SimNetParams()
	store, err := database.Open(t.TempDir(), params.Net, 0)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	sigCache, err := txscript.NewSigCache(100)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}
	cache := New(params, store, sigCache)
	if err := cache.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cache, store
}

func childBlock(t *testing.T, params *chaincfg.Params, parent wire.BlockHeader, height int64) *wire.MsgBlock {
	t.Helper()
	parentHash := parent.BlockHash()

	header := wire.BlockHeader{
		Version:   1,
		PrevBlock: parentHash,
		Timestamp: parent.Timestamp.Add(10 * time.Minute),
		Bits:      params.PowLimitBits,
	}
	block := wire.NewMsgBlock(&header)

	coinbase := wire.NewMsgTx(1)
	var nullHash chainhash.Hash
	coinbase.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&nullHash, 0xffffffff), []byte{0x51}, nil))
	coinbase.AddTxOut(wire.NewTxOut(5000000000, []byte{0x51}))
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = coinbase.TxHash()

	// SimNet's pow limit still only covers half the hash space, so search
	// for a nonce satisfying it rather than assuming an arbitrary header
	// clears the target.
	target := blockchain.CompactToBig(header.Bits)
	for nonce := uint32(0); ; nonce++ {
		block.Header.Nonce = nonce
		hash := block.Header.BlockHash()
		if blockchain.HashToBig((*[32]byte)(&hash)).Cmp(target) <= 0 {
			break
		}
		if nonce == ^uint32(0) {
			t.Fatal("exhausted nonce space without finding a valid proof of work")
		}
	}

	return block
}

func TestCacheAddBlockExtendsTip(t *testing.T) {
	t.Parallel()

	cache, store := newTestCache(t)
	defer store.Close()

	params := chaincfg.SimNetParams()
	block := childBlock(t, params, params.GenesisBlock.Header, 1)

	height, moved, err := cache.AddBlock(block, block.Header.Timestamp.Add(time.Second))
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if height != 1 {
		t.Fatalf("expected height 1, got %d", height)
	}
	if !moved {
		t.Fatal("expected block to become the new active tip")
	}

	best := cache.Chain().BestSnapshot()
	if best.Height != 1 {
		t.Fatalf("expected chain tip height 1, got %d", best.Height)
	}
}

func TestCacheAddHeaderThenFlushPersists(t *testing.T) {
	t.Parallel()

	cache, store := newTestCache(t)
	defer store.Close()

	params := chaincfg.SimNetParams()
	block := childBlock(t, params, params.GenesisBlock.Header, 1)

	if _, err := cache.AddHeader(&block.Header, block.Header.Timestamp.Add(time.Second)); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}
	cache.Flush()

	done := make(chan struct{})
	go func() {
		// Give the async disk-worker task a moment to run.
		time.Sleep(50 * time.Millisecond)
		close(done)
	}()
	<-done

	snaps, _, err := store.LoadChain()
	if err != nil {
		t.Fatalf("LoadChain: %v", err)
	}
	found := false
	hash := block.Header.BlockHash()
	for _, snap := range snaps {
		if snap.Hash == hash {
			found = true
		}
	}
	if !found {
		t.Fatal("expected flushed header to be persisted")
	}
}

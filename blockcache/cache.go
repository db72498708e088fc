// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockcache is the orchestrator tying the in-memory block index
// (package blockchain) to on-disk persistence (package database): it is
// the node's single entry point for "a header arrived" and "a full block
// arrived", and owns the dirty-record bookkeeping that decides when those
// changes actually hit disk.
package blockcache

import (
	"sync"
	"time"

	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/database"
	"github.com/hindsights/xbtc/txscript"
	"github.com/hindsights/xbtc/wire"
)

// maxDirtyRecords and flushCooldown bound how long an accepted header or
// block can sit unpersisted in memory.
const (
	maxDirtyRecords = 100000
	flushCooldown   = 5 * time.Second
)

// Cache composes the active header tree with its on-disk backing store,
// presenting the network and sync packages with two operations:
// AddHeader for header-only announcements and AddBlock for fully
// downloaded blocks.
type Cache struct {
	chain    *blockchain.BlockChain
	store    *database.Store
	sigCache *txscript.SigCache

	mu            sync.Mutex
	dirty         map[chainhash.Hash]struct{}
	dirtyFiles    map[int32]struct{}
	addedCoins    map[wire.OutPoint]*database.CoinRecord
	removedCoins  map[wire.OutPoint]struct{}
	bestBlockHash chainhash.Hash
	lastFlush     time.Time
}

// New returns a cache seeded with params' genesis block. Call Load
// afterward to restore any previously persisted chain before accepting
// new headers or blocks.
func New(params *chaincfg.Params, store *database.Store, sigCache *txscript.SigCache) *Cache {
	return &Cache{
		chain:        blockchain.New(params),
		store:        store,
		sigCache:     sigCache,
		dirty:        make(map[chainhash.Hash]struct{}),
		dirtyFiles:   make(map[int32]struct{}),
		addedCoins:   make(map[wire.OutPoint]*database.CoinRecord),
		removedCoins: make(map[wire.OutPoint]struct{}),
		lastFlush:    time.Now(),
	}
}

// Chain returns the underlying header tree and active-chain tracker, for
// packages (netsync, peer) that need read-only chain queries.
func (c *Cache) Chain() *blockchain.BlockChain {
	return c.chain
}

// Load restores the block index and UTXO set from the backing store: read
// every persisted record, drop invalid ones, link parents, and seed the
// active chain up to the persisted best-block hash (or leave it at genesis
// if none was ever recorded).
func (c *Cache) Load() error {
	snaps, best, err := c.store.LoadChain()
	if err != nil {
		return err
	}
	if err := c.chain.SeedFromSnapshots(snaps, best); err != nil {
		return err
	}
	if !best.IsZero() {
		c.bestBlockHash = best
	} else {
		c.bestBlockHash = c.chain.GenesisHash()
	}
	c.lastFlush = time.Now()
	return nil
}

// AddHeader validates and records a single announced header, without
// requiring its block body. The record is queued for persistence and
// flushed according to the cache's dirty-record policy.
func (c *Cache) AddHeader(header *wire.BlockHeader, now time.Time) (*blockchain.NodeSnapshot, error) {
	snap, err := c.chain.AddHeader(header, now)
	if snap != nil {
		c.markDirty(snap.Hash)
		c.checkFlush()
	}
	return snap, err
}

// fetchCoin adapts the chain-state database's synchronous coin lookup to
// the fetch callback blockchain.CheckConnectBlock expects.
func (c *Cache) fetchCoin(outpoint wire.OutPoint) (*blockchain.UtxoEntry, error) {
	return c.store.ReadCoin(outpoint)
}

// AddBlock runs full validation of a downloaded block and, on success,
// queues both its index record and its raw bytes for persistence. It
// returns the block's height and whether it became the new active-chain
// tip.
func (c *Cache) AddBlock(block *wire.MsgBlock, now time.Time) (int64, bool, error) {
	hash := block.Header.BlockHash()
	view := blockchain.NewUtxoViewpoint()

	height, moved, err := c.chain.ProcessBlock(block, view, c.fetchCoin, c.sigCache, now)
	c.markDirty(hash)
	if err != nil {
		c.checkFlush()
		return height, false, err
	}

	if moved {
		c.applyCoinDelta(view)
		c.mu.Lock()
		c.bestBlockHash = hash
		c.mu.Unlock()
	}

	txCount := uint32(len(block.Transactions))
	c.store.WriteBlockAsync(block, height, now.Unix(), func(fileIndex int32, dataPos uint32, werr error) {
		if werr != nil {
			return
		}
		if err := c.chain.RecordBlockData(&hash, txCount, fileIndex, dataPos); err != nil {
			return
		}
		c.mu.Lock()
		c.dirty[hash] = struct{}{}
		c.dirtyFiles[fileIndex] = struct{}{}
		c.mu.Unlock()
	})

	c.checkFlush()
	return height, moved, nil
}

// applyCoinDelta folds a single block's UTXO effect into the cache's
// accumulated add/remove overlay: a spent output is removed from the
// "added" overlay if it was created there, otherwise queued for removal
// from the persistent store; a newly created, still-unspent output is
// recorded as added.
func (c *Cache) applyCoinDelta(view *blockchain.UtxoViewpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for outpoint, entry := range view.Entries() {
		if entry.IsSpent() {
			if _, ok := c.addedCoins[outpoint]; ok {
				delete(c.addedCoins, outpoint)
			} else {
				c.removedCoins[outpoint] = struct{}{}
			}
			continue
		}
		delete(c.removedCoins, outpoint)
		c.addedCoins[outpoint] = &database.CoinRecord{
			Amount:      entry.Amount(),
			PkScript:    entry.PkScript(),
			BlockHeight: entry.BlockHeight(),
			IsCoinBase:  entry.IsCoinBase(),
		}
	}
}

func (c *Cache) markDirty(hash chainhash.Hash) {
	c.mu.Lock()
	c.dirty[hash] = struct{}{}
	c.mu.Unlock()
}

// checkFlush flushes the accumulated dirty index records, coin overlay,
// and best-block pointer to disk once the dirty set grows past
// maxDirtyRecords or flushCooldown has elapsed since the last flush.
func (c *Cache) checkFlush() {
	c.mu.Lock()
	dirtyCount := len(c.dirty)
	shouldFlush := dirtyCount > maxDirtyRecords || time.Since(c.lastFlush) > flushCooldown
	c.mu.Unlock()
	if shouldFlush {
		c.Flush()
	}
}

// Flush unconditionally persists every pending index record, the coin
// overlay, and the best-block pointer in one pair of batches.
func (c *Cache) Flush() {
	c.mu.Lock()
	hashes := make([]chainhash.Hash, 0, len(c.dirty))
	for hash := range c.dirty {
		hashes = append(hashes, hash)
	}
	c.dirty = make(map[chainhash.Hash]struct{})
	dirtyFiles := c.dirtyFiles
	c.dirtyFiles = make(map[int32]struct{})

	added := c.addedCoins
	removed := make([]wire.OutPoint, 0, len(c.removedCoins))
	for outpoint := range c.removedCoins {
		removed = append(removed, outpoint)
	}
	c.addedCoins = make(map[wire.OutPoint]*database.CoinRecord)
	c.removedCoins = make(map[wire.OutPoint]struct{})
	best := c.bestBlockHash
	c.lastFlush = time.Now()
	c.mu.Unlock()

	snaps := make([]*blockchain.NodeSnapshot, 0, len(hashes))
	for _, hash := range hashes {
		if snap := c.chain.Snapshot(&hash); snap != nil {
			snaps = append(snaps, snap)
		}
	}

	c.store.FlushIndexAsync(snaps, dirtyFiles, nil)
	if len(added) > 0 || len(removed) > 0 || !best.IsZero() {
		c.store.FlushCoinsAsync(added, removed, best, nil)
	}
}

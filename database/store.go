// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"sort"
	"sync"

	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// diskTaskQueueSize bounds how many pending disk tasks the network loop
// may queue up before WriteBlockAsync, FlushIndexAsync and FlushCoinsAsync
// start applying backpressure by blocking the caller, keeping memory
// bounded during a burst of incoming blocks.
const diskTaskQueueSize = 256

// Store composes the block-index database, the block-file storage, and
// the chain-state database into the single persistence unit the
// blockcache package depends on. All writes are funneled through one
// background goroutine draining a task channel, so the network's read
// loops never block on disk I/O.
type Store struct {
	net wire.CurrencyNet

	indexDB *BlockIndexDB
	stateDB *ChainStateDB
	files   *BlockFiles

	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Open opens or creates every on-disk component rooted at dataDir and
// starts the disk-worker goroutine. cacheBytes is the total leveldb cache
// budget, split so the chain-state database (the hot path during block
// connection) receives the bulk of it.
func Open(dataDir string, net wire.CurrencyNet, cacheBytes int) (*Store, error) {
	indexCache := cacheBytes / 4
	stateCache := cacheBytes - indexCache
	indexDB, err := OpenBlockIndexDB(dataDir, indexCache)
	if err != nil {
		return nil, err
	}
	stateDB, err := OpenChainStateDB(dataDir, stateCache)
	if err != nil {
		indexDB.Close()
		return nil, err
	}

	_, fileInfos, lastFile, err := indexDB.LoadAll()
	if err != nil {
		indexDB.Close()
		stateDB.Close()
		return nil, err
	}

	s := &Store{
		net:     net,
		indexDB: indexDB,
		stateDB: stateDB,
		files:   NewBlockFiles(dataDir, net, fileInfos, lastFile),
		tasks:   make(chan func(), diskTaskQueueSize),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.worker()
	return s, nil
}

func (s *Store) worker() {
	defer s.wg.Done()
	for {
		select {
		case task := <-s.tasks:
			task()
		case <-s.done:
			// Drain whatever is already queued before exiting so a
			// shutdown doesn't silently drop accepted writes.
			for {
				select {
				case task := <-s.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Close stops the disk-worker goroutine (after draining pending tasks)
// and releases both database handles.
func (s *Store) Close() error {
	close(s.done)
	s.wg.Wait()
	if err := s.indexDB.Close(); err != nil {
		return err
	}
	return s.stateDB.Close()
}

// LoadChain returns every persisted block-index record, sorted by height,
// and the persisted best-block hash, ready to be handed to
// blockchain.BlockChain.SeedFromSnapshots.
func (s *Store) LoadChain() ([]*blockchain.NodeSnapshot, chainhash.Hash, error) {
	snaps, _, _, err := s.indexDB.LoadAll()
	if err != nil {
		return nil, chainhash.Hash{}, err
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Height < snaps[j].Height })

	best, err := s.stateDB.ReadBestBlock()
	if err != nil {
		return nil, chainhash.Hash{}, err
	}
	return snaps, best, nil
}

// WriteBlockAsync serializes and appends block to block-file storage on
// the disk-worker goroutine, invoking done with the resulting position
// once the write completes (or with an error). It does not block the
// caller beyond queuing the task.
func (s *Store) WriteBlockAsync(block *wire.MsgBlock, height, timestamp int64, done func(fileIndex int32, dataPos uint32, err error)) {
	s.tasks <- func() {
		fileIndex, dataPos, err := s.files.WriteBlock(block, height, timestamp)
		if done != nil {
			done(fileIndex, dataPos, err)
		}
	}
}

// ReadBlock synchronously reads back a previously written block. Reads
// are not funneled through the disk worker since they are issued from a
// peer's own response path rather than the shared ingest path, and
// parallel reads from multiple files are safe.
func (s *Store) ReadBlock(fileIndex int32, dataPos uint32) (*wire.MsgBlock, error) {
	return s.files.ReadBlock(fileIndex, dataPos)
}

// FlushIndexAsync persists the given node snapshots and the block-file
// bookkeeping touched by dirtyFiles in one batch on the disk-worker
// goroutine.
func (s *Store) FlushIndexAsync(snaps []*blockchain.NodeSnapshot, dirtyFiles map[int32]struct{}, done func(error)) {
	fileInfos := s.files.DirtyFiles(dirtyFiles)
	lastFile := s.files.LastFile()
	s.tasks <- func() {
		err := s.indexDB.WriteBlocks(snaps, fileInfos, lastFile)
		if done != nil {
			done(err)
		}
	}
}

// ReadCoin synchronously resolves a single outpoint against the
// persistent UTXO set. This is the fetch callback blockchain.ProcessBlock
// consults once a block's own earlier transactions cannot satisfy an
// input.
func (s *Store) ReadCoin(outpoint wire.OutPoint) (*blockchain.UtxoEntry, error) {
	coin, err := s.stateDB.ReadCoin(outpoint)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		return nil, nil
	}
	view := blockchain.NewUtxoViewpoint()
	view.AddEntry(outpoint, coin.Amount, coin.PkScript, coin.BlockHeight, coin.IsCoinBase)
	return view.LookupEntry(outpoint), nil
}

// FlushCoinsAsync persists the given coin overlay and the new best-block
// hash in one batch on the disk-worker goroutine.
func (s *Store) FlushCoinsAsync(added map[wire.OutPoint]*CoinRecord, removed []wire.OutPoint, bestBlock chainhash.Hash, done func(error)) {
	s.tasks <- func() {
		err := s.stateDB.WriteCoins(added, removed, bestBlock)
		if done != nil {
			done(err)
		}
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/txscript"
	"github.com/hindsights/xbtc/wire"
)

// NodeSnapshot is the serializable view of a blockNode exposed to the
// database and blockcache packages so they can persist and reload the
// header tree without reaching into blockNode's unexported fields.
type NodeSnapshot struct {
	Header       wire.BlockHeader
	Hash         chainhash.Hash
	Height       int64
	HaveData     bool
	Valid        bool
	FailedValid  bool
	FailedChild  bool
	TxCount      uint32
	ChainTxCount uint64
	FileIndex    int32
	DataPos      uint32
	UndoPos      uint32
	ChainWork    *big.Int
}

func snapshotOf(node *blockNode) *NodeSnapshot {
	if node == nil {
		return nil
	}
	return &NodeSnapshot{
		Header:       node.Header(),
		Hash:         node.hash,
		Height:       node.height,
		HaveData:     node.status&statusDataStored != 0,
		Valid:        node.status&statusValid != 0,
		FailedValid:  node.status&statusValidateFailed != 0,
		FailedChild:  node.status&statusInvalidAncestor != 0,
		TxCount:      node.txCount,
		ChainTxCount: node.chainTxCount,
		FileIndex:    node.fileIndex,
		DataPos:      node.dataPos,
		UndoPos:      node.undoPos,
		ChainWork:    new(big.Int).Set(node.workSum),
	}
}

// GenesisHash returns the hash of the network's genesis block, the chain's
// permanent height-0 entry.
func (b *BlockChain) GenesisHash() chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return b.bestChain[0].hash
}

// HaveBlock reports whether hash is already known to the block index,
// regardless of whether it is on the active chain or has block data.
func (b *BlockChain) HaveBlock(hash *chainhash.Hash) bool {
	return b.index.HaveBlock(hash)
}

// Snapshot returns a serializable view of the node identified by hash, or
// nil if it isn't known.
func (b *BlockChain) Snapshot(hash *chainhash.Hash) *NodeSnapshot {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return snapshotOf(b.index.LookupNode(hash))
}

// BestHeader returns the node with the greatest accumulated chainwork
// known to the index, independent of whether it (or its ancestors) have
// been fully validated. This is the best known header, tracked separately
// from the active chain tip so a header-only sync can run ahead of block
// validation.
func (b *BlockChain) BestHeader() *NodeSnapshot {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	return snapshotOf(b.index.bestHeader)
}

// AddHeader validates and inserts a single header into the block index.
// Re-adding an already-known header is a no-op that returns the existing
// node's snapshot.  This does not move the active chain tip: moving the
// tip requires the corresponding block's data to be downloaded and
// validated (see ProcessBlock).
func (b *BlockChain) AddHeader(header *wire.BlockHeader, now time.Time) (*NodeSnapshot, error) {
	if err := b.CheckBlockHeaderSanity(header, now); err != nil {
		hash := header.BlockHash()
		if existing := b.index.LookupNode(&hash); existing != nil {
			return snapshotOf(existing), nil
		}
		return nil, err
	}

	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	hash := header.BlockHash()
	if existing := b.index.LookupNode(&hash); existing != nil {
		return snapshotOf(existing), nil
	}

	parent := b.index.LookupNode(&header.PrevBlock)
	if parent == nil {
		return nil, ruleErrorf(ErrMissingParent, "header %s has unknown parent %s", hash, header.PrevBlock)
	}
	if parent.status&(statusValidateFailed|statusInvalidAncestor) != 0 {
		node := newBlockNode(header, parent)
		node.status |= statusInvalidAncestor
		b.index.AddNode(node)
		return snapshotOf(node), ruleErrorf(ErrInvalidAncestor, "header %s descends from failed block %s", hash, parent.hash)
	}

	node := newBlockNode(header, parent)
	b.index.AddNode(node)
	if b.index.bestHeader == nil || node.workSum.Cmp(b.index.bestHeader.workSum) > 0 {
		b.index.bestHeader = node
	}
	return snapshotOf(node), nil
}

// RecordBlockData marks a node as having its transaction body stored on
// disk at the given file position and propagates its chain-wide
// transaction count from its parent.
func (b *BlockChain) RecordBlockData(hash *chainhash.Hash, txCount uint32, fileIndex int32, dataPos uint32) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	node := b.index.LookupNode(hash)
	if node == nil {
		return ruleErrorf(ErrUnknownBlock, "block %s is not known", hash)
	}
	node.txCount = txCount
	node.fileIndex = fileIndex
	node.dataPos = dataPos
	node.status |= statusDataStored
	node.chainTxCount = uint64(txCount)
	if node.parent != nil && node.parent.chainTxCount > 0 {
		node.chainTxCount += node.parent.chainTxCount
	}
	return nil
}

// RecordUndoPosition records where a block's undo data was written.
func (b *BlockChain) RecordUndoPosition(hash *chainhash.Hash, undoPos uint32) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	node := b.index.LookupNode(hash)
	if node == nil {
		return ruleErrorf(ErrUnknownBlock, "block %s is not known", hash)
	}
	node.undoPos = undoPos
	return nil
}

// MarkFailed flags a node (and, on first discovery, its descendants) as
// failed. Descendant propagation happens lazily: a header accepted after
// its parent is already failed is marked failed-child immediately in
// AddHeader.
func (b *BlockChain) MarkFailed(hash *chainhash.Hash) {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	if node := b.index.LookupNode(hash); node != nil {
		node.status |= statusValidateFailed
	}
}

// ProcessBlock runs full validation of a block against the node created
// for its header (creating it first if needed), applies its effect to
// view, and on success activates it as the new chain tip if it
// extends the current tip and has no greater-chainwork competing
// validated sibling. fetch resolves UTXO lookups not satisfiable from
// earlier transactions in the same block. It returns the node's height
// and whether the active chain tip moved.
func (b *BlockChain) ProcessBlock(block *wire.MsgBlock, view *UtxoViewpoint,
	fetch func(wire.OutPoint) (*UtxoEntry, error), sigCache *txscript.SigCache, now time.Time) (int64, bool, error) {

	headerSnap, err := b.AddHeader(&block.Header, now)
	if err != nil {
		return 0, false, err
	}

	b.chainLock.Lock()
	node := b.index.LookupNode(&headerSnap.Hash)
	b.chainLock.Unlock()
	if node == nil {
		return 0, false, ruleErrorf(ErrUnknownBlock, "block %s header vanished from index", headerSnap.Hash)
	}

	b.index.SetStatusFlags(node, statusDataStored)
	node.txCount = uint32(len(block.Transactions))

	if node.height == 0 {
		// Genesis has no inputs to connect; it is valid by definition.
		b.index.SetStatusFlags(node, statusValid)
		return 0, true, nil
	}

	if err := b.CheckConnectBlock(node, block, view, fetch, sigCache); err != nil {
		b.MarkFailed(&node.hash)
		return node.height, false, err
	}
	b.index.SetStatusFlags(node, statusValid)

	b.chainLock.Lock()
	defer b.chainLock.Unlock()
	if node.parent == b.tip() && node.workSum.Cmp(b.tip().workSum) > 0 {
		b.reorganizeTo(node)
		return node.height, true, nil
	}
	return node.height, false, nil
}

// LastCommonAncestor exposes findLastCommonAncestor to the netsync
// package, which needs it to compute a peer's download window.
func (b *BlockChain) LastCommonAncestor(a, bb *chainhash.Hash) *chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	na := b.index.LookupNode(a)
	nb := b.index.LookupNode(bb)
	common := findLastCommonAncestor(na, nb)
	if common == nil {
		return nil
	}
	h := common.hash
	return &h
}

// AncestorAtHeight returns the ancestor of the node identified by hash at
// the given height, or nil if unknown.
func (b *BlockChain) AncestorAtHeight(hash *chainhash.Hash, height int64) *chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	node := b.index.LookupNode(hash)
	if node == nil {
		return nil
	}
	anc := node.ancestor(height)
	if anc == nil {
		return nil
	}
	h := anc.hash
	return &h
}

// NodeAtHeight returns the hash of the active-chain node at height, or nil
// if height is out of range.
func (b *BlockChain) NodeAtHeight(height int64) *chainhash.Hash {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	node := b.nodeByHeight(height)
	if node == nil {
		return nil
	}
	h := node.hash
	return &h
}

// SeedFromSnapshots rebuilds the in-memory block index from a set of
// previously-persisted node snapshots, linking parents by hash and
// recomputing chainwork. Invalid headers (those failing sanity) are
// dropped rather than linked. Snapshots must be
// supplied in increasing-height order (the database package's Store.LoadChain
// sorts the records it loads by height before returning them).
func (b *BlockChain) SeedFromSnapshots(snaps []*NodeSnapshot, bestBlockHash chainhash.Hash) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	for _, snap := range snaps {
		if snap.Hash == b.bestChain[0].hash {
			continue // genesis is already seeded by New
		}
		if err := b.CheckBlockHeaderSanity(&snap.Header, time.Now()); err != nil {
			continue // invalid header; drop it (and, as orphans, its descendants)
		}
		parent := b.index.LookupNode(&snap.Header.PrevBlock)
		if parent == nil {
			continue // orphaned record; drop rather than guess
		}
		node := newBlockNode(&snap.Header, parent)
		node.txCount = snap.TxCount
		node.chainTxCount = snap.ChainTxCount
		node.fileIndex = snap.FileIndex
		node.dataPos = snap.DataPos
		node.undoPos = snap.UndoPos
		if snap.HaveData {
			node.status |= statusDataStored
		}
		if snap.Valid {
			node.status |= statusValid
		}
		if snap.FailedValid {
			node.status |= statusValidateFailed
		}
		if snap.FailedChild {
			node.status |= statusInvalidAncestor
		}
		b.index.AddNode(node)
		if b.index.bestHeader == nil || node.workSum.Cmp(b.index.bestHeader.workSum) > 0 {
			b.index.bestHeader = node
		}
	}

	if bestBlockHash.IsZero() {
		return nil
	}
	tipNode := b.index.LookupNode(&bestBlockHash)
	if tipNode == nil {
		return ruleErrorf(ErrUnknownBlock, "persisted best block %s is not present in the loaded index", bestBlockHash)
	}
	b.reorganizeTo(tipNode)
	return nil
}

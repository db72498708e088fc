// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"

	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// BlockLocator is used to help a peer locate the common ancestor of its
// chain and the local one.  It holds block hashes in reverse order: the
// first few entries step back one block at a time, after which the step
// doubles on every entry, always terminating with the genesis hash.
type BlockLocator []*chainhash.Hash

// BlockChain maintains the in-memory header tree and tracks the active
// (best) chain, selected by accumulated proof-of-work.
type BlockChain struct {
	chainParams *chaincfg.Params

	chainLock sync.RWMutex
	index     *blockIndex
	bestChain []*blockNode // indexed by height; bestChain[0] is genesis
}

// New returns a BlockChain seeded only with the genesis block of the given
// network parameters.  Loading any further headers/blocks from storage is
// the caller's responsibility (see the database package's load sequence).
func New(params *chaincfg.Params) *BlockChain {
	bc := &BlockChain{
		chainParams: params,
		index:       newBlockIndex(),
	}

	genesisNode := newBlockNode(&params.GenesisBlock.Header, nil)
	genesisNode.status = statusDataStored | statusValid
	bc.index.AddNode(genesisNode)
	bc.index.bestHeader = genesisNode
	bc.bestChain = []*blockNode{genesisNode}

	return bc
}

// BestSnapshot describes the current best-chain tip.
type BestSnapshot struct {
	Hash       chainhash.Hash
	Height     int64
	Bits       uint32
	MedianTime int64
}

// BestSnapshot returns a consistent snapshot of the current tip.
func (b *BlockChain) BestSnapshot() *BestSnapshot {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	tip := b.tip()
	return &BestSnapshot{
		Hash:       tip.hash,
		Height:     tip.height,
		Bits:       tip.bits,
		MedianTime: tip.calcPastMedianTime().Unix(),
	}
}

// tip returns the current best chain tip.  Callers must hold chainLock.
func (b *BlockChain) tip() *blockNode {
	return b.bestChain[len(b.bestChain)-1]
}

// nodeByHeight returns the node on the active chain at the given height, or
// nil if the height is out of range.
func (b *BlockChain) nodeByHeight(height int64) *blockNode {
	if height < 0 || height >= int64(len(b.bestChain)) {
		return nil
	}
	return b.bestChain[height]
}

// contains reports whether node is on the active (best) chain.
func (b *BlockChain) contains(node *blockNode) bool {
	return b.nodeByHeight(node.height) == node
}

// FetchHeader returns the header belonging to the block identified by hash.
func (b *BlockChain) FetchHeader(hash *chainhash.Hash) (wire.BlockHeader, error) {
	node := b.index.LookupNode(hash)
	if node == nil {
		return wire.BlockHeader{}, ruleErrorf(ErrUnknownBlock, "block %s is not known", hash)
	}
	return node.Header(), nil
}

// reorganizeTo rewrites bestChain so it ends at node, rebuilding the whole
// slice from node's own parent chain back to genesis.  Callers must hold
// chainLock for writes.
func (b *BlockChain) reorganizeTo(node *blockNode) {
	// Collect node's ancestor chain from genesis forward.
	chain := make([]*blockNode, node.height+1)
	for n := node; n != nil; n = n.parent {
		chain[n.height] = n
	}
	b.bestChain = chain
}

// findLastCommonAncestor returns the highest block node both a and b have
// in common: the higher node is brought down to the lower node's height via
// the skip list, then both walk back via parent pointers together until
// they meet.
func findLastCommonAncestor(a, b *blockNode) *blockNode {
	if a == nil || b == nil {
		return nil
	}
	if a.height > b.height {
		a = a.ancestor(b.height)
	} else if b.height > a.height {
		b = b.ancestor(a.height)
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

// locator builds a block locator starting from node (or the current tip if
// node is nil): the first ten entries step back one block at a time, after
// which the step doubles, and the genesis hash always terminates the list.
func (b *BlockChain) locator(node *blockNode) BlockLocator {
	if node == nil {
		node = b.tip()
	}

	var loc BlockLocator
	step := int64(1)
	for node != nil {
		hash := node.hash
		loc = append(loc, &hash)
		if node.height == 0 {
			break
		}

		height := node.height - step
		if height < 0 {
			height = 0
		}
		node = node.ancestor(height)

		// The stride stays at one block until more than ten entries have
		// been emitted, then doubles after each move, so it only affects
		// the following move.
		if len(loc) > 10 {
			step *= 2
		}
	}
	return loc
}

// BlockLocatorFromHash returns a block locator rooted at the block
// identified by hash, used to request headers/blocks from a peer. A hash
// not present in the index yields a locator holding only the genesis hash.
func (b *BlockChain) BlockLocatorFromHash(hash *chainhash.Hash) BlockLocator {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	node := b.index.LookupNode(hash)
	if node == nil {
		genesisHash := b.bestChain[0].hash
		return BlockLocator{&genesisHash}
	}
	return b.locator(node)
}

// LocateBlockNode finds the highest block in the locator that is known and
// also on the active chain, returning the first common ancestor to resume a
// headers/blocks request from.
func (b *BlockChain) LocateBlockNode(locator BlockLocator) *blockNode {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	for _, hash := range locator {
		node := b.index.LookupNode(hash)
		if node != nil && b.contains(node) {
			return node
		}
	}
	return b.bestChain[0]
}

// String implements fmt.Stringer for debugging.
func (b *BlockChain) String() string {
	tip := b.tip()
	return fmt.Sprintf("BlockChain{height=%d tip=%s}", tip.height, tip.hash)
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"sync"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// blockStatus is a bit field representing the validation state of a header
// or block recorded in a blockNode.
type blockStatus uint32

const (
	// statusDataStored indicates the block's full contents have been
	// written to block storage, not just its header.
	statusDataStored blockStatus = 1 << iota

	// statusValid indicates the block has passed all validation rules.
	statusValid

	// statusValidateFailed indicates the block has failed validation.
	statusValidateFailed

	// statusInvalidAncestor indicates one of the block's ancestors has
	// failed validation, making this block invalid by extension.
	statusInvalidAncestor
)

// KnownValid returns whether the block is known to be valid.
func (s blockStatus) KnownValid() bool {
	return s&statusValid != 0
}

// KnownInvalid returns whether the block is known to be invalid, either
// directly or due to an invalid ancestor.
func (s blockStatus) KnownInvalid() bool {
	return s&(statusValidateFailed|statusInvalidAncestor) != 0
}

// blockNode represents a block within the block tree.  Each node carries
// enough information to reconstruct the block's header, derive its
// accumulated proof-of-work, and walk to an arbitrary ancestor via the
// skip-list pointer instead of a linear parent-chain walk.
//
// A blockNode is created as soon as its header is accepted and is mutated
// in place thereafter (status bits, position bookkeeping) rather than ever
// being replaced or removed from the index, matching the "created on first
// header acceptance" lifecycle of the index this node belongs to.
type blockNode struct {
	parent *blockNode
	skip   *blockNode

	hash       chainhash.Hash
	height     int64
	version    int32
	bits       uint32
	timestamp  int64
	merkleRoot chainhash.Hash
	nonce      uint32

	workSum *big.Int

	status blockStatus

	// The remaining fields record the on-disk location and transaction
	// bookkeeping needed by the database and blockcache packages to
	// persist and reload this node.  They are zero until the block's
	// body is written to block storage.
	txCount      uint32
	chainTxCount uint64
	fileIndex    int32
	dataPos      uint32
	undoPos      uint32
}

// newBlockNode returns a new block node for the given block header, linked
// to the given parent, with its skip pointer computed once and its
// accumulated work initialized relative to the parent's.
func newBlockNode(header *wire.BlockHeader, parent *blockNode) *blockNode {
	node := &blockNode{
		hash:       header.BlockHash(),
		fileIndex:  -1,
		parent:     parent,
		version:    header.Version,
		bits:       header.Bits,
		timestamp:  header.Timestamp.Unix(),
		merkleRoot: header.MerkleRoot,
		nonce:      header.Nonce,
	}
	if parent != nil {
		node.height = parent.height + 1
		node.skip = parent.ancestor(skipHeight(node.height))
		node.workSum = new(big.Int).Add(parent.workSum, CalcWork(header.Bits))
	} else {
		node.workSum = CalcWork(header.Bits)
	}
	return node
}

// Header reconstructs the wire.BlockHeader the node was built from.
func (node *blockNode) Header() wire.BlockHeader {
	var prevHash chainhash.Hash
	if node.parent != nil {
		prevHash = node.parent.hash
	}
	return wire.BlockHeader{
		Version:    node.version,
		PrevBlock:  prevHash,
		MerkleRoot: node.merkleRoot,
		Timestamp:  time.Unix(node.timestamp, 0),
		Bits:       node.bits,
		Nonce:      node.nonce,
	}
}

// invertLowestOne clears the lowest set bit of n.
func invertLowestOne(n int64) int64 {
	return n & (n - 1)
}

// skipHeight returns the height the skip pointer of a node at height h
// should reference:
//
//	skip(h) = invertLowestOne(invertLowestOne(h-1)) + 1   when h is odd
//	skip(h) = invertLowestOne(h)                          when h is even
func skipHeight(h int64) int64 {
	if h < 2 {
		return 0
	}
	if h&1 == 1 {
		return invertLowestOne(invertLowestOne(h-1)) + 1
	}
	return invertLowestOne(h)
}

// ancestor returns the ancestor block node at the provided height by
// walking skip and parent pointers, choosing whichever stays at or above
// the destination height and minimizes the number of hops.  It returns nil
// if the height is negative or greater than the node's own height.
func (node *blockNode) ancestor(height int64) *blockNode {
	if height < 0 || height > node.height {
		return nil
	}

	n := node
	for n != nil && n.height != height {
		skipHeightForN := skipHeight(n.height)
		skipHeightForParent := skipHeight(n.height - 1)
		if n.skip != nil && (skipHeightForN == height ||
			(skipHeightForN > height && !(skipHeightForParent < skipHeightForN-2 &&
				skipHeightForParent >= height))) {
			n = n.skip
		} else {
			n = n.parent
		}
	}
	return n
}

// relativeAncestor returns the ancestor block node a fixed distance before
// this node, or nil if the distance exceeds the node's height.
func (node *blockNode) relativeAncestor(distance int64) *blockNode {
	return node.ancestor(node.height - distance)
}

// calcPastMedianTime calculates the median time of the previous several
// block timestamps.  A new header's timestamp must exceed the median of
// the last 11 blocks.
func (node *blockNode) calcPastMedianTime() time.Time {
	const medianTimeBlocks = 11

	timestamps := make([]int64, 0, medianTimeBlocks)
	iterNode := node
	for i := 0; i < medianTimeBlocks && iterNode != nil; i++ {
		timestamps = append(timestamps, iterNode.timestamp)
		iterNode = iterNode.parent
	}

	// Insertion sort; the slice is always small.
	for i := 1; i < len(timestamps); i++ {
		v := timestamps[i]
		j := i - 1
		for j >= 0 && timestamps[j] > v {
			timestamps[j+1] = timestamps[j]
			j--
		}
		timestamps[j+1] = v
	}

	medianTimestamp := timestamps[len(timestamps)/2]
	return time.Unix(medianTimestamp, 0)
}

// blockIndex tracks every known blockNode by hash.  Nodes reference one
// another through ordinary pointers; the garbage collector handles the
// cycles the prev and skip links create.
type blockIndex struct {
	mtx   sync.RWMutex
	index map[chainhash.Hash]*blockNode

	// bestHeader is the node with the greatest accumulated chainwork seen
	// so far, tracked independent of the active chain tip (see
	// BlockChain.BestHeader).
	bestHeader *blockNode
}

// newBlockIndex returns an empty block index ready for use.
func newBlockIndex() *blockIndex {
	return &blockIndex{
		index: make(map[chainhash.Hash]*blockNode),
	}
}

// AddNode inserts a block node into the index.  It is the caller's
// responsibility to ensure the node's parent, if any, is already present.
func (bi *blockIndex) AddNode(node *blockNode) {
	bi.mtx.Lock()
	bi.index[node.hash] = node
	bi.mtx.Unlock()
}

// LookupNode returns the block node identified by hash, or nil if it is not
// known to the index.
func (bi *blockIndex) LookupNode(hash *chainhash.Hash) *blockNode {
	bi.mtx.RLock()
	node := bi.index[*hash]
	bi.mtx.RUnlock()
	return node
}

// HaveBlock returns whether the index already contains a node for hash.
func (bi *blockIndex) HaveBlock(hash *chainhash.Hash) bool {
	return bi.LookupNode(hash) != nil
}

// SetStatusFlags merges additional status bits into the node's status.
func (bi *blockIndex) SetStatusFlags(node *blockNode, flags blockStatus) {
	bi.mtx.Lock()
	node.status |= flags
	bi.mtx.Unlock()
}

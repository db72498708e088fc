// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// TestNewChainSeedsGenesis ensures New() seeds the chain with the network's
// genesis block as its tip at height 0.
func TestNewChainSeedsGenesis(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	bc := New(params)

	snap := bc.BestSnapshot()
	if snap.Height != 0 {
		t.Fatalf("expected tip height 0, got %d", snap.Height)
	}
	if snap.Hash != params.GenesisHash {
		t.Fatalf("expected tip hash %s, got %s", params.GenesisHash, snap.Hash)
	}
}

// TestFindLastCommonAncestor builds two forks off a shared prefix and
// ensures findLastCommonAncestor identifies the fork point.
func TestFindLastCommonAncestor(t *testing.T) {
	t.Parallel()

	shared := chainOfNodes(10)
	forkA := extendChain(shared[len(shared)-1], 5)
	forkB := extendChain(shared[len(shared)-1], 3)

	tipA := forkA[len(forkA)-1]
	tipB := forkB[len(forkB)-1]

	common := findLastCommonAncestor(tipA, tipB)
	if common == nil || common.hash != shared[len(shared)-1].hash {
		t.Fatalf("expected common ancestor %s, got %v", shared[len(shared)-1].hash, common)
	}
}

// extendChain appends n additional linear blocks onto base, returning only
// the newly created nodes.
func extendChain(base *blockNode, n int) []*blockNode {
	nodes := make([]*blockNode, 0, n)
	prev := base
	for i := 0; i < n; i++ {
		header := prev.Header()
		header.PrevBlock = prev.hash
		header.Nonce = uint32(i + 1) // vary the hash from block to block
		node := newBlockNode(&header, prev)
		nodes = append(nodes, node)
		prev = node
	}
	return nodes
}

// TestLocatorEndsAtGenesis ensures a block locator always terminates with
// the genesis block's hash.
func TestLocatorEndsAtGenesis(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	bc := New(params)

	nodes := extendChain(bc.tip(), 40)
	bc.index.AddNode(bc.tip())
	for _, n := range nodes {
		bc.index.AddNode(n)
	}
	bc.bestChain = append(bc.bestChain, nodes...)

	loc := bc.locator(nil)
	if len(loc) == 0 {
		t.Fatalf("locator: expected at least one entry")
	}
	last := loc[len(loc)-1]
	if *last != params.GenesisHash {
		t.Fatalf("locator should end at genesis: got %s, want %s", last, params.GenesisHash)
	}
}

// TestLocatorFollowsStepSchedule ensures a block locator steps back one
// block at a time for its first twelve entries and doubles the stride on
// every move after that, ending at genesis.
func TestLocatorFollowsStepSchedule(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	bc := New(params)

	nodes := extendChain(bc.tip(), 40)
	for _, n := range nodes {
		bc.index.AddNode(n)
	}
	bc.bestChain = append(bc.bestChain, nodes...)

	heightOf := make(map[chainhash.Hash]int64, len(nodes)+1)
	heightOf[params.GenesisHash] = 0
	for _, n := range nodes {
		heightOf[n.hash] = n.height
	}

	tipHash := bc.tip().hash
	loc := bc.BlockLocatorFromHash(&tipHash)

	want := []int64{40, 39, 38, 37, 36, 35, 34, 33, 32, 31, 30, 29, 27, 23, 15, 0}
	if len(loc) != len(want) {
		t.Fatalf("locator has %d entries, want %d", len(loc), len(want))
	}
	for i, hash := range loc {
		h, ok := heightOf[*hash]
		if !ok {
			t.Fatalf("locator entry %d references unknown hash %s", i, hash)
		}
		if h != want[i] {
			t.Fatalf("locator entry %d has height %d, want %d", i, h, want[i])
		}
	}
}

// TestBlockLocatorFromUnknownHash ensures an unknown root hash yields a
// locator holding only the genesis hash.
func TestBlockLocatorFromUnknownHash(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	bc := New(params)

	unknown := chainhash.Hash{0xde, 0xad}
	loc := bc.BlockLocatorFromHash(&unknown)
	if len(loc) != 1 || *loc[0] != params.GenesisHash {
		t.Fatalf("expected a genesis-only locator for an unknown hash, got %v", loc)
	}
}

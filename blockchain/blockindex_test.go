// Copyright (c) 2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"
	"time"

	"github.com/hindsights/xbtc/wire"
)

// chainOfNodes builds a linear chain of n block nodes extending genesis,
// each one second apart, for use by tests that need a populated index.
func chainOfNodes(n int) []*blockNode {
	genesis := &blockNode{height: 0, bits: 0x1d00ffff, timestamp: 1231006505}
	genesis.workSum = CalcWork(genesis.bits)
	nodes := []*blockNode{genesis}
	for i := 1; i < n; i++ {
		header := &wire.BlockHeader{
			PrevBlock: nodes[i-1].hash,
			Bits:      0x1d00ffff,
			Timestamp: time.Unix(nodes[i-1].timestamp+600, 0),
		}
		node := newBlockNode(header, nodes[i-1])
		nodes = append(nodes, node)
	}
	return nodes
}

// TestSkipHeight spot-checks skipHeight against the closed-form definition
// for a handful of even and odd heights.
func TestSkipHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		height int64
		want   int64
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{4, 0},
		{1023, 1017},
	}
	for _, test := range tests {
		if got := skipHeight(test.height); got != test.want {
			t.Errorf("skipHeight(%d): got %d, want %d", test.height, got, test.want)
		}
	}
}

// TestAncestorWalk ensures ancestor() returns the node actually present at
// the active chain's height for a representative set of destination
// heights, including height 0 (genesis) and the node's own height.
func TestAncestorWalk(t *testing.T) {
	t.Parallel()

	nodes := chainOfNodes(200)
	tip := nodes[len(nodes)-1]

	for _, height := range []int64{0, 1, 50, 100, 199} {
		got := tip.ancestor(height)
		if got == nil {
			t.Fatalf("ancestor(%d): got nil", height)
		}
		if got.height != height || got.hash != nodes[height].hash {
			t.Fatalf("ancestor(%d): got height %d hash %s, want height %d hash %s",
				height, got.height, got.hash, height, nodes[height].hash)
		}
	}

	if tip.ancestor(-1) != nil {
		t.Fatalf("ancestor(-1): expected nil")
	}
	if tip.ancestor(tip.height+1) != nil {
		t.Fatalf("ancestor(height+1): expected nil")
	}
}

// TestCalcPastMedianTime mirrors the historical test vectors for the
// median-of-last-11-timestamps rule.
func TestCalcPastMedianTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		timestamps []int64
		expected   int64
	}{
		{"one block", []int64{1517188771}, 1517188771},
		{"two blocks, in order", []int64{1517188771, 1517188831}, 1517188771},
		{"three blocks, in order", []int64{1517188771, 1517188831, 1517188891}, 1517188831},
		{"three blocks, out of order", []int64{1517188771, 1517188891, 1517188831}, 1517188831},
	}

	for _, test := range tests {
		var node *blockNode
		for _, ts := range test.timestamps {
			node = &blockNode{timestamp: ts, parent: node}
			if node.parent != nil {
				node.height = node.parent.height + 1
			}
		}
		got := node.calcPastMedianTime().Unix()
		if got != test.expected {
			t.Errorf("%s: got %d, want %d", test.name, got, test.expected)
		}
	}
}

// TestBlockIndexAddLookup ensures AddNode/LookupNode/HaveBlock agree with
// each other.
func TestBlockIndexAddLookup(t *testing.T) {
	t.Parallel()

	bi := newBlockIndex()
	nodes := chainOfNodes(5)
	for _, n := range nodes {
		bi.AddNode(n)
	}

	for _, n := range nodes {
		if !bi.HaveBlock(&n.hash) {
			t.Fatalf("HaveBlock(%s): expected true", n.hash)
		}
		if got := bi.LookupNode(&n.hash); got != n {
			t.Fatalf("LookupNode(%s): got %v, want %v", n.hash, got, n)
		}
	}

	unknown := nodes[len(nodes)-1].hash
	unknown[0] ^= 0xff
	if bi.HaveBlock(&unknown) {
		t.Fatalf("HaveBlock: expected false for an unknown hash")
	}
}

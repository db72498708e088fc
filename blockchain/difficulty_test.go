// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/hindsights/xbtc/chaincfg"
)

// TestCalcNextRequiredDifficultyGenesis ensures a nil previous node (the
// block after none, i.e. the genesis block itself) returns the network's
// proof-of-work limit.
func TestCalcNextRequiredDifficultyGenesis(t *testing.T) {
	t.Parallel()

	bc := &BlockChain{chainParams: chaincfg.MainNetParams()}
	if got := bc.calcNextRequiredDifficulty(nil); got != bc.chainParams.PowLimitBits {
		t.Fatalf("got %08x, want %08x", got, bc.chainParams.PowLimitBits)
	}
}

// TestCalcNextRequiredDifficultyUnchangedMidWindow ensures a block that
// isn't on a retarget boundary simply inherits its parent's bits.
func TestCalcNextRequiredDifficultyUnchangedMidWindow(t *testing.T) {
	t.Parallel()

	bc := &BlockChain{chainParams: chaincfg.MainNetParams()}
	prev := &blockNode{height: 5, bits: 0x1b0404cb}
	if got := bc.calcNextRequiredDifficulty(prev); got != prev.bits {
		t.Fatalf("got %08x, want unchanged %08x", got, prev.bits)
	}
}

// TestCalcNextRequiredDifficultyRetarget ensures a retarget halves the
// target (doubles the difficulty) when the actual timespan is half the
// target timespan, subject to the adjustment-factor clamp.
func TestCalcNextRequiredDifficultyRetarget(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	bc := &BlockChain{chainParams: params}

	blocksPerRetarget := params.TargetTimespan / params.TargetTimePerBlock

	first := &blockNode{height: 0, bits: 0x1d00ffff, timestamp: 0}
	node := first
	for h := int64(1); h < blocksPerRetarget; h++ {
		node = &blockNode{height: h, bits: 0x1d00ffff, timestamp: 0, parent: node}
	}
	// Actual timespan is half the target: difficulty should increase,
	// i.e. the resulting target should be smaller than the starting one.
	node.timestamp = params.TargetTimespan / 2

	got := bc.calcNextRequiredDifficulty(node)
	gotTarget := CompactToBig(got)
	oldTarget := CompactToBig(node.bits)
	if gotTarget.Cmp(oldTarget) >= 0 {
		t.Fatalf("expected a smaller (harder) target after a fast window: got %s, old %s", gotTarget, oldTarget)
	}
}

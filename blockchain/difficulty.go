// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// calcNextRequiredDifficulty calculates the required difficulty bits for
// the block following prevNode: every
// TargetTimespan/TargetTimePerBlock blocks (2016 on mainnet), the target is
// rescaled by the ratio of actual-to-expected elapsed time, clamped to a
// factor of RetargetAdjustmentFactor in either direction and to PowLimit.
func (b *BlockChain) calcNextRequiredDifficulty(prevNode *blockNode) uint32 {
	params := b.chainParams

	// Genesis block.
	if prevNode == nil {
		return params.PowLimitBits
	}

	nextHeight := prevNode.height + 1
	blocksPerRetarget := params.TargetTimespan / params.TargetTimePerBlock
	if nextHeight%blocksPerRetarget != 0 {
		return prevNode.bits
	}

	// Walk back blocksPerRetarget-1 blocks: the node at the start of the
	// window whose elapsed time is being measured.
	firstNode := prevNode.relativeAncestor(blocksPerRetarget - 1)
	if firstNode == nil {
		return params.PowLimitBits
	}

	actualTimespan := prevNode.timestamp - firstNode.timestamp
	adjustedTimespan := clampTimespan(actualTimespan, params.TargetTimespan, params.RetargetAdjustmentFactor)

	oldTarget := CompactToBig(prevNode.bits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(params.TargetTimespan))

	if newTarget.Cmp(params.PowLimit) > 0 {
		newTarget.Set(params.PowLimit)
	}

	return BigToCompact(newTarget)
}

// clampTimespan restricts actualTimespan to within a factor of
// RetargetAdjustmentFactor of targetTimespan, preventing a single retarget
// from swinging difficulty too far in either direction.
func clampTimespan(actualTimespan, targetTimespan, adjustmentFactor int64) int64 {
	minTimespan := targetTimespan / adjustmentFactor
	maxTimespan := targetTimespan * adjustmentFactor
	if actualTimespan < minTimespan {
		return minTimespan
	}
	if actualTimespan > maxTimespan {
		return maxTimespan
	}
	return actualTimespan
}

// CalcNextRequiredDifficulty calculates the difficulty bits required for
// the block that extends the chain tip identified by hash.
//
// This function is safe for concurrent access.
func (b *BlockChain) CalcNextRequiredDifficulty(hash *chainhash.Hash) (uint32, error) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()

	node := b.index.LookupNode(hash)
	if node == nil {
		return 0, ruleErrorf(ErrUnknownBlock, "block %s is not known", hash)
	}
	return b.calcNextRequiredDifficulty(node), nil
}

// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// Checkpoint identifies a known good point in the block chain that new
// blocks passing through it must match, protecting against long low-work
// reorgs near the chain tip.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// DNSSeed identifies a DNS seed used to discover initial peers.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// Params defines a network by its genesis block, its proof-of-work limit,
// its wire magic, and the bootstrap information needed to join it.
type Params struct {
	Name        string
	Net         wire.CurrencyNet
	DefaultPort string
	DNSSeeds    []DNSSeed

	// Chain parameters.
	GenesisBlock *wire.MsgBlock
	GenesisHash  chainhash.Hash
	PowLimit     *big.Int
	PowLimitBits uint32

	// Difficulty retargeting parameters.
	TargetTimePerBlock       int64 // seconds
	TargetTimespan           int64 // seconds
	RetargetAdjustmentFactor int64
	ReduceMinDifficulty      bool
	MinDiffReductionTime     int64

	// SubsidyHalvingInterval is the number of blocks between subsidy
	// halvings.
	SubsidyHalvingInterval int64

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// CoinbaseMaturity is the number of blocks required before newly
	// generated coins (coinbase outputs) may be spent.
	CoinbaseMaturity uint16

	// BIP-30 duplicate-coinbase exemption heights.
	BIP30Exceptions map[int64]chainhash.Hash
}

// newHashFromStr converts a big-endian hex hash string into a *chainhash.Hash
// and panics on error, which is acceptable since these are hard-coded and
// checked against txt values.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/hindsights/xbtc/wire"
)

// testNetPowLimit is the highest proof of work value a test network block
// can have. It is the value 2^224 - 1.
var testNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// TestNetParams returns the network parameters for the test network.
func TestNetParams() *Params {
	genesisBlock := newGenesisBlock(
		1,
		time.Unix(1296688602, 0), // 2011-02-02 23:16:42 UTC
		0x1d00ffff,
		414098458,
		newGenesisCoinbaseTx(mainNetGenesisCoinbaseSigScript, mainNetGenesisCoinbasePkScript),
	)

	return &Params{
		Name:        "testnet",
		Net:         wire.TestNet,
		DefaultPort: "18333",
		DNSSeeds: []DNSSeed{
			{"testnet-seed.bitcoin.jonasschnelli.ch", true},
			{"seed.tbtc.petertodd.org", true},
		},

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     testNetPowLimit,
		PowLimitBits: 0x1d00ffff,

		TargetTimePerBlock:       10 * 60,
		TargetTimespan:           14 * 24 * 60 * 60,
		RetargetAdjustmentFactor: 4,
		ReduceMinDifficulty:      true,
		MinDiffReductionTime:     20 * 60, // twice the normal block time

		SubsidyHalvingInterval: 210000,
		CoinbaseMaturity:       100,

		Checkpoints: nil,
	}
}

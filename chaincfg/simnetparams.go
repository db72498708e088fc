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

// simNetPowLimit is the highest proof of work value a simulation network
// block can have. It is the value 2^255 - 1, deliberately permissive so
// test blocks can be mined quickly.
var simNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// SimNetParams returns the network parameters for the simulation test
// network, used for local multi-node testing.
func SimNetParams() *Params {
	genesisBlock := newGenesisBlock(
		1,
		time.Unix(1401292357, 0),
		0x207fffff,
		2,
		newGenesisCoinbaseTx(mainNetGenesisCoinbaseSigScript, mainNetGenesisCoinbasePkScript),
	)

	return &Params{
		Name:        "simnet",
		Net:         wire.SimNet,
		DefaultPort: "18555",
		DNSSeeds:    nil,

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     simNetPowLimit,
		PowLimitBits: 0x207fffff,

		TargetTimePerBlock:       10 * 60,
		TargetTimespan:           14 * 24 * 60 * 60,
		RetargetAdjustmentFactor: 4,
		ReduceMinDifficulty:      true,
		MinDiffReductionTime:     20 * 60,

		SubsidyHalvingInterval: 210000,
		CoinbaseMaturity:       100,

		Checkpoints: nil,
	}
}

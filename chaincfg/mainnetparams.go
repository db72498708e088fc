// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

var bigOne = big.NewInt(1)

// mainPowLimit is the highest proof of work value a main network block can
// have. It is the value 2^224 - 1.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	genesisBlock := newGenesisBlock(
		1,
		time.Unix(1231006505, 0), // 2009-01-03 18:15:05 UTC
		0x1d00ffff,
		2083236893,
		newGenesisCoinbaseTx(mainNetGenesisCoinbaseSigScript, mainNetGenesisCoinbasePkScript),
	)

	return &Params{
		Name:        "mainnet",
		Net:         wire.MainNet,
		DefaultPort: "8333",
		DNSSeeds: []DNSSeed{
			{"seed.bitcoin.sipa.be", true},
			{"dnsseed.bluematt.me", true},
			{"dnsseed.bitcoin.dashjr.org", false},
			{"seed.bitcoinstats.com", true},
		},

		GenesisBlock: genesisBlock,
		GenesisHash:  genesisBlock.BlockHash(),
		PowLimit:     mainPowLimit,
		PowLimitBits: 0x1d00ffff,

		TargetTimePerBlock:       10 * 60,
		TargetTimespan:           14 * 24 * 60 * 60,
		RetargetAdjustmentFactor: 4,
		ReduceMinDifficulty:      false,

		SubsidyHalvingInterval: 210000,
		CoinbaseMaturity:       100,

		Checkpoints: []Checkpoint{
			{11111, newHashFromStr("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d")},
			{33333, newHashFromStr("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6")},
			{210000, newHashFromStr("000000000000048b95347e83192f69cf0366076336c639f9b7228e9ba171342e")},
		},

		// BIP-30 allows two specific historical blocks to duplicate an
		// earlier coinbase transaction's id. Each entry maps the height to
		// the exempt block's hash.
		BIP30Exceptions: map[int64]chainhash.Hash{
			91842: *newHashFromStr("00000000000a4d0a398161ffc163c503763b1f4360639393e0e4c8e300e0caec"),
			91880: *newHashFromStr("00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721"),
		},
	}
}

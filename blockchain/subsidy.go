// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2020 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/hindsights/xbtc/chaincfg"

// baseSubsidy is the starting block subsidy, in satoshis, before any
// halvings are applied.
const baseSubsidy = 50 * 1e8

// CalcBlockSubsidy returns the proof-of-work subsidy for a block at the
// given height under the halving schedule recorded in params: the base
// subsidy halves every SubsidyHalvingInterval blocks until it reaches
// zero.
func CalcBlockSubsidy(height int64, params *chaincfg.Params) int64 {
	halvings := height / params.SubsidyHalvingInterval
	// Mimic the historical overflow behavior: after 64 halvings the
	// subsidy is zero rather than undefined.
	if halvings >= 64 {
		return 0
	}
	return baseSubsidy >> uint(halvings)
}

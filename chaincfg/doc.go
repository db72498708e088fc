// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters for the networks
// this node supports: mainnet, testnet, and simnet.
//
// For main packages, a (typically global) var may be assigned the address
// of one of the standard Params vars for use as the application's "active"
// network.
//
//	var chainParams = chaincfg.MainNetParams()
//
//	func main() {
//	        if *testnet {
//	                chainParams = chaincfg.TestNetParams()
//	        }
//	}
package chaincfg

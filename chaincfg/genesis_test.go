// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestMainNetGenesisHash(t *testing.T) {
	want := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	params := MainNetParams()
	got := params.GenesisHash.String()
	if got != want {
		t.Errorf("mainnet genesis hash = %s, want %s", got, want)
	}
}

func TestNetworkGenesisHashesDiffer(t *testing.T) {
	main := MainNetParams().GenesisHash
	test := TestNetParams().GenesisHash
	sim := SimNetParams().GenesisHash

	if main == test || main == sim || test == sim {
		t.Error("expected each network to have a distinct genesis hash")
	}
}

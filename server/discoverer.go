// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import "github.com/hindsights/xbtc/chaincfg"

// discoverer walks a network's DNS seed list one host at a time,
// resolving the next seed only after the previous one's result arrives.
type discoverer struct {
	hosts     []string
	idx       int
	resolving bool
}

func newDiscoverer(params *chaincfg.Params) *discoverer {
	hosts := make([]string, len(params.DNSSeeds))
	for i, seed := range params.DNSSeeds {
		hosts[i] = seed.Host
	}
	return &discoverer{hosts: hosts}
}

// next returns the next seed host to resolve, or ("", false) if a
// resolution is already in flight or every seed has been tried.
func (d *discoverer) next() (string, bool) {
	if d.resolving || d.idx >= len(d.hosts) {
		return "", false
	}
	host := d.hosts[d.idx]
	d.idx++
	d.resolving = true
	return host, true
}

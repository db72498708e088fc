// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr schedules outbound dial attempts against the addresses
// addrmgr offers up: a shortage-bounded dial loop with self-address and
// already-connected checks, since a dial here runs to completion on
// its own goroutine and reports back over a channel instead.
package connmgr

import (
	"context"
	"net"
	"time"

	"github.com/decred/go-socks/socks"
)

// maxDialsPerTick bounds how many outbound connection attempts a single
// Connector.Schedule call may start.
const maxDialsPerTick = 5

// dialTimeout bounds how long a single direct TCP connect attempt may take
// before it is treated as a failure. Dials through the SOCKS5 proxy are not
// bounded by it.
const dialTimeout = 10 * time.Second

// AddressSource is the subset of addrmgr.Manager the connector needs: a
// source of dial candidates, independent of the rest of the pool's
// bookkeeping.
type AddressSource interface {
	GetConnectionPeer() (string, bool)
	SetPeerConnecting(addr string)
}

// ConnResult reports the outcome of one dial attempt.
type ConnResult struct {
	Addr    string
	Conn    net.Conn
	Err     error
	Elapsed time.Duration
}

// Connector drives outbound dialing, optionally through a SOCKS5 proxy.
type Connector struct {
	pool  AddressSource
	proxy *socks.Proxy

	// isSelf/isConnected report whether addr is this node's own
	// externally-visible address, or an address already holding an
	// active session. Supplied by the owner (package server) since only
	// it knows both facts.
	isSelf      func(addr string) bool
	isConnected func(addr string) bool
}

// New returns a Connector drawing candidates from pool. proxyAddr, if
// non-empty, routes every dial through a SOCKS5 proxy at that address.
func New(pool AddressSource, proxyAddr, proxyUser, proxyPass string, isSelf, isConnected func(string) bool) *Connector {
	c := &Connector{pool: pool, isSelf: isSelf, isConnected: isConnected}
	if proxyAddr != "" {
		c.proxy = &socks.Proxy{
			Addr:     proxyAddr,
			Username: proxyUser,
			Password: proxyPass,
		}
	}
	return c
}

// Schedule starts up to shortage dial attempts (capped at
// maxDialsPerTick), skipping self-addresses and already-connected
// endpoints. Each attempt's result is delivered to results
// asynchronously from its own goroutine; the caller's single dispatch
// loop remains the only place that mutates shared session state.
func (c *Connector) Schedule(shortage int, results chan<- ConnResult) {
	if shortage <= 0 {
		return
	}
	attempts := shortage
	if attempts > maxDialsPerTick {
		attempts = maxDialsPerTick
	}

	for i := 0; i < attempts; i++ {
		addr, ok := c.pool.GetConnectionPeer()
		if !ok {
			return
		}
		if c.isSelf(addr) {
			log.Debugf("not dialing self address %s", addr)
			continue
		}
		if c.isConnected(addr) {
			log.Debugf("not dialing already-connected address %s", addr)
			continue
		}
		c.pool.SetPeerConnecting(addr)
		go c.dial(addr, results)
	}
}

func (c *Connector) dial(addr string, results chan<- ConnResult) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	var conn net.Conn
	var err error
	if c.proxy != nil {
		conn, err = c.proxy.Dial("tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		err = errorf(ErrDial, "dial %s: %v", addr, err)
	}

	results <- ConnResult{Addr: addr, Conn: conn, Err: err, Elapsed: time.Since(start)}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net"
	"testing"
	"time"

	"github.com/hindsights/xbtc/blockcache"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/config"
	"github.com/hindsights/xbtc/connmgr"
	"github.com/hindsights/xbtc/database"
	"github.com/hindsights/xbtc/peer"
	"github.com/hindsights/xbtc/txscript"
)

func newTestCache(t *testing.T) *blockcache.Cache {
	t.Helper()
	params := chaincfg.MainNetParams()
	store, err := database.Open(t.TempDir(), params.Net, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	sigCache, err := txscript.NewSigCache(100)
	if err != nil {
		t.Fatalf("NewSigCache: %v", err)
	}
	cache := blockcache.New(params, store, sigCache)
	if err := cache.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cache
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cache := newTestCache(t)
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.TCPPort = 0
	cfg.MaxNodeCount = 8
	return New(chaincfg.MainNetParams(), cfg, cache)
}

func newTestPeer(t *testing.T, addr string, inbound bool) *peer.Peer {
	t.Helper()
	conn, other := net.Pipe()
	t.Cleanup(func() { other.Close() })
	p := peer.New(conn, addr, inbound, chaincfg.MainNetParams(), 42)
	t.Cleanup(p.Close)
	return p
}

func TestIsSelfMatchesConfiguredPort(t *testing.T) {
	s := newTestServer(t)
	s.selfAddrs = map[string]struct{}{"127.0.0.1:18333": {}}

	if !s.isSelf("127.0.0.1:18333") {
		t.Fatalf("expected 127.0.0.1:18333 to be recognized as self")
	}
	if s.isSelf("8.8.8.8:18333") {
		t.Fatalf("expected an unrelated address to not be self")
	}
}

func TestIsConnectedTracksPeersByAddr(t *testing.T) {
	s := newTestServer(t)
	p := newTestPeer(t, "1.2.3.4:8333", false)
	s.peersByAddr[p.Addr()] = p

	if !s.isConnected("1.2.3.4:8333") {
		t.Fatalf("expected 1.2.3.4:8333 to be reported connected")
	}
	if s.isConnected("5.6.7.8:8333") {
		t.Fatalf("expected an untracked address to not be connected")
	}
}

func TestDisconnectRemovesPeerFromAllTracking(t *testing.T) {
	s := newTestServer(t)
	p := newTestPeer(t, "1.2.3.4:8333", false)
	s.peers[p] = struct{}{}
	s.peersByAddr[p.Addr()] = p
	s.sync.AddNode(p, time.Now())

	s.disconnect(p, errorf(ErrHandshakeTimeout, "test disconnect"))

	if _, ok := s.peers[p]; ok {
		t.Fatalf("expected peer to be removed from s.peers")
	}
	if _, ok := s.peersByAddr[p.Addr()]; ok {
		t.Fatalf("expected peer to be removed from s.peersByAddr")
	}
}

func TestOnTickDisconnectsHandshakeTimeout(t *testing.T) {
	s := newTestServer(t)
	p := newTestPeer(t, "1.2.3.4:8333", false)
	s.peers[p] = struct{}{}
	s.peersByAddr[p.Addr()] = p

	future := time.Now().Add(time.Hour)
	s.onTick(future)

	if _, ok := s.peers[p]; ok {
		t.Fatalf("expected a peer stuck in handshake to be disconnected on tick")
	}
}

func TestHandleConnResultDialFailureReportsDisconnected(t *testing.T) {
	s := newTestServer(t)
	s.handleConnResult(connmgr.ConnResult{
		Addr: "1.2.3.4:8333",
		Err:  errorf(ErrListen, "dial failed"),
	})

	if len(s.peers) != 0 {
		t.Fatalf("expected no peer to be created for a failed dial")
	}
}

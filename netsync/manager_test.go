// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"net"
	"testing"
	"time"

	"github.com/hindsights/xbtc/blockcache"
	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/database"
	"github.com/hindsights/xbtc/peer"
	"github.com/hindsights/xbtc/txscript"
	"github.com/hindsights/xbtc/wire"
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

func newTestPeer(t *testing.T, addr string, inbound bool) *peer.Peer {
	t.Helper()
	conn, other := net.Pipe()
	t.Cleanup(func() { other.Close() })
	p := peer.New(conn, addr, inbound, chaincfg.MainNetParams(), uint64(len(addr)))
	t.Cleanup(p.Close)
	return p
}

func TestFindHeadersRequesterPrefersLowestRTTOutbound(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	s.startTime = time.Now().Add(-10 * time.Second) // bypass warm-up

	slow := newTestPeer(t, "1.1.1.1:8333", false)
	slow.RTT = 80 * time.Millisecond
	fast := newTestPeer(t, "2.2.2.2:8333", false)
	fast.RTT = 5 * time.Millisecond
	inbound := newTestPeer(t, "3.3.3.3:8333", true)
	inbound.RTT = 1 * time.Millisecond

	now := time.Now()
	s.AddNode(slow, now)
	s.AddNode(fast, now)
	s.AddNode(inbound, now)
	// AddNode keeps the requester it already has, so force a fresh choice
	// now that every peer is tracked.
	s.chooseHeadersRequester(true, now)

	if s.headersRequester != fast {
		t.Fatalf("expected fast outbound peer to be chosen as requester, got %v", s.headersRequester.Addr())
	}
}

func TestFindHeadersRequesterFallsBackToInbound(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	s.startTime = time.Now().Add(-10 * time.Second)

	only := newTestPeer(t, "4.4.4.4:8333", true)
	s.AddNode(only, time.Now())

	if s.headersRequester != only {
		t.Fatalf("expected sole inbound peer to be chosen as fallback requester")
	}
}

func TestFindHeadersRequesterRespectsWarmup(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	// startTime defaults to time.Now() in New; fewer than 5 nodes within
	// the warm-up window must not yield a requester yet.
	p := newTestPeer(t, "5.5.5.5:8333", false)
	s.AddNode(p, time.Now())

	if s.headersRequester != nil {
		t.Fatalf("expected no requester chosen during warm-up with only 1 node")
	}
}

func TestOnTickEvictsIdleHeaderRequester(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	s.startTime = time.Now().Add(-10 * time.Second)

	p := newTestPeer(t, "6.6.6.6:8333", false)
	now := time.Now()
	s.AddNode(p, now)
	if s.headersRequester != p {
		t.Fatalf("expected sole peer to become requester")
	}

	// Simulate the request having gone unanswered well past both
	// thresholds, with the peer never having sent anything back.
	later := now.Add(headerRequestTimeout + idleRequesterTimeout + time.Second)
	evicted := s.OnTick(later)
	if evicted != p {
		t.Fatalf("expected idle requester to be evicted, got %v", evicted)
	}
	if _, ok := s.nodes[p]; ok {
		t.Fatalf("expected evicted peer to be removed from tracking")
	}
}

func TestHandleHeadersOffenceThresholdDisconnects(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	p := newTestPeer(t, "7.7.7.7:8333", false)

	var badHeader wire.BlockHeader
	badHeader.Version = 1
	// PrevBlock stays zeroed, an unknown parent distinct from genesis,
	// so every attempt fails with the same rule error.

	var disconnect bool
	var err error
	for i := 0; i < offenceThreshold; i++ {
		disconnect, err = s.HandleHeaders(p, []wire.BlockHeader{badHeader}, time.Now())
		if err == nil {
			t.Fatalf("expected an error for an orphan header")
		}
	}
	if !disconnect {
		t.Fatalf("expected disconnect after %d offences", offenceThreshold)
	}
}

func TestFindBlocksToDownloadNoWorkReturnsNothing(t *testing.T) {
	cache := newTestCache(t)
	s := New(cache, nil)
	p := newTestPeer(t, "8.8.8.8:8333", false)

	genesis := cache.Chain().GenesisHash()
	p.Sync.BestKnownBlock = &genesis

	hashes := s.findBlocksToDownload(p, blockBatchSize)
	if len(hashes) != 0 {
		t.Fatalf("expected no blocks to download when peer's best known block is our tip, got %d", len(hashes))
	}
}

// minedHeader returns a header extending parent whose hash satisfies the
// network proof-of-work limit.
func minedHeader(t *testing.T, params *chaincfg.Params, parent wire.BlockHeader) wire.BlockHeader {
	t.Helper()
	header := wire.BlockHeader{
		Version:   1,
		PrevBlock: parent.BlockHash(),
		Timestamp: parent.Timestamp.Add(10 * time.Minute),
		Bits:      params.PowLimitBits,
	}
	target := blockchain.CompactToBig(header.Bits)
	for nonce := uint32(0); ; nonce++ {
		header.Nonce = nonce
		hash := header.BlockHash()
		if blockchain.HashToBig((*[32]byte)(&hash)).Cmp(target) <= 0 {
			return header
		}
		if nonce == ^uint32(0) {
			t.Fatal("exhausted nonce space without finding a valid proof of work")
		}
	}
}

// TestRequestHeadersLocatorSchedule drives the wired header-request path
// end to end and asserts the emitted getheaders locator steps back one
// block at a time for its first twelve entries, doubles its stride on every
// move after that, and terminates at genesis.
func TestRequestHeadersLocatorSchedule(t *testing.T) {
	params := chaincfg.SimNetParams()
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

	heightOf := map[chainhash.Hash]int64{params.GenesisHash: 0}
	parent := params.GenesisBlock.Header
	for h := int64(1); h <= 16; h++ {
		header := minedHeader(t, params, parent)
		if _, err := cache.AddHeader(&header, time.Now()); err != nil {
			t.Fatalf("AddHeader at height %d: %v", h, err)
		}
		heightOf[header.BlockHash()] = h
		parent = header
	}

	s := New(cache, nil)
	s.startTime = time.Now().Add(-10 * time.Second) // bypass warm-up

	conn, other := net.Pipe()
	t.Cleanup(func() { other.Close() })
	p := peer.New(conn, "8.8.8.8:8333", false, params, 1)
	t.Cleanup(p.Close)
	inbox := make(chan peer.Message, 1)
	p.Start(inbox)

	// Choosing the sole outbound peer as requester issues a getheaders
	// rooted at the best known header immediately.
	s.AddNode(p, time.Now())

	_, msg, _, err := wire.ReadMessageN(other, wire.ProtocolVersion, params.Net)
	if err != nil {
		t.Fatalf("ReadMessageN: %v", err)
	}
	getHeaders, ok := msg.(*wire.MsgGetHeaders)
	if !ok {
		t.Fatalf("expected a getheaders message, got %T", msg)
	}

	want := []int64{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 3, 0}
	loc := getHeaders.BlockLocatorHashes
	if len(loc) != len(want) {
		t.Fatalf("locator has %d entries, want %d", len(loc), len(want))
	}
	for i, hash := range loc {
		h, known := heightOf[*hash]
		if !known {
			t.Fatalf("locator entry %d references unknown hash %s", i, hash)
		}
		if h != want[i] {
			t.Fatalf("locator entry %d has height %d, want %d", i, h, want[i])
		}
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"testing"
	"time"
)

func TestManagerAddAndGetConnectionPeer(t *testing.T) {
	t.Parallel()

	m := New("127.0.0.1:8333")
	m.AddPeer("10.0.0.1:8333")
	m.AddPeer("10.0.0.2:8333")
	m.AddPeer("127.0.0.1:8333") // self, ignored

	if got := m.PeerCount(); got != 2 {
		t.Fatalf("expected 2 known peers, got %d", got)
	}

	addr, ok := m.GetConnectionPeer()
	if !ok {
		t.Fatal("expected a connection candidate")
	}
	if addr != "10.0.0.1:8333" && addr != "10.0.0.2:8333" {
		t.Fatalf("unexpected candidate %s", addr)
	}

	// Immediately asking again must respect the dial cooldown: the peer
	// just handed out was just stamped with LastConnectTime=now.
	m.SetPeerConnecting(addr)
	second, ok := m.GetConnectionPeer()
	if !ok {
		t.Fatal("expected the other standby peer")
	}
	if second == addr {
		t.Fatal("expected the other address, not the one already connecting")
	}
}

func TestManagerConnectCooldown(t *testing.T) {
	t.Parallel()

	m := New("")
	m.AddPeer("10.0.0.1:8333")

	addr, ok := m.GetConnectionPeer()
	if !ok || addr != "10.0.0.1:8333" {
		t.Fatalf("expected first fetch to succeed, got %q %v", addr, ok)
	}
	m.SetPeerDisconnected(addr, nil, false)

	if _, ok := m.GetConnectionPeer(); ok {
		t.Fatal("expected cooldown to block an immediate second dial")
	}
}

func TestManagerExpiry(t *testing.T) {
	t.Parallel()

	m := New("")
	m.AddPeer("10.0.0.1:8333")
	info := m.peers["10.0.0.1:8333"]
	info.LastActiveTime = time.Now().Add(-expireAfter - time.Second)

	for i := int64(1); i <= gcInterval; i++ {
		m.OnTick(i)
	}

	if m.PeerCount() != 0 {
		t.Fatalf("expected expired address to be removed, got %d remaining", m.PeerCount())
	}
}

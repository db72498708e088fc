// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"testing"
	"time"
)

type fakePool struct {
	addrs       []string
	connecting  []string
}

func (f *fakePool) GetConnectionPeer() (string, bool) {
	if len(f.addrs) == 0 {
		return "", false
	}
	addr := f.addrs[0]
	f.addrs = f.addrs[1:]
	return addr, true
}

func (f *fakePool) SetPeerConnecting(addr string) {
	f.connecting = append(f.connecting, addr)
}

func TestScheduleSkipsSelfAndConnected(t *testing.T) {
	pool := &fakePool{addrs: []string{"1.2.3.4:8333", "5.6.7.8:8333", "9.9.9.9:8333"}}
	isSelf := func(addr string) bool { return addr == "1.2.3.4:8333" }
	isConnected := func(addr string) bool { return addr == "5.6.7.8:8333" }

	c := New(pool, "", "", "", isSelf, isConnected)
	results := make(chan ConnResult, 3)
	c.Schedule(3, results)

	if len(pool.connecting) != 1 || pool.connecting[0] != "9.9.9.9:8333" {
		t.Fatalf("expected only 9.9.9.9:8333 to be dialed, got %v", pool.connecting)
	}

	select {
	case res := <-results:
		if res.Addr != "9.9.9.9:8333" {
			t.Fatalf("unexpected dial result addr %s", res.Addr)
		}
		if res.Err == nil {
			t.Fatalf("expected dial to an unreachable address to fail")
		}
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for dial result")
	}
}

func TestScheduleRespectsMaxDialsPerTick(t *testing.T) {
	addrs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		addrs = append(addrs, "10.0.0.1:8333")
	}
	pool := &fakePool{addrs: addrs}
	c := New(pool, "", "", "", func(string) bool { return false }, func(string) bool { return false })

	results := make(chan ConnResult, 10)
	c.Schedule(10, results)

	if len(pool.connecting) != maxDialsPerTick {
		t.Fatalf("expected %d dials, got %d", maxDialsPerTick, len(pool.connecting))
	}
}

func TestScheduleNoShortage(t *testing.T) {
	pool := &fakePool{addrs: []string{"1.1.1.1:8333"}}
	c := New(pool, "", "", "", func(string) bool { return false }, func(string) bool { return false })
	c.Schedule(0, nil)
	if len(pool.connecting) != 0 {
		t.Fatalf("expected no dial attempts with zero shortage")
	}
}

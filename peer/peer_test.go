// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/wire"
)

// newTestPeer returns a peer over one end of a net.Pipe. The read and
// write goroutines are not started, so tests can drive HandleMessage
// directly without racing a socket.
func newTestPeer(t *testing.T, inbound bool, nonce uint64) *Peer {
	t.Helper()
	conn, other := net.Pipe()
	t.Cleanup(func() { other.Close() })
	p := New(conn, "1.2.3.4:8333", inbound, chaincfg.MainNetParams(), nonce)
	t.Cleanup(p.Close)
	return p
}

func versionMsg(nonce uint64, pver int32) *wire.MsgVersion {
	me := wire.NewNetAddressIPPort(net.IPv4zero, 8333, 0)
	you := wire.NewNetAddressIPPort(net.ParseIP("1.2.3.4"), 8333, 0)
	msg := wire.NewMsgVersion(me, you, nonce, 0)
	msg.ProtocolVersion = pver
	return msg
}

func TestHandshakeInbound(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	if p.State != StateNew {
		t.Fatalf("expected a fresh inbound session in StateNew, got %s", p.State)
	}

	if _, err := p.HandleMessage(versionMsg(99, int32(wire.ProtocolVersion)), time.Now()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if p.State != StateVerAcked {
		t.Fatalf("expected StateVerAcked after version, got %s", p.State)
	}

	res, err := p.HandleMessage(&wire.MsgVerAck{}, time.Now())
	if err != nil {
		t.Fatalf("verack: %v", err)
	}
	if !res.BecameReady {
		t.Fatalf("expected BecameReady after verack")
	}
	if p.State != StateReady {
		t.Fatalf("expected StateReady, got %s", p.State)
	}
}

func TestHandshakeRejectsSelfConnect(t *testing.T) {
	t.Parallel()

	const nonce = 7
	p := newTestPeer(t, true, nonce)

	_, err := p.HandleMessage(versionMsg(nonce, int32(wire.ProtocolVersion)), time.Now())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol for a self-connect, got %v", err)
	}
}

func TestHandshakeRejectsOldProtocol(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)

	_, err := p.HandleMessage(versionMsg(99, int32(wire.MinAcceptableProtocolVersion)-1), time.Now())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol for an outdated remote, got %v", err)
	}
}

func TestHandshakeRejectsDuplicateVersion(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	if _, err := p.HandleMessage(versionMsg(99, int32(wire.ProtocolVersion)), time.Now()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if _, err := p.HandleMessage(&wire.MsgVerAck{}, time.Now()); err != nil {
		t.Fatalf("verack: %v", err)
	}

	_, err := p.HandleMessage(versionMsg(99, int32(wire.ProtocolVersion)), time.Now())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol for a duplicate version, got %v", err)
	}
}

func TestHandshakeRejectsDataBeforeVersion(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)

	_, err := p.HandleMessage(wire.NewMsgPing(1), time.Now())
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected ErrProtocol for ping before handshake, got %v", err)
	}
}

func TestHandshakeTimeout(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)

	if p.CheckHandshakeTimeout(time.Now()) {
		t.Fatalf("a fresh session should not be timed out")
	}
	if !p.CheckHandshakeTimeout(time.Now().Add(handshakeTimeout + time.Second)) {
		t.Fatalf("expected timeout once the handshake window elapses")
	}
}

// completeHandshake drives p to StateReady.
func completeHandshake(t *testing.T, p *Peer) {
	t.Helper()
	if _, err := p.HandleMessage(versionMsg(99, int32(wire.ProtocolVersion)), time.Now()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if _, err := p.HandleMessage(&wire.MsgVerAck{}, time.Now()); err != nil {
		t.Fatalf("verack: %v", err)
	}
}

func TestPongMeasuresRTT(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	completeHandshake(t, p)

	p.lastPingNonce = 55
	p.lastPingSent = time.Now().Add(-250 * time.Millisecond)
	if _, err := p.HandleMessage(wire.NewMsgPong(55), time.Now()); err != nil {
		t.Fatalf("pong: %v", err)
	}
	if p.RTT < 250*time.Millisecond {
		t.Fatalf("expected RTT of at least 250ms, got %s", p.RTT)
	}

	// A pong with the wrong nonce must not disturb the measurement.
	prev := p.RTT
	if _, err := p.HandleMessage(wire.NewMsgPong(56), time.Now()); err != nil {
		t.Fatalf("pong: %v", err)
	}
	if p.RTT != prev {
		t.Fatalf("expected a mismatched pong nonce to leave RTT untouched")
	}
}

func TestDispatchRoutesHeadersAndBlocks(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	completeHandshake(t, p)

	params := chaincfg.MainNetParams()
	headers := &wire.MsgHeaders{}
	if err := headers.AddBlockHeader(&params.GenesisBlock.Header); err != nil {
		t.Fatalf("AddBlockHeader: %v", err)
	}
	res, err := p.HandleMessage(headers, time.Now())
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if len(res.Headers) != 1 {
		t.Fatalf("expected 1 routed header, got %d", len(res.Headers))
	}

	res, err = p.HandleMessage(params.GenesisBlock, time.Now())
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if res.Block == nil {
		t.Fatalf("expected the block to be routed to the synchronizer")
	}
}

func TestDispatchRejectCloses(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	completeHandshake(t, p)

	reject := &wire.MsgReject{Cmd: "version", Code: wire.RejectMalformed, Reason: "go away"}
	_, err := p.HandleMessage(reject, time.Now())
	if !errors.Is(err, ErrRemoteReject) {
		t.Fatalf("expected ErrRemoteReject, got %v", err)
	}
}

func TestStartupMessagesOrder(t *testing.T) {
	t.Parallel()

	p := newTestPeer(t, true, 7)
	completeHandshake(t, p)

	msgs := p.StartupMessages(11)
	cmds := make([]string, len(msgs))
	for i, m := range msgs {
		cmds[i] = m.Command()
	}
	want := []string{wire.CmdSendHeaders, wire.CmdSendCmpct, wire.CmdGetAddr, wire.CmdPing}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d startup messages, got %v", len(want), cmds)
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Fatalf("startup message %d: got %s, want %s", i, cmds[i], want[i])
		}
	}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements one side of the Bitcoin wire-protocol handshake
// and message dispatch for a single connection: framing via wire.Decoder,
// the NEW/VER_SENT/VER_RECVD/VER_ACKED/READY handshake state machine, and a
// fixed command table routing inbound messages back to the caller. A
// single goroutine owns each Peer's socket and pushes decoded messages to
// the owner (package server) over a channel.
package peer

import (
	"io"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// State is a session's position in the handshake state machine.
type State int32

const (
	StateNew State = iota
	StateVerSent
	StateVerRecvd
	StateVerAcked
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateVerSent:
		return "ver-sent"
	case StateVerRecvd:
		return "ver-recvd"
	case StateVerAcked:
		return "ver-acked"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// handshakeTimeout is how long a session may remain outside StateReady
// before it is forcibly closed.
const handshakeTimeout = 10 * time.Second

// readChunkSize bounds a single socket read.
const readChunkSize = 20 * 1024

// pingInterval is how often a ready session pings its peer to keep the
// connection live and refresh its measured RTT.
const pingInterval = 2 * time.Minute

// SyncInfo is the per-peer block-download bookkeeping the synchronizer
// (package netsync) reads and mutates.
type SyncInfo struct {
	BestKnownBlock       *chainhash.Hash
	BestKnownWork        *big.Int
	LastUnknownBlockHash chainhash.Hash
	LastCommonBlock      chainhash.Hash
	LastDownloadBlock    chainhash.Hash
	RequestingBlocks     map[chainhash.Hash]struct{}
}

// IsRequestingBlocks reports whether this peer has an outstanding block
// download request.
func (s *SyncInfo) IsRequestingBlocks() bool {
	return len(s.RequestingBlocks) > 0
}

// Message bundles a decoded message with the Peer it arrived on, the form
// a session's reader goroutine posts to its owner's inbound channel.
type Message struct {
	Peer *Peer
	Msg  wire.Message
	Err  error
}

// Peer is one wire-protocol connection, inbound or outbound. Every field
// except those explicitly documented otherwise is mutated only by the
// single goroutine that owns the Peer (the server's dispatch loop), which
// is what lets it go without a per-field mutex.
type Peer struct {
	conn    net.Conn
	params  *chaincfg.Params
	inbound bool
	addr    string

	decoder   *wire.Decoder
	out       chan wire.Message
	closed    chan struct{}
	closeOnce sync.Once

	createdAt     time.Time
	connectedAt   time.Time
	lastRecv      time.Time
	lastPingNonce uint64
	lastPingSent  time.Time

	State           State
	ProtocolVersion uint32
	Services        wire.ServiceFlag
	UserAgent       string
	StartHeight     int32
	RTT             time.Duration
	Sync            SyncInfo

	nonce uint64 // our own version nonce, to detect self-connects
}

// New returns a Peer for an already-established net.Conn. Outbound
// sessions send their version message immediately; inbound sessions wait
// for the remote's version first.
func New(conn net.Conn, addr string, inbound bool, params *chaincfg.Params, nonce uint64) *Peer {
	now := time.Now()
	p := &Peer{
		conn:      conn,
		params:    params,
		inbound:   inbound,
		addr:      addr,
		decoder:   wire.NewDecoder(wire.ProtocolVersion, params.Net),
		out:       make(chan wire.Message, 64),
		closed:    make(chan struct{}),
		createdAt: now,
		nonce:     nonce,
		Sync: SyncInfo{
			RequestingBlocks: make(map[chainhash.Hash]struct{}),
		},
	}
	if !inbound {
		p.connectedAt = now
	}
	return p
}

// Addr returns the remote endpoint string this session was created for
// (the dialed address for outbound sessions, the accepted socket's remote
// address for inbound ones).
func (p *Peer) Addr() string { return p.addr }

// Inbound reports whether the remote end initiated the connection.
func (p *Peer) Inbound() bool { return p.inbound }

// IsReady reports whether the handshake has completed.
func (p *Peer) IsReady() bool { return p.State == StateReady }

// LastRecv returns the time the last post-handshake message was received
// from this peer, the zero Time if none has arrived yet.
func (p *Peer) LastRecv() time.Time { return p.lastRecv }

// Start launches the session's read and write goroutines. Every decoded
// message (or a fatal read/decode error) is posted to inbox; the caller's
// single dispatch loop is the only consumer responsible for mutating
// shared state in response.
func (p *Peer) Start(inbox chan<- Message) {
	go p.writeLoop()
	go p.readLoop(inbox)
}

// writeLoop drains queued outbound messages and writes them to the socket
// one at a time, so a slow peer cannot block the caller that enqueued the
// message.
func (p *Peer) writeLoop() {
	for {
		select {
		case msg, ok := <-p.out:
			if !ok {
				return
			}
			if _, err := wire.WriteMessageN(p.conn, msg, p.ProtocolVersion, p.params.Net); err != nil {
				p.Close()
				return
			}
		case <-p.closed:
			return
		}
	}
}

// readLoop reads up to readChunkSize bytes at a time, feeds them to the
// streaming decoder, and posts every complete message (or the first fatal
// error) to inbox. It returns once the connection is no longer usable.
func (p *Peer) readLoop(inbox chan<- Message) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			p.decoder.Feed(buf[:n])
			for {
				msg, _, ok, derr := p.decoder.Next()
				if derr != nil {
					inbox <- Message{Peer: p, Err: errorf(ErrFraming, "%s: %v", p.addr, derr)}
					p.Close()
					return
				}
				if !ok {
					break
				}
				if msg == nil {
					// Unknown command: logged and dropped, not fatal.
					log.Debugf("dropping unknown command from %s", p.addr)
					continue
				}
				inbox <- Message{Peer: p, Msg: msg}
			}
		}
		if err != nil {
			if err != io.EOF {
				inbox <- Message{Peer: p, Err: errorf(ErrSocket, "%s: %v", p.addr, err)}
			} else {
				inbox <- Message{Peer: p, Err: errorf(ErrSocket, "%s: connection closed", p.addr)}
			}
			p.Close()
			return
		}
	}
}

// QueueMessage enqueues msg for asynchronous delivery. It is safe to call
// from the dispatch loop that owns this Peer; delivery order matches
// enqueue order.
func (p *Peer) QueueMessage(msg wire.Message) {
	select {
	case p.out <- msg:
	case <-p.closed:
	}
}

// Close tears down the connection and stops both goroutines. It is
// idempotent.
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.conn.Close()
	})
}

// CheckHandshakeTimeout reports whether the session is still outside
// StateReady after handshakeTimeout has elapsed since creation. Callers
// should Close the peer when this returns true.
func (p *Peer) CheckHandshakeTimeout(now time.Time) bool {
	return p.State != StateReady && now.Sub(p.createdAt) > handshakeTimeout
}

// SendVersion builds and queues this node's version message, transitioning
// an outbound session from StateNew to StateVerSent. me/you describe the
// local and remote endpoints as advertised on the wire; lastBlock is the
// local chain's tip height.
func (p *Peer) SendVersion(me, you *wire.NetAddress, services wire.ServiceFlag, userAgent string, lastBlock int32) {
	msg := wire.NewMsgVersion(me, you, p.nonce, lastBlock)
	msg.Services = services
	msg.UserAgent = userAgent
	p.QueueMessage(msg)
	if p.State == StateNew {
		p.State = StateVerSent
	}
}

// DispatchResult reports side effects of HandleMessage that need
// cross-component action: new addresses for the peer pool, headers/blocks
// for the synchronizer, or the handshake completing (BecameReady). A
// self-connect or handshake failure is returned as an error instead.
type DispatchResult struct {
	BecameReady bool
	NewAddrs    []*wire.NetAddress
	Headers     []wire.BlockHeader
	Block       *wire.MsgBlock
}

// HandleMessage advances the session state machine and dispatch table for
// one decoded message. It returns an error for any message the
// state machine rejects (wrong handshake state, self-connect, reject
// message); the caller must then Close the session and, for an outbound
// peer, report the failure to the address pool.
func (p *Peer) HandleMessage(msg wire.Message, now time.Time) (DispatchResult, error) {
	var res DispatchResult

	if p.State != StateReady {
		switch m := msg.(type) {
		case *wire.MsgVersion:
			return res, p.handleVersion(m, now)
		case *wire.MsgVerAck:
			return res, p.handleVerAck(&res)
		case *wire.MsgReject:
			return res, errorf(ErrRemoteReject, "%s: rejected during handshake: %s", p.addr, m.Reason)
		default:
			return res, errorf(ErrProtocol, "%s: unexpected command %q before handshake completes", p.addr, msg.Command())
		}
	}

	p.lastRecv = now
	switch m := msg.(type) {
	case *wire.MsgVersion:
		return res, errorf(ErrProtocol, "%s: duplicate version message", p.addr)
	case *wire.MsgPing:
		p.QueueMessage(wire.NewMsgPong(m.Nonce))
	case *wire.MsgPong:
		if m.Nonce == p.lastPingNonce {
			p.RTT = now.Sub(p.lastPingSent)
		}
	case *wire.MsgAddr:
		res.NewAddrs = m.AddrList
	case *wire.MsgHeaders:
		headers := make([]wire.BlockHeader, len(m.Headers))
		for i, h := range m.Headers {
			headers[i] = *h
		}
		res.Headers = headers
	case *wire.MsgBlock:
		res.Block = m
	case *wire.MsgReject:
		return res, errorf(ErrRemoteReject, "%s: %s", p.addr, m.Reason)
	case *wire.MsgGetAddr, *wire.MsgInv, *wire.MsgGetData, *wire.MsgNotFound,
		*wire.MsgGetHeaders, *wire.MsgGetBlocks, *wire.MsgTx, *wire.MsgSendHeaders,
		*wire.MsgSendCmpct, *wire.MsgFeeFilter:
		// Accepted but a no-op: this node serves no inventory and
		// relays no transactions.
	default:
		log.Debugf("%s: unhandled command %q", p.addr, msg.Command())
	}
	return res, nil
}

// handleVersion processes a remote version message: both inbound (first
// message expected) and outbound (response to the version this node already
// sent) sessions go through the same path. A duplicate version message is
// rejected.
func (p *Peer) handleVersion(m *wire.MsgVersion, now time.Time) error {
	if p.State != StateNew && p.State != StateVerSent {
		return errorf(ErrProtocol, "%s: unexpected version message in state %s", p.addr, p.State)
	}
	if m.Nonce == p.nonce {
		return errorf(ErrProtocol, "%s: self-connect detected", p.addr)
	}
	if m.ProtocolVersion < int32(wire.MinAcceptableProtocolVersion) {
		return errorf(ErrProtocol, "%s: protocol version %d below minimum %d", p.addr, m.ProtocolVersion, wire.MinAcceptableProtocolVersion)
	}

	p.ProtocolVersion = minUint32(uint32(m.ProtocolVersion), wire.ProtocolVersion)
	p.Services = m.Services
	p.UserAgent = m.UserAgent
	p.StartHeight = m.LastBlock

	// Inbound sessions haven't sent their own version yet; the caller
	// does that immediately after this call returns.
	p.State = StateVerRecvd
	p.QueueMessage(&wire.MsgVerAck{})
	p.State = StateVerAcked
	return nil
}

// handleVerAck completes the handshake, transitioning to StateReady and
// reporting that transition so the caller can send the post-handshake
// burst (sendheaders/sendcmpct/getaddr/ping) via StartupMessages.
func (p *Peer) handleVerAck(res *DispatchResult) error {
	if p.State != StateVerAcked && p.State != StateVerSent && p.State != StateVerRecvd {
		return errorf(ErrProtocol, "%s: unexpected verack in state %s", p.addr, p.State)
	}
	p.State = StateReady
	p.connectedAt = time.Now()
	res.BecameReady = true
	return nil
}

// StartupMessages returns the burst of messages a session emits the instant
// it enters StateReady: sendheaders, sendcmpct announcements, an
// unsolicited getaddr, and a first ping.
func (p *Peer) StartupMessages(nonce uint64) []wire.Message {
	msgs := []wire.Message{
		&wire.MsgSendHeaders{},
		wire.NewMsgSendCmpct(false, 1),
	}
	if p.Services&wire.SFNodeWitness != 0 {
		msgs = append(msgs, wire.NewMsgSendCmpct(false, 2))
	}
	msgs = append(msgs, wire.NewMsgGetAddr())
	p.lastPingNonce = nonce
	p.lastPingSent = time.Now()
	msgs = append(msgs, wire.NewMsgPing(nonce))
	return msgs
}

// MaybePing sends a fresh ping if pingInterval has elapsed since the last
// one, refreshing the RTT measurement on the next pong.
func (p *Peer) MaybePing(now time.Time, nonce uint64) {
	if !p.IsReady() || now.Sub(p.lastPingSent) < pingInterval {
		return
	}
	p.lastPingNonce = nonce
	p.lastPingSent = now
	p.QueueMessage(wire.NewMsgPing(nonce))
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

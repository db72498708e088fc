// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package server is the node's single dispatch loop: it owns every ready
// and handshaking peer.Peer, drives connmgr's outbound dialing and
// netsync's header/block requests on a 1s tick, and accepts inbound
// connections. Every mutation of peer/addrmgr/netsync state happens on
// this one goroutine, fed by channels instead of callbacks.
package server

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hindsights/xbtc/addrmgr"
	"github.com/hindsights/xbtc/blockcache"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/config"
	"github.com/hindsights/xbtc/connmgr"
	"github.com/hindsights/xbtc/netsync"
	"github.com/hindsights/xbtc/peer"
	"github.com/hindsights/xbtc/wire"
)

// userAgent identifies this node in its version messages.
const userAgent = "/xbtc:0.1.0/"

// tickInterval drives every periodic subsystem: connmgr dialing, netsync's
// header-request cadence, and addrmgr's expiry sweep.
const tickInterval = time.Second

// Server owns every peer session and the subsystems that decide what to
// do with them.
type Server struct {
	params *chaincfg.Params
	cfg    *config.Config
	cache  *blockcache.Cache

	addrs *addrmgr.Manager
	conn  *connmgr.Connector
	sync  *netsync.Synchronizer

	listener net.Listener

	peers       map[*peer.Peer]struct{}
	peersByAddr map[string]*peer.Peer
	selfAddrs   map[string]struct{}

	inbox       chan peer.Message
	connResults chan connmgr.ConnResult
	acceptConns chan net.Conn
	discovered  chan []string

	discoverer *discoverer
	ticks      int64
}

// New builds a Server ready to Run. It does not yet listen or dial.
func New(params *chaincfg.Params, cfg *config.Config, cache *blockcache.Cache) *Server {
	s := &Server{
		params:      params,
		cfg:         cfg,
		cache:       cache,
		addrs:       addrmgr.New(""),
		peers:       make(map[*peer.Peer]struct{}),
		peersByAddr: make(map[string]*peer.Peer),
		selfAddrs:   localAddrs(cfg.TCPPort),
		inbox:       make(chan peer.Message, 256),
		connResults: make(chan connmgr.ConnResult, 16),
		acceptConns: make(chan net.Conn, 16),
		discovered:  make(chan []string, 1),
		discoverer:  newDiscoverer(params),
	}
	s.conn = connmgr.New(s.addrs, cfg.Proxy, cfg.ProxyUser, cfg.ProxyPass, s.isSelf, s.isConnected)
	s.sync = netsync.New(cache, nil)
	return s
}

func localAddrs(port int) map[string]struct{} {
	out := make(map[string]struct{})
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return out
	}
	suffix := fmt.Sprintf(":%d", port)
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		out[ipNet.IP.String()+suffix] = struct{}{}
	}
	return out
}

func (s *Server) isSelf(addr string) bool {
	_, ok := s.selfAddrs[addr]
	return ok
}

func (s *Server) isConnected(addr string) bool {
	_, ok := s.peersByAddr[addr]
	return ok
}

// Start opens the inbound listener and seeds the address pool. A
// configured direct node bypasses DNS discovery entirely.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.TCPPort))
	if err != nil {
		return errorf(ErrListen, "listen on port %d: %v", s.cfg.TCPPort, err)
	}
	s.listener = ln
	go s.acceptLoop()

	if s.cfg.DirectNode != "" {
		s.addrs.AddPeer(s.cfg.DirectNode)
	} else {
		s.tryDiscover()
	}
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.acceptConns <- conn
	}
}

// Run drives the dispatch loop until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case now := <-ticker.C:
			s.onTick(now)
		case msg := <-s.inbox:
			s.handleInbound(msg)
		case res := <-s.connResults:
			s.handleConnResult(res)
		case conn := <-s.acceptConns:
			s.handleAccept(conn)
		case addrs := <-s.discovered:
			s.discoverer.resolving = false
			s.addrs.AddPeers(addrs)
		}
	}
}

func (s *Server) shutdown() {
	if s.listener != nil {
		s.listener.Close()
	}
	for p := range s.peers {
		p.Close()
	}
}

func (s *Server) onTick(now time.Time) {
	s.ticks++

	// Dial rounds are paced by connectInterval; everything else runs on
	// every tick.
	interval := int64(s.cfg.ConnectInterval)
	if interval < 1 {
		interval = 1
	}
	if (s.ticks-1)%interval == 0 {
		shortage := s.cfg.MaxNodeCount - len(s.peers)
		s.conn.Schedule(shortage, s.connResults)
	}
	if s.cfg.DirectNode == "" {
		s.tryDiscover()
	}

	if evicted := s.sync.OnTick(now); evicted != nil {
		s.disconnect(evicted, errorf(ErrIdleRequester, "%s: idle header requester evicted", evicted.Addr()))
	}

	for p := range s.peers {
		if p.CheckHandshakeTimeout(now) {
			s.disconnect(p, errorf(ErrHandshakeTimeout, "%s: handshake timed out", p.Addr()))
			continue
		}
		p.MaybePing(now, randomNonce())
	}

	s.addrs.OnTick(s.ticks)
}

func (s *Server) tryDiscover() {
	host, ok := s.discoverer.next()
	if !ok {
		return
	}
	go func() {
		ips, err := net.LookupHost(host)
		if err != nil {
			log.Debugf("dns seed %s: %v", host, err)
			s.discovered <- nil
			return
		}
		addrs := make([]string, 0, len(ips))
		for _, ip := range ips {
			addrs = append(addrs, net.JoinHostPort(ip, s.params.DefaultPort))
		}
		s.discovered <- addrs
	}()
}

func (s *Server) handleAccept(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	p := peer.New(conn, addr, true, s.params, randomNonce())
	s.peers[p] = struct{}{}
	p.Start(s.inbox)
}

func (s *Server) handleConnResult(res connmgr.ConnResult) {
	if res.Err != nil {
		log.Debugf("dial %s failed in %s: %v", res.Addr, res.Elapsed, res.Err)
		s.addrs.SetPeerDisconnected(res.Addr, res.Err, false)
		return
	}

	p := peer.New(res.Conn, res.Addr, false, s.params, randomNonce())
	s.peers[p] = struct{}{}
	s.peersByAddr[res.Addr] = p
	p.Start(s.inbox)

	host, portStr, err := net.SplitHostPort(res.Addr)
	if err != nil {
		s.disconnect(p, errorf(ErrListen, "malformed dial address %s", res.Addr))
		return
	}
	portNum, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		s.disconnect(p, errorf(ErrListen, "malformed dial port %s: %v", res.Addr, err))
		return
	}
	you := wire.NewNetAddressIPPort(net.ParseIP(host), uint16(portNum), 0)
	me := wire.NewNetAddressIPPort(net.IPv4zero, uint16(s.cfg.TCPPort), wire.SFNodeNetwork)

	tip := s.cache.Chain().BestSnapshot()
	p.SendVersion(me, you, wire.SFNodeNetwork, userAgent, int32(tip.Height))
}

func (s *Server) handleInbound(msg peer.Message) {
	p := msg.Peer
	if msg.Err != nil {
		s.disconnect(p, msg.Err)
		return
	}

	res, err := p.HandleMessage(msg.Msg, time.Now())
	if err != nil {
		s.disconnect(p, err)
		return
	}

	if res.BecameReady {
		s.onPeerReady(p)
	}
	if len(res.NewAddrs) > 0 {
		addrs := make([]string, 0, len(res.NewAddrs))
		for _, a := range res.NewAddrs {
			addrs = append(addrs, net.JoinHostPort(a.IP.String(), strconv.Itoa(int(a.Port))))
		}
		s.addrs.AddPeers(addrs)
	}
	if len(res.Headers) > 0 {
		evict, herr := s.sync.HandleHeaders(p, res.Headers, time.Now())
		if herr != nil {
			log.Debugf("%s: header rejected: %v", p.Addr(), herr)
		}
		if evict {
			s.disconnect(p, herr)
			return
		}
	}
	if res.Block != nil {
		evict, berr := s.sync.HandleBlock(p, res.Block, time.Now())
		if berr != nil {
			log.Debugf("%s: block rejected: %v", p.Addr(), berr)
		}
		if evict {
			s.disconnect(p, berr)
			return
		}
	}
}

func (s *Server) onPeerReady(p *peer.Peer) {
	if !p.Inbound() {
		s.addrs.SetPeerConnected(p.Addr(), p.RTT)
	}
	for _, m := range p.StartupMessages(randomNonce()) {
		p.QueueMessage(m)
	}
	s.sync.AddNode(p, time.Now())
}

func (s *Server) disconnect(p *peer.Peer, cause error) {
	if p == nil {
		return
	}
	delete(s.peers, p)
	delete(s.peersByAddr, p.Addr())
	s.sync.RemoveNode(p)
	if !p.Inbound() {
		s.addrs.SetPeerDisconnected(p.Addr(), cause, p.IsReady())
	}
	p.Close()
}

func randomNonce() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

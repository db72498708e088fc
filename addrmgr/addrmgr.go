// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr tracks every peer address the node has ever heard of and
// decides which one to dial next. It is the known-peer book: addresses
// come in from DNS seeds, addr messages, and a configured direct peer, and
// leave when they go 5 minutes without a successful connection.
package addrmgr

import (
	"container/list"
	"sync"
	"time"
)

// PeerState describes where an address sits in the connect-retry cycle.
type PeerState int

const (
	StateStandby PeerState = iota
	StateConnecting
	StateConnected
)

// connectCooldown is the minimum time between two dial attempts toward the
// same address.
const connectCooldown = 5 * time.Second

// expireAfter is how long an address can go without becoming active before
// it is dropped from the pool entirely.
const expireAfter = 5 * time.Minute

// gcInterval is how many onTick calls pass between expiry sweeps.
const gcInterval = 20

// PeerInfo is everything the manager tracks about one known address.
type PeerInfo struct {
	Addr            string
	Services        uint64
	RTT             time.Duration
	CreationTime    time.Time
	LastConnectTime time.Time
	LastActiveTime  time.Time
	State           PeerState
	DisconnectError error

	connElem   *list.Element
	activeElem *list.Element
}

func (p *PeerInfo) isStandby() bool   { return p.State == StateStandby }
func (p *PeerInfo) isConnected() bool { return p.State == StateConnected }

// Manager is the peer address book. A zero Manager is not usable; build one
// with New.
type Manager struct {
	mu sync.Mutex

	localAddr string

	peers map[string]*PeerInfo
	// connectionPool holds every standby peer, oldest lastConnectTime
	// first, so GetConnectionPeer always offers the address that has
	// waited longest since its last dial attempt.
	connectionPool *list.List
	// expiringPool holds every peer not currently connected, oldest
	// lastActiveTime first, so removeExpired can stop at the first
	// entry that is still within expireAfter.
	expiringPool *list.List
}

// New returns an empty address manager. localAddr identifies this node's
// own address so it is never added to its own pool.
func New(localAddr string) *Manager {
	return &Manager{
		localAddr:      localAddr,
		peers:          make(map[string]*PeerInfo),
		connectionPool: list.New(),
		expiringPool:   list.New(),
	}
}

// AddPeer records addr as known, or refreshes its last-active time if it
// already is. A self-address is silently ignored.
func (m *Manager) AddPeer(addr string) {
	if addr == "" || addr == m.localAddr {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.peers[addr]
	if !ok {
		info = &PeerInfo{Addr: addr, CreationTime: time.Now()}
		m.peers[addr] = info
	} else {
		m.removeFromPools(info)
	}
	info.LastActiveTime = time.Now()
	m.addToPools(info)
}

// AddPeers records a batch of addresses, as arrive together in a single
// addr message.
func (m *Manager) AddPeers(addrs []string) {
	for _, addr := range addrs {
		m.AddPeer(addr)
	}
}

// GetConnectionPeer returns the standby address that has waited longest
// since its last dial attempt, stamping its LastConnectTime so it moves to
// the back of the pool (it stays standby), or ("", false) if the pool is
// empty or the oldest entry hasn't cleared connectCooldown yet.
func (m *Manager) GetConnectionPeer() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	front := m.connectionPool.Front()
	if front == nil {
		return "", false
	}
	info := front.Value.(*PeerInfo)
	if time.Since(info.LastConnectTime) < connectCooldown {
		return "", false
	}

	m.removeFromPools(info)
	info.LastConnectTime = time.Now()
	m.addToPools(info)
	return info.Addr, true
}

// SetPeerConnecting marks addr as mid-dial, taking it out of the
// connection pool until the attempt resolves.
func (m *Manager) SetPeerConnecting(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.findOrCreate(addr)
	m.removeFromPools(info)
	info.State = StateConnecting
	m.addToPools(info)
}

// SetPeerConnected marks addr as an active peer with the given measured
// round-trip time.
func (m *Manager) SetPeerConnected(addr string, rtt time.Duration) {
	if addr == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.findOrCreate(addr)
	m.removeFromPools(info)
	info.State = StateConnected
	info.RTT = rtt
	m.addToPools(info)
}

// SetPeerDisconnected returns addr to standby so it becomes eligible for
// reconnection again. wasConnected refreshes its last-active time, the
// same way a graceful disconnect of a previously working peer does.
func (m *Manager) SetPeerDisconnected(addr string, disconnectErr error, wasConnected bool) {
	if addr == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.findOrCreate(addr)
	m.removeFromPools(info)
	info.State = StateStandby
	info.DisconnectError = disconnectErr
	if wasConnected {
		info.LastActiveTime = time.Now()
	}
	m.addToPools(info)
}

// OnTick runs periodic bookkeeping; every gcInterval calls it sweeps
// expired addresses.
func (m *Manager) OnTick(times int64) {
	if times%gcInterval == 0 {
		m.removeExpired()
	}
}

// PeerCount returns the total number of known addresses.
func (m *Manager) PeerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.peers)
}

// ConnectionPoolSize returns the number of addresses currently eligible
// for a future dial attempt.
func (m *Manager) ConnectionPoolSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectionPool.Len()
}

func (m *Manager) findOrCreate(addr string) *PeerInfo {
	info, ok := m.peers[addr]
	if !ok {
		info = &PeerInfo{Addr: addr, CreationTime: time.Now()}
		m.peers[addr] = info
	}
	return info
}

// removeFromPools takes info out of whichever pool lists it's in. Callers
// must re-add it with addToPools once its state/timestamps are updated, so
// the two always bracket a mutation and the pools stay consistent with the
// entry's state.
func (m *Manager) removeFromPools(info *PeerInfo) {
	if info.connElem != nil {
		m.connectionPool.Remove(info.connElem)
		info.connElem = nil
	}
	if info.activeElem != nil {
		m.expiringPool.Remove(info.activeElem)
		info.activeElem = nil
	}
}

func (m *Manager) addToPools(info *PeerInfo) {
	if info.isStandby() {
		info.connElem = insertOrdered(m.connectionPool, info, func(p *PeerInfo) time.Time { return p.LastConnectTime })
	}
	if !info.isConnected() {
		info.activeElem = insertOrdered(m.expiringPool, info, func(p *PeerInfo) time.Time { return p.LastActiveTime })
	}
}

// insertOrdered keeps lst sorted ascending by key. Most insertions land at
// the back (a just-touched entry has the newest timestamp), so the walk
// starts at the back and only reaches the front for the rarer case of a
// freshly discovered address whose key is still its zero value.
func insertOrdered(lst *list.List, info *PeerInfo, key func(*PeerInfo) time.Time) *list.Element {
	t := key(info)
	for e := lst.Back(); e != nil; e = e.Prev() {
		if !key(e.Value.(*PeerInfo)).After(t) {
			return lst.InsertAfter(info, e)
		}
	}
	return lst.PushFront(info)
}

func (m *Manager) removeExpired() {
	for {
		front := m.expiringPool.Front()
		if front == nil {
			break
		}
		info := front.Value.(*PeerInfo)
		if time.Since(info.LastActiveTime) <= expireAfter {
			break
		}
		log.Debugf("dropping expired address %s", info.Addr)
		m.removeFromPools(info)
		delete(m.peers, info.Addr)
	}
}

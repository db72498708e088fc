// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync drives header and block download across a set of ready
// peer sessions: one lowest-RTT requester feeds headers on a 10s cadence
// (evicted if it goes idle), while every ready peer serves a 1024-block
// download window in 128-block batches. It is driven entirely by the
// server's single dispatch loop; every exported method here assumes it is
// called from that one goroutine.
package netsync

import (
	"math/big"
	"time"

	"github.com/hindsights/xbtc/blockcache"
	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/peer"
	"github.com/hindsights/xbtc/wire"
)

const (
	// headerRequestTimeout is how long a header request may go
	// unanswered before the requester is considered idle.
	headerRequestTimeout = 5 * time.Second

	// idleRequesterTimeout additionally requires the requester to have
	// been silent this long before it is evicted.
	idleRequesterTimeout = 3 * time.Second

	// requestInterval is how often a fresh, unsolicited header request is
	// issued when nothing is currently outstanding.
	requestInterval = 10 * time.Second

	// warmupWindow/warmupMinNodes delay requester selection until either
	// 2 seconds have passed or enough nodes are available to pick from.
	warmupWindow   = 2 * time.Second
	warmupMinNodes = 5

	// blockDownloadWindow bounds how far past the last common ancestor
	// blocks may be requested; blockBatchSize caps one getdata batch.
	blockDownloadWindow = 1024
	blockBatchSize      = 128

	// offenceThreshold is how many header/block validation failures a
	// single peer may cause, counted since its last accepted block, before
	// the synchronizer asks its owner to disconnect it.
	offenceThreshold = 3
)

// Synchronizer coordinates header and block download for the peers handed
// to it via AddNode. It owns no sockets: QueueMessage calls on the peers
// it tracks are the only effect it has on the network.
type Synchronizer struct {
	cache            *blockcache.Cache
	minimumChainWork *big.Int

	nodes             map[*peer.Peer]struct{}
	headersRequester  *peer.Peer
	requestingHeaders bool

	startTime              time.Time
	lastHeadersRequestTime time.Time
	lastHeadersReceiveTime time.Time

	offences map[*peer.Peer]int
}

// New returns a Synchronizer backed by cache. minimumChainWork discards
// peers whose advertised best header falls below it.
func New(cache *blockcache.Cache, minimumChainWork *big.Int) *Synchronizer {
	if minimumChainWork == nil {
		minimumChainWork = big.NewInt(0)
	}
	return &Synchronizer{
		cache:            cache,
		minimumChainWork: minimumChainWork,
		nodes:            make(map[*peer.Peer]struct{}),
		offences:         make(map[*peer.Peer]int),
		startTime:        time.Now(),
	}
}

// AddNode registers a ready peer as a sync participant and reconsiders the
// header requester if none is currently assigned.
func (s *Synchronizer) AddNode(node *peer.Peer, now time.Time) {
	s.nodes[node] = struct{}{}
	s.chooseHeadersRequester(false, now)
}

// RemoveNode drops node from sync tracking. If it was the header
// requester, a replacement is chosen immediately.
func (s *Synchronizer) RemoveNode(node *peer.Peer) {
	delete(s.nodes, node)
	delete(s.offences, node)
	if node == s.headersRequester {
		s.headersRequester = nil
		s.requestingHeaders = false
		s.chooseHeadersRequester(true, time.Now())
	}
}

// OnTick runs the synchronizer's per-tick maintenance:
// evicting an idle header requester, reconsidering the
// requester choice, and issuing a fresh header request if nothing is
// outstanding. It returns the peer that should be disconnected as a
// result (the idle requester), or nil.
func (s *Synchronizer) OnTick(now time.Time) *peer.Peer {
	evicted := s.checkHeaderRequestTimeout(now)
	s.chooseHeadersRequester(false, now)
	s.scheduleRequestHeaders(now)
	return evicted
}

func (s *Synchronizer) checkHeaderRequestTimeout(now time.Time) *peer.Peer {
	if !s.requestingHeaders || now.Sub(s.lastHeadersRequestTime) <= headerRequestTimeout {
		return nil
	}
	requester := s.headersRequester
	if requester == nil || now.Sub(requester.LastRecv()) <= idleRequesterTimeout {
		return nil
	}
	log.Debugf("onTick idle header requester %s", requester.Addr())
	s.requestingHeaders = false
	s.RemoveNode(requester)
	return requester
}

func (s *Synchronizer) scheduleRequestHeaders(now time.Time) {
	if s.requestingHeaders {
		return
	}
	if now.Sub(s.lastHeadersRequestTime) < requestInterval {
		return
	}
	s.requestHeaders(nil, now)
}

func (s *Synchronizer) chooseHeadersRequester(forced bool, now time.Time) {
	if s.headersRequester != nil && !forced {
		return
	}
	s.headersRequester = s.findHeadersRequester(now)
	s.requestHeaders(nil, now)
}

// findHeadersRequester prefers the outbound peer with the lowest measured
// RTT, falling back to any tracked peer once one is needed. It declines to
// pick at all during the startup warm-up window, to give more outbound
// peers a chance to report their RTT first.
func (s *Synchronizer) findHeadersRequester(now time.Time) *peer.Peer {
	if len(s.nodes) == 0 {
		return nil
	}
	if now.Sub(s.startTime) < warmupWindow && len(s.nodes) < warmupMinNodes {
		return nil
	}

	var best *peer.Peer
	for node := range s.nodes {
		if node.Inbound() {
			continue
		}
		if best == nil || node.RTT < best.RTT {
			best = node
		}
	}
	if best != nil {
		return best
	}
	for node := range s.nodes {
		return node
	}
	return nil
}

// requestHeaders sends a getheaders built from a locator rooted at from,
// or at the current best known header if from is nil.
func (s *Synchronizer) requestHeaders(from *chainhash.Hash, now time.Time) {
	if s.headersRequester == nil {
		return
	}
	if from == nil {
		best := s.cache.Chain().BestHeader()
		if best == nil {
			return
		}
		from = &best.Hash
	}

	msg := wire.NewMsgGetHeaders()
	msg.BlockLocatorHashes = s.cache.Chain().BlockLocatorFromHash(from)
	s.headersRequester.QueueMessage(msg)
	s.requestingHeaders = true
	s.lastHeadersRequestTime = now
}

// HandleHeaders processes a headers message: every header is added to the
// index, the sending peer's known-best-block bookkeeping is updated, and
// another request is issued immediately to keep draining a long header
// chain, or a block download is kicked off once a
// short (non-2000) batch arrives and nothing is downloading yet. It
// reports whether node should be disconnected for repeated invalid
// headers.
func (s *Synchronizer) HandleHeaders(node *peer.Peer, headers []wire.BlockHeader, now time.Time) (bool, error) {
	s.requestingHeaders = false

	var last *blockchain.NodeSnapshot
	var firstErr error
	for i := range headers {
		snap, err := s.cache.AddHeader(&headers[i], now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if s.noteOffence(node) {
				return true, err
			}
			continue
		}
		last = snap
	}

	if len(headers) > 0 {
		s.lastHeadersReceiveTime = now
		if last != nil {
			s.updateBlockAvailability(node, last)
			if len(headers) >= 2000 {
				log.Debugf("handleHeaders request again %d %d %s", len(headers), last.Height, node.Addr())
				s.requestHeaders(&last.Hash, now)
			}
		}
	}
	if len(headers) < 2000 && node.Sync.LastDownloadBlock.IsZero() {
		s.checkRequestBlocks(node)
	}
	return false, firstErr
}

// HandleBlock processes a fully downloaded block: it clears the block's
// in-flight record, runs full validation/connection, and immediately
// requests the peer's next batch. It reports whether node should be
// disconnected for repeated invalid blocks.
func (s *Synchronizer) HandleBlock(node *peer.Peer, block *wire.MsgBlock, now time.Time) (bool, error) {
	hash := block.Header.BlockHash()
	delete(node.Sync.RequestingBlocks, hash)

	_, _, err := s.cache.AddBlock(block, now)
	if err != nil {
		evict := s.noteOffence(node)
		s.checkRequestBlocks(node)
		return evict, err
	}
	s.clearOffences(node)
	s.checkRequestBlocks(node)
	return false, nil
}

func (s *Synchronizer) checkRequestBlocks(node *peer.Peer) {
	if !node.Sync.IsRequestingBlocks() {
		s.requestBlocks(node)
	}
}

func (s *Synchronizer) requestBlocks(node *peer.Peer) {
	hashes := s.findBlocksToDownload(node, blockBatchSize)
	if len(hashes) == 0 {
		return
	}

	msg := wire.NewMsgGetData()
	for _, h := range hashes {
		msg.InvList = append(msg.InvList, wire.NewInvVect(wire.InvTypeBlock, h))
	}
	node.QueueMessage(msg)

	node.Sync.RequestingBlocks = make(map[chainhash.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		node.Sync.RequestingBlocks[*h] = struct{}{}
	}
	node.Sync.LastDownloadBlock = *hashes[len(hashes)-1]
}

// findBlocksToDownload raises the peer's last known common ancestor with
// our chain, bounds the
// batch to the 1024-block download window, and walks the requested range
// backward from its end via each block's parent link.
func (s *Synchronizer) findBlocksToDownload(node *peer.Peer, count int) []*chainhash.Hash {
	s.processBlockAvailability(node)
	chain := s.cache.Chain()

	if node.Sync.BestKnownBlock == nil {
		return nil
	}
	bestKnown := chain.Snapshot(node.Sync.BestKnownBlock)
	if bestKnown == nil {
		return nil
	}
	tip := chain.BestSnapshot()
	tipSnap := chain.Snapshot(&tip.Hash)
	if tipSnap == nil {
		return nil
	}
	if bestKnown.ChainWork.Cmp(tipSnap.ChainWork) < 0 || bestKnown.ChainWork.Cmp(s.minimumChainWork) < 0 {
		// This peer has nothing interesting.
		return nil
	}

	if node.Sync.LastCommonBlock.IsZero() {
		guessHeight := bestKnown.Height
		if tip.Height < guessHeight {
			guessHeight = tip.Height
		}
		guess := chain.NodeAtHeight(guessHeight)
		if guess == nil {
			return nil
		}
		node.Sync.LastCommonBlock = *guess
	}

	common := chain.LastCommonAncestor(&node.Sync.LastCommonBlock, node.Sync.BestKnownBlock)
	if common == nil {
		return nil
	}
	node.Sync.LastCommonBlock = *common
	if *common == *node.Sync.BestKnownBlock {
		return nil
	}

	commonSnap := chain.Snapshot(common)
	if commonSnap == nil {
		return nil
	}
	windowEnd := commonSnap.Height + blockDownloadWindow
	maxHeight := bestKnown.Height
	if windowEnd+1 < maxHeight {
		maxHeight = windowEnd + 1
	}
	realCount := maxHeight - commonSnap.Height
	if count > blockBatchSize {
		count = blockBatchSize
	}
	if int64(count) < realCount {
		realCount = int64(count)
	}
	if realCount <= 0 {
		return nil
	}

	end := chain.AncestorAtHeight(node.Sync.BestKnownBlock, commonSnap.Height+realCount)
	if end == nil {
		return nil
	}

	hashes := make([]*chainhash.Hash, realCount)
	hashes[realCount-1] = end
	cur := end
	for i := realCount - 1; i > 0; i-- {
		curSnap := chain.Snapshot(cur)
		if curSnap == nil {
			return nil
		}
		prev := curSnap.Header.PrevBlock
		hashes[i-1] = &prev
		cur = &prev
	}

	node.Sync.LastDownloadBlock = *end
	node.Sync.LastCommonBlock = *end
	return hashes
}

func (s *Synchronizer) processBlockAvailability(node *peer.Peer) {
	if node.Sync.LastUnknownBlockHash.IsZero() {
		return
	}
	snap := s.cache.Chain().Snapshot(&node.Sync.LastUnknownBlockHash)
	if snap != nil && snap.ChainWork.Sign() > 0 {
		if node.Sync.BestKnownBlock == nil || snap.ChainWork.Cmp(node.Sync.BestKnownWork) >= 0 {
			h := snap.Hash
			node.Sync.BestKnownBlock = &h
			node.Sync.BestKnownWork = snap.ChainWork
		}
		node.Sync.LastUnknownBlockHash = chainhash.Hash{}
	}
}

func (s *Synchronizer) updateBlockAvailability(node *peer.Peer, snap *blockchain.NodeSnapshot) {
	s.processBlockAvailability(node)
	if snap.ChainWork.Sign() > 0 {
		if node.Sync.BestKnownBlock == nil || snap.ChainWork.Cmp(node.Sync.BestKnownWork) >= 0 {
			h := snap.Hash
			node.Sync.BestKnownBlock = &h
			node.Sync.BestKnownWork = snap.ChainWork
		}
	} else {
		node.Sync.LastUnknownBlockHash = snap.Hash
	}
}

func (s *Synchronizer) noteOffence(node *peer.Peer) bool {
	s.offences[node]++
	return s.offences[node] >= offenceThreshold
}

func (s *Synchronizer) clearOffences(node *peer.Peer) {
	delete(s.offences, node)
}

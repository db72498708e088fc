// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes
// allowed per message.
const MaxBlockLocatorsPerMsg = 500

// MsgGetBlocks implements the Message interface and represents a request
// for a list of block hashes, built from a doubling-gap locator and
// terminated by HashStop.
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

// AddBlockLocatorHash adds a new block locator hash to the message.
func (m *MsgGetBlocks) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(m.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.AddBlockLocatorHash", "too many block locator hashes for message")
	}
	m.BlockLocatorHashes = append(m.BlockLocatorHashes, hash)
	return nil
}

// BtcDecode decodes m from r.
func (m *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	if err := ReadElement(r, &m.ProtocolVersion); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.BtcDecode", fmt.Sprintf(
			"too many block locator hashes for message [count %d, max %d]", count, MaxBlockLocatorsPerMsg))
	}

	locatorHashes := make([]chainhash.Hash, count)
	m.BlockLocatorHashes = make([]*chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		hash := &locatorHashes[i]
		if err := ReadElement(r, hash); err != nil {
			return err
		}
		if err := m.AddBlockLocatorHash(hash); err != nil {
			return err
		}
	}

	return ReadElement(r, &m.HashStop)
}

// BtcEncode encodes m to w.
func (m *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	count := len(m.BlockLocatorHashes)
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.BtcEncode", fmt.Sprintf(
			"too many block locator hashes for message [count %d, max %d]", count, MaxBlockLocatorsPerMsg))
	}

	if err := WriteElement(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, hash := range m.BlockLocatorHashes {
		if err := WriteElement(w, *hash); err != nil {
			return err
		}
	}
	return WriteElement(w, m.HashStop)
}

// Command returns the protocol command string for a getblocks message.
func (m *MsgGetBlocks) Command() string {
	return CmdGetBlocks
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgGetBlocks) MaxPayloadLength(pver uint32) uint64 {
	return 4 + uint64(VarIntSerializeSize(MaxBlockLocatorsPerMsg)) +
		(MaxBlockLocatorsPerMsg * chainhash.HashSize) + chainhash.HashSize
}

// NewMsgGetBlocks returns a new getblocks message that conforms to the
// Message interface using the given hash stop.
func NewMsgGetBlocks(hashStop *chainhash.Hash) *MsgGetBlocks {
	return &MsgGetBlocks{
		ProtocolVersion:    ProtocolVersion,
		BlockLocatorHashes: make([]*chainhash.Hash, 0, MaxBlockLocatorsPerMsg),
		HashStop:           *hashStop,
	}
}

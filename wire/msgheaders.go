// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxBlockHeadersPerMsg is the maximum number of block headers that can be
// in a single headers message.
const MaxBlockHeadersPerMsg = 2000

// MsgHeaders implements the Message interface and represents a reply to a
// getheaders message.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// AddBlockHeader adds a new block header to the message.
func (m *MsgHeaders) AddBlockHeader(bh *BlockHeader) error {
	if len(m.Headers)+1 > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.AddBlockHeader", "too many block headers for message")
	}
	m.Headers = append(m.Headers, bh)
	return nil
}

// BtcDecode decodes m from r. Each header on the wire is followed by a
// txn_count varint that is always zero in a headers message.
func (m *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcDecode", fmt.Sprintf(
			"too many block headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	headers := make([]BlockHeader, count)
	m.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := &headers[i]
		if err := readBlockHeader(r, pver, bh); err != nil {
			return err
		}

		txCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return messageError("MsgHeaders.BtcDecode", "headers message indicates non-zero transaction count")
		}

		if err := m.AddBlockHeader(bh); err != nil {
			return err
		}
	}
	return nil
}

// BtcEncode encodes m to w.
func (m *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	count := len(m.Headers)
	if count > MaxBlockHeadersPerMsg {
		return messageError("MsgHeaders.BtcEncode", fmt.Sprintf(
			"too many block headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, bh := range m.Headers {
		if err := writeBlockHeader(w, pver, bh); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for a headers message.
func (m *MsgHeaders) Command() string {
	return CmdHeaders
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgHeaders) MaxPayloadLength(pver uint32) uint64 {
	return uint64(VarIntSerializeSize(MaxBlockHeadersPerMsg)) + MaxBlockHeadersPerMsg*uint64(MaxBlockHeaderPayload+1)
}

// NewMsgHeaders returns a new headers message that conforms to the Message
// interface with an empty header list.
func NewMsgHeaders() *MsgHeaders {
	return &MsgHeaders{Headers: make([]*BlockHeader, 0, MaxBlockHeadersPerMsg)}
}

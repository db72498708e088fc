// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPing implements the Message interface and represents a ping message,
// sent periodically to confirm a connection is still valid.
type MsgPing struct {
	Nonce uint64
}

// BtcDecode decodes m from r.
func (m *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	return ReadElement(r, &m.Nonce)
}

// BtcEncode encodes m to w.
func (m *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return WriteElement(w, m.Nonce)
}

// Command returns the protocol command string for a ping message.
func (m *MsgPing) Command() string {
	return CmdPing
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgPing) MaxPayloadLength(pver uint32) uint64 {
	return 8
}

// NewMsgPing returns a new ping message using the given nonce.
func NewMsgPing(nonce uint64) *MsgPing {
	return &MsgPing{Nonce: nonce}
}

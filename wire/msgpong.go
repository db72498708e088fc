// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgPong implements the Message interface and represents a reply to a ping
// message, echoing back the nonce that was sent.
type MsgPong struct {
	Nonce uint64
}

// BtcDecode decodes m from r.
func (m *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	return ReadElement(r, &m.Nonce)
}

// BtcEncode encodes m to w.
func (m *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return WriteElement(w, m.Nonce)
}

// Command returns the protocol command string for a pong message.
func (m *MsgPong) Command() string {
	return CmdPong
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgPong) MaxPayloadLength(pver uint32) uint64 {
	return 8
}

// NewMsgPong returns a new pong message echoing the given nonce.
func NewMsgPong(nonce uint64) *MsgPong {
	return &MsgPong{Nonce: nonce}
}

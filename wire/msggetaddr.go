// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgGetAddr implements the Message interface and represents a request for
// known active peers, to which the receiver replies with a MsgAddr.
type MsgGetAddr struct{}

// BtcDecode decodes m from r. MsgGetAddr has no payload.
func (m *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

// BtcEncode encodes m to w. MsgGetAddr has no payload.
func (m *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

// Command returns the protocol command string for a getaddr message.
func (m *MsgGetAddr) Command() string {
	return CmdGetAddr
}

// MaxPayloadLength returns the maximum length the payload can be: zero.
func (m *MsgGetAddr) MaxPayloadLength(pver uint32) uint64 {
	return 0
}

// NewMsgGetAddr returns a new getaddr message.
func NewMsgGetAddr() *MsgGetAddr {
	return &MsgGetAddr{}
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgVerAck defines a message which is sent in reply to a version message
// (MsgVersion) once primary version information has been exchanged. This
// message consists of only a message header with the command CmdVerAck and
// no payload.
type MsgVerAck struct{}

// BtcDecode decodes m from r. MsgVerAck has no payload.
func (m *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

// BtcEncode encodes m to w. MsgVerAck has no payload.
func (m *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

// Command returns the protocol command string for a verack message.
func (m *MsgVerAck) Command() string {
	return CmdVerAck
}

// MaxPayloadLength returns the maximum length the payload can be: zero.
func (m *MsgVerAck) MaxPayloadLength(pver uint32) uint64 {
	return 0
}

// NewMsgVerAck returns a new verack message.
func NewMsgVerAck() *MsgVerAck {
	return &MsgVerAck{}
}

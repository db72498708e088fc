// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgSendHeaders implements the Message interface and represents a request
// that new blocks be announced via headers rather than inv going forward.
type MsgSendHeaders struct{}

// BtcDecode decodes m from r. MsgSendHeaders has no payload.
func (m *MsgSendHeaders) BtcDecode(r io.Reader, pver uint32) error {
	return nil
}

// BtcEncode encodes m to w. MsgSendHeaders has no payload.
func (m *MsgSendHeaders) BtcEncode(w io.Writer, pver uint32) error {
	return nil
}

// Command returns the protocol command string for a sendheaders message.
func (m *MsgSendHeaders) Command() string {
	return CmdSendHeaders
}

// MaxPayloadLength returns the maximum length the payload can be: zero.
func (m *MsgSendHeaders) MaxPayloadLength(pver uint32) uint64 {
	return 0
}

// NewMsgSendHeaders returns a new sendheaders message.
func NewMsgSendHeaders() *MsgSendHeaders {
	return &MsgSendHeaders{}
}

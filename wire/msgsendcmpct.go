// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgSendCmpct implements the Message interface and announces compact block
// relay support/preference. This node never requests compact block mode
// (Announce is always decoded but ignored beyond logging), since block
// relay uses full blocks, but the message is accepted so peers that send it
// unconditionally are not penalized.
type MsgSendCmpct struct {
	Announce bool
	Version  uint64
}

// BtcDecode decodes m from r.
func (m *MsgSendCmpct) BtcDecode(r io.Reader, pver uint32) error {
	if err := ReadElement(r, &m.Announce); err != nil {
		return err
	}
	return ReadElement(r, &m.Version)
}

// BtcEncode encodes m to w.
func (m *MsgSendCmpct) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteElement(w, m.Announce); err != nil {
		return err
	}
	return WriteElement(w, m.Version)
}

// Command returns the protocol command string for a sendcmpct message.
func (m *MsgSendCmpct) Command() string {
	return CmdSendCmpct
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgSendCmpct) MaxPayloadLength(pver uint32) uint64 {
	return 9
}

// NewMsgSendCmpct returns a new sendcmpct message.
func NewMsgSendCmpct(announce bool, version uint64) *MsgSendCmpct {
	return &MsgSendCmpct{Announce: announce, Version: version}
}

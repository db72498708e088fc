// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// MaxRejectReasonLen is the maximum length of a reject reason string.
const MaxRejectReasonLen = 1024

// MsgReject implements the Message interface and represents a reject
// message sent in response to a malformed or otherwise rejected message.
type MsgReject struct {
	Cmd    string
	Code   RejectCode
	Reason string
	Hash   chainhash.Hash
}

// BtcDecode decodes r into the receiver. The trailing Hash field is only
// present when Cmd is "block" or "tx".
func (m *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	cmd, err := ReadVarString(r, CommandSize)
	if err != nil {
		return err
	}
	m.Cmd = cmd

	var code uint8
	if err := ReadElement(r, &code); err != nil {
		return err
	}
	m.Code = RejectCode(code)

	reason, err := ReadVarString(r, MaxRejectReasonLen)
	if err != nil {
		return err
	}
	m.Reason = reason

	if m.Cmd == CmdBlock || m.Cmd == CmdTx {
		if err := ReadElement(r, &m.Hash); err != nil {
			return err
		}
	}
	return nil
}

// BtcEncode encodes the receiver to w.
func (m *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, m.Cmd); err != nil {
		return err
	}
	if err := WriteElement(w, uint8(m.Code)); err != nil {
		return err
	}
	if err := WriteVarString(w, m.Reason); err != nil {
		return err
	}
	if m.Cmd == CmdBlock || m.Cmd == CmdTx {
		if err := WriteElement(w, m.Hash); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for a reject message.
func (m *MsgReject) Command() string {
	return CmdReject
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgReject) MaxPayloadLength(pver uint32) uint64 {
	return uint64(VarIntSerializeSize(CommandSize)) + CommandSize + 1 +
		uint64(VarIntSerializeSize(MaxRejectReasonLen)) + MaxRejectReasonLen + chainhash.HashSize
}

// NewMsgReject returns a new reject message that conforms to the Message
// interface.
func NewMsgReject(command string, code RejectCode, reason string) *MsgReject {
	return &MsgReject{Cmd: command, Code: code, Reason: reason}
}

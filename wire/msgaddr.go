// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses that can be in a single
// addr message.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and represents a set of known
// active peers, gossiped periodically to keep address books fresh.
type MsgAddr struct {
	AddrList []*NetAddress
}

// AddAddress adds a known active peer to the message.
func (m *MsgAddr) AddAddress(na *NetAddress) error {
	if len(m.AddrList)+1 > MaxAddrPerMsg {
		return messageError("MsgAddr.AddAddress", "too many addresses for message")
	}
	m.AddrList = append(m.AddrList, na)
	return nil
}

// BtcDecode decodes m from r.
func (m *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcDecode", fmt.Sprintf(
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg))
	}

	addrList := make([]NetAddress, count)
	m.AddrList = make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &addrList[i]
		if err := readNetAddress(r, pver, na, true); err != nil {
			return err
		}
		if err := m.AddAddress(na); err != nil {
			return err
		}
	}
	return nil
}

// BtcEncode encodes m to w.
func (m *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	count := len(m.AddrList)
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.BtcEncode", fmt.Sprintf(
			"too many addresses for message [count %d, max %d]", count, MaxAddrPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, na := range m.AddrList {
		if err := writeNetAddress(w, pver, na, true); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for an addr message.
func (m *MsgAddr) Command() string {
	return CmdAddr
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgAddr) MaxPayloadLength(pver uint32) uint64 {
	return uint64(VarIntSerializeSize(MaxAddrPerMsg)) + MaxAddrPerMsg*maxNetAddressPayload(pver)
}

// NewMsgAddr returns a new addr message that conforms to the Message
// interface with an empty list of addresses.
func NewMsgAddr() *MsgAddr {
	return &MsgAddr{AddrList: make([]*NetAddress, 0, MaxAddrPerMsg)}
}

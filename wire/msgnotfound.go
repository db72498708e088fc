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

// MsgNotFound implements the Message interface and represents a reply to a
// getdata message for an object the sender did not have.
type MsgNotFound struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (m *MsgNotFound) AddInvVect(iv *InvVect) error {
	if len(m.InvList)+1 > maxInvPerMsg {
		return messageError("MsgNotFound.AddInvVect", "too many inv vectors for message")
	}
	m.InvList = append(m.InvList, iv)
	return nil
}

// BtcDecode decodes m from r.
func (m *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxInvPerMsg {
		return messageError("MsgNotFound.BtcDecode", fmt.Sprintf(
			"too many inv vectors for message [count %d, max %d]", count, maxInvPerMsg))
	}

	invList := make([]InvVect, count)
	m.InvList = make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &invList[i]
		if err := readInvVect(r, pver, iv); err != nil {
			return err
		}
		if err := m.AddInvVect(iv); err != nil {
			return err
		}
	}
	return nil
}

// BtcEncode encodes m to w.
func (m *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	count := len(m.InvList)
	if count > maxInvPerMsg {
		return messageError("MsgNotFound.BtcEncode", fmt.Sprintf(
			"too many inv vectors for message [count %d, max %d]", count, maxInvPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, iv := range m.InvList {
		if err := writeInvVect(w, pver, iv); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for a notfound message.
func (m *MsgNotFound) Command() string {
	return CmdNotFound
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgNotFound) MaxPayloadLength(pver uint32) uint64 {
	return uint64(VarIntSerializeSize(maxInvPerMsg)) + maxInvPerMsg*(4+chainhash.HashSize)
}

// NewMsgNotFound returns a new notfound message with an empty inventory
// list.
func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}

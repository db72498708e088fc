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

// MsgGetData implements the Message interface and represents a request for
// the data referred to by a set of inventory vectors, typically sent in
// response to an inv message.
type MsgGetData struct {
	InvList []*InvVect
}

// AddInvVect adds an inventory vector to the message.
func (m *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(m.InvList)+1 > maxInvPerMsg {
		return messageError("MsgGetData.AddInvVect", "too many inv vectors for message")
	}
	m.InvList = append(m.InvList, iv)
	return nil
}

// BtcDecode decodes m from r.
func (m *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxInvPerMsg {
		return messageError("MsgGetData.BtcDecode", fmt.Sprintf(
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
func (m *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	count := len(m.InvList)
	if count > maxInvPerMsg {
		return messageError("MsgGetData.BtcEncode", fmt.Sprintf(
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

// Command returns the protocol command string for a getdata message.
func (m *MsgGetData) Command() string {
	return CmdGetData
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgGetData) MaxPayloadLength(pver uint32) uint64 {
	return uint64(VarIntSerializeSize(maxInvPerMsg)) + maxInvPerMsg*(4+chainhash.HashSize)
}

// NewMsgGetData returns a new getdata message with an empty inventory list.
func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0, defaultInvListAlloc)}
}

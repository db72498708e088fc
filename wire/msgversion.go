// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// DefaultUserAgent is the user agent advertised by this node absent any
// configured override.
const DefaultUserAgent = "/xbtc:0.1.0/"

// MsgVersion implements the Message interface and represents the initial
// handshake message exchanged by both ends of a connection.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       time.Time
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

// HasService returns whether the version message advertises the given
// service.
func (m *MsgVersion) HasService(service ServiceFlag) bool {
	return m.Services&service == service
}

// AddService adds service as one the version message advertises.
func (m *MsgVersion) AddService(service ServiceFlag) {
	m.Services |= service
}

// BtcDecode decodes m from r per the version message protocol encoding.
func (m *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	if err := ReadElement(r, &m.ProtocolVersion); err != nil {
		return err
	}
	if err := ReadElement(r, &m.Services); err != nil {
		return err
	}

	var ts int64
	if err := ReadElement(r, &ts); err != nil {
		return err
	}
	m.Timestamp = time.Unix(ts, 0)

	if err := readNetAddress(r, pver, &m.AddrYou, false); err != nil {
		return err
	}
	if err := readNetAddress(r, pver, &m.AddrMe, false); err != nil {
		return err
	}
	if err := ReadElement(r, &m.Nonce); err != nil {
		return err
	}

	userAgent, err := ReadVarString(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	if len(userAgent) > MaxUserAgentLen {
		return messageError("MsgVersion.BtcDecode", fmt.Sprintf(
			"user agent too long [len %d, max %d]", len(userAgent), MaxUserAgentLen))
	}
	m.UserAgent = userAgent

	if err := ReadElement(r, &m.LastBlock); err != nil {
		return err
	}

	// DisableRelayTx is optional; older peers may omit it.
	if err := ReadElement(r, &m.DisableRelayTx); err != nil {
		if err != io.EOF {
			return err
		}
		m.DisableRelayTx = false
	}

	return nil
}

// BtcEncode encodes m to w.
func (m *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteElement(w, m.ProtocolVersion); err != nil {
		return err
	}
	if err := WriteElement(w, m.Services); err != nil {
		return err
	}
	if err := WriteElement(w, m.Timestamp.Unix()); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &m.AddrYou, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &m.AddrMe, false); err != nil {
		return err
	}
	if err := WriteElement(w, m.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, m.UserAgent); err != nil {
		return err
	}
	if err := WriteElement(w, m.LastBlock); err != nil {
		return err
	}
	return WriteElement(w, m.DisableRelayTx)
}

// Command returns the protocol command string for a version message.
func (m *MsgVersion) Command() string {
	return CmdVersion
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver's protocol version.
func (m *MsgVersion) MaxPayloadLength(pver uint32) uint64 {
	return uint64(4+8+8+2*maxNetAddressPayload(pver)+8) + uint64(VarIntSerializeSize(MaxUserAgentLen)) + uint64(MaxUserAgentLen) + 4 + 1
}

// NewMsgVersion returns a new version message using the provided parameters
// and defaults for the remaining fields.
func NewMsgVersion(me, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Unix(time.Now().Unix(), 0),
		AddrYou:         *you,
		AddrMe:          *me,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}

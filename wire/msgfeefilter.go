// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MsgFeeFilter implements the Message interface and represents a request to
// only be notified of transactions paying at least the given fee rate, in
// satoshis per kilobyte. This node has no mempool, so a received feefilter
// is recorded but never acted on, and this node never originates one.
type MsgFeeFilter struct {
	MinFee int64
}

// BtcDecode decodes m from r.
func (m *MsgFeeFilter) BtcDecode(r io.Reader, pver uint32) error {
	return ReadElement(r, &m.MinFee)
}

// BtcEncode encodes m to w.
func (m *MsgFeeFilter) BtcEncode(w io.Writer, pver uint32) error {
	return WriteElement(w, m.MinFee)
}

// Command returns the protocol command string for a feefilter message.
func (m *MsgFeeFilter) Command() string {
	return CmdFeeFilter
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgFeeFilter) MaxPayloadLength(pver uint32) uint64 {
	return 8
}

// NewMsgFeeFilter returns a new feefilter message using the given minimum
// fee rate.
func NewMsgFeeFilter(minFee int64) *MsgFeeFilter {
	return &MsgFeeFilter{MinFee: minFee}
}

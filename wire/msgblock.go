// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// defaultTransactionAlloc is the default size used for the backing array of
// transactions in a new block.
const defaultTransactionAlloc = 2048

// MaxBlocksPerMsg is the maximum number of blocks allowed per message.
const MaxBlocksPerMsg = 500

// maxTxPerBlock is the maximum number of transactions that could possibly
// fit into a block.
const maxTxPerBlock = (MaxMessagePayload / minTxOutPayload) + 1

// MsgBlock implements the Message interface and represents a full block,
// consisting of a header followed by its transactions.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (m *MsgBlock) AddTransaction(tx *MsgTx) {
	m.Transactions = append(m.Transactions, tx)
}

// BlockHash computes the block identifier hash for this block.
func (m *MsgBlock) BlockHash() chainhash.Hash {
	return m.Header.BlockHash()
}

// BtcDecode decodes r into the receiver.
func (m *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, pver, &m.Header); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return messageError("MsgBlock.BtcDecode", fmt.Sprintf(
			"too many transactions to fit into a block [count %d, max %d]", count, maxTxPerBlock))
	}

	m.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		m.Transactions = append(m.Transactions, &tx)
	}

	return nil
}

// BtcEncode encodes the receiver to w.
func (m *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, pver, &m.Header); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(m.Transactions))); err != nil {
		return err
	}
	for _, tx := range m.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// block.
func (m *MsgBlock) SerializeSize() int {
	var buf bytes.Buffer
	_ = m.BtcEncode(&buf, 0)
	return buf.Len()
}

// Command returns the protocol command string for a block message.
func (m *MsgBlock) Command() string {
	return CmdBlock
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgBlock) MaxPayloadLength(pver uint32) uint64 {
	return MaxMessagePayload
}

// NewMsgBlock returns a new block message that conforms to the Message
// interface using the provided header.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *header,
		Transactions: make([]*MsgTx, 0, defaultTransactionAlloc),
	}
}

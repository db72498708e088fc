// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

// MaxBlockHeaderPayload is the number of bytes a block header can be, not
// including the leading varint indicating the number of transactions when a
// header is part of a full block.
const MaxBlockHeaderPayload = 4 + (chainhash.HashSize * 2) + 4 + 4 + 4

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
}

// BlockHash computes the block identifier hash for the header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeBlockHeader(&buf, 0, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes a BlockHeader from r.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, pver, h)
}

// BtcEncode encodes a BlockHeader to w.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, pver, h)
}

// NewBlockHeader returns a new BlockHeader using the provided fields. The
// Timestamp is truncated to the nearest second since the wire encoding only
// has second resolution.
func NewBlockHeader(version int32, prevHash, merkleRootHash *chainhash.Hash, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRootHash,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
		Nonce:      nonce,
	}
}

func readBlockHeader(r io.Reader, pver uint32, h *BlockHeader) error {
	if err := ReadElement(r, &h.Version); err != nil {
		return err
	}
	if err := ReadElement(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := ReadElement(r, &h.MerkleRoot); err != nil {
		return err
	}

	var ts uint32
	if err := ReadElement(r, &ts); err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	if err := ReadElement(r, &h.Bits); err != nil {
		return err
	}
	return ReadElement(r, &h.Nonce)
}

func writeBlockHeader(w io.Writer, pver uint32, h *BlockHeader) error {
	if err := WriteElement(w, h.Version); err != nil {
		return err
	}
	if err := WriteElement(w, h.PrevBlock); err != nil {
		return err
	}
	if err := WriteElement(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := WriteElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := WriteElement(w, h.Bits); err != nil {
		return err
	}
	return WriteElement(w, h.Nonce)
}

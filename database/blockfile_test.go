// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"testing"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

func sampleBlock() *wire.MsgBlock {
	header := wire.BlockHeader{
		Version:    1,
		MerkleRoot: chainhash.Hash{1, 2, 3},
		Timestamp:  time.Unix(1231006505, 0),
		Bits:       0x1d00ffff,
	}
	block := wire.NewMsgBlock(&header)
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0xffffffff), []byte{0x00}, nil))
	tx.AddTxOut(wire.NewTxOut(5000000000, []byte{0x76, 0xa9}))
	block.AddTransaction(tx)
	return block
}

func TestBlockFilesWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bf := NewBlockFiles(dir, wire.MainNet, nil, -1)

	block := sampleBlock()
	fileIndex, dataPos, err := bf.WriteBlock(block, 0, block.Header.Timestamp.Unix())
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if fileIndex != 0 {
		t.Fatalf("expected first write to land in file 0, got %d", fileIndex)
	}
	if dataPos != blockRecordHeaderSize {
		t.Fatalf("expected data position %d, got %d", blockRecordHeaderSize, dataPos)
	}

	got, err := bf.ReadBlock(fileIndex, dataPos)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if got.Header.BlockHash() != block.Header.BlockHash() {
		t.Fatalf("round-tripped block hash mismatch: got %s want %s",
			got.Header.BlockHash(), block.Header.BlockHash())
	}
	if len(got.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
	}
}

func TestBlockFilesRejectsWrongMagic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := NewBlockFiles(dir, wire.MainNet, nil, -1)
	block := sampleBlock()
	fileIndex, dataPos, err := writer.WriteBlock(block, 0, block.Header.Timestamp.Unix())
	if err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	reader := NewBlockFiles(dir, wire.TestNet, nil, -1)
	if _, err := reader.ReadBlock(fileIndex, dataPos); err == nil {
		t.Fatal("expected a magic mismatch error reading under a different network")
	}
}

func TestBlockFilesRotatesOnSizeLimit(t *testing.T) {
	t.Parallel()

	bf := &BlockFiles{
		dataDir: t.TempDir(),
		net:     wire.MainNet,
		files:   map[int32]*BlockFileInfo{0: {FileIndex: 0, Size: MaxBlockFileSize - 10}},
	}

	fileIndex, offset := bf.reserve(100, 1, 1231006505)
	if fileIndex != 1 {
		t.Fatalf("expected rotation into file 1, got %d", fileIndex)
	}
	if offset != 0 {
		t.Fatalf("expected new file to start at offset 0, got %d", offset)
	}
}

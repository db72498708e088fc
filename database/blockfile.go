// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hindsights/xbtc/wire"
)

// MaxBlockFileSize is the byte threshold at which a block file is rotated
// to the next file index.
const MaxBlockFileSize = 128 * 1024 * 1024

// blockRecordHeaderSize is the size of the magic+size prefix written
// before every block's raw bytes.
const blockRecordHeaderSize = 8

// BlockFiles manages the append-only blk%05d.dat files a block's raw
// bytes are written into.
type BlockFiles struct {
	dataDir string
	net     wire.CurrencyNet

	mu       sync.Mutex
	files    map[int32]*BlockFileInfo
	lastFile int32
}

// NewBlockFiles returns a block-file manager rooted at <dataDir>/blocks.
// files/lastFile seed the manager's bookkeeping from a prior session's
// persisted BlockIndexDB records; pass nil/-1 for a fresh database.
func NewBlockFiles(dataDir string, net wire.CurrencyNet, files []*BlockFileInfo, lastFile int32) *BlockFiles {
	bf := &BlockFiles{
		dataDir:  dataDir,
		net:      net,
		files:    make(map[int32]*BlockFileInfo),
		lastFile: 0,
	}
	for _, fi := range files {
		bf.files[fi.FileIndex] = fi
	}
	if lastFile >= 0 {
		bf.lastFile = lastFile
	}
	return bf
}

func (bf *BlockFiles) path(fileIndex int32) string {
	return filepath.Join(bf.dataDir, "blocks", fmt.Sprintf("blk%05d.dat", fileIndex))
}

// LastFile returns the index of the file most recently written to.
func (bf *BlockFiles) LastFile() int32 {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	return bf.lastFile
}

// DirtyFiles returns the BlockFileInfo records that should be persisted,
// given a set of file indexes touched since the last flush.
func (bf *BlockFiles) DirtyFiles(indexes map[int32]struct{}) []*BlockFileInfo {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	out := make([]*BlockFileInfo, 0, len(indexes))
	for idx := range indexes {
		if fi, ok := bf.files[idx]; ok {
			out = append(out, fi)
		}
	}
	return out
}

// reserve picks the file and offset a new record of the given total size
// (including the 8-byte prefix) should be written at, rotating to a new
// file if the current one would exceed MaxBlockFileSize. Callers must hold
// bf.mu.
func (bf *BlockFiles) reserve(recordSize uint32, height, timestamp int64) (fileIndex int32, offset uint32) {
	fileIndex = bf.lastFile
	fi, ok := bf.files[fileIndex]
	if !ok {
		fi = &BlockFileInfo{FileIndex: fileIndex}
		bf.files[fileIndex] = fi
	}
	for fi.Size+recordSize >= MaxBlockFileSize {
		fileIndex++
		fi, ok = bf.files[fileIndex]
		if !ok {
			fi = &BlockFileInfo{FileIndex: fileIndex}
			bf.files[fileIndex] = fi
		}
	}
	offset = fi.Size
	fi.Size += recordSize
	fi.addBlock(height, timestamp)
	bf.lastFile = fileIndex
	return fileIndex, offset
}

// WriteBlock appends block's serialized bytes to the appropriate file,
// prefixed with the network magic and record size, and returns the
// position a BlockIndex record should store: the file index and the data
// position (file offset plus the 8-byte prefix).
func (bf *BlockFiles) WriteBlock(block *wire.MsgBlock, height int64, timestamp int64) (fileIndex int32, dataPos uint32, err error) {
	var body bytes.Buffer
	if err := block.BtcEncode(&body, 0); err != nil {
		return 0, 0, errIOf("serializing block: %v", err)
	}
	size := uint32(body.Len())
	recordSize := blockRecordHeaderSize + size

	bf.mu.Lock()
	fileIndex, offset := bf.reserve(recordSize, height, timestamp)
	bf.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(bf.path(fileIndex)), 0755); err != nil {
		return 0, 0, errIOf("creating block directory: %v", err)
	}
	f, err := os.OpenFile(bf.path(fileIndex), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, 0, errIOf("opening block file %d: %v", fileIndex, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return 0, 0, errIOf("seeking block file %d: %v", fileIndex, err)
	}

	var prefix [blockRecordHeaderSize]byte
	binary.LittleEndian.PutUint32(prefix[0:4], uint32(bf.net))
	binary.LittleEndian.PutUint32(prefix[4:8], size)
	if _, err := f.Write(prefix[:]); err != nil {
		return 0, 0, errIOf("writing block file %d prefix: %v", fileIndex, err)
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		return 0, 0, errIOf("writing block file %d body: %v", fileIndex, err)
	}

	return fileIndex, offset + blockRecordHeaderSize, nil
}

// ReadBlock reads back the block recorded at fileIndex/dataPos, seeking
// to the record prefix and validating the stored magic and size against
// net before decoding.
func (bf *BlockFiles) ReadBlock(fileIndex int32, dataPos uint32) (*wire.MsgBlock, error) {
	f, err := os.Open(bf.path(fileIndex))
	if err != nil {
		return nil, errIOf("opening block file %d: %v", fileIndex, err)
	}
	defer f.Close()

	if dataPos < blockRecordHeaderSize {
		return nil, errCorruptf("data position %d precedes block record header", dataPos)
	}
	if _, err := f.Seek(int64(dataPos-blockRecordHeaderSize), io.SeekStart); err != nil {
		return nil, errIOf("seeking block file %d: %v", fileIndex, err)
	}

	var prefix [blockRecordHeaderSize]byte
	if _, err := io.ReadFull(f, prefix[:]); err != nil {
		return nil, errIOf("reading block file %d prefix: %v", fileIndex, err)
	}
	magic := binary.LittleEndian.Uint32(prefix[0:4])
	size := binary.LittleEndian.Uint32(prefix[4:8])
	if magic != uint32(bf.net) {
		return nil, errCorruptf("block file %d record at %d has wrong magic %08x", fileIndex, dataPos, magic)
	}
	if size == 0 || size > MaxBlockFileSize {
		return nil, errCorruptf("block file %d record at %d has implausible size %d", fileIndex, dataPos, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(f, body); err != nil {
		return nil, errIOf("reading block file %d body: %v", fileIndex, err)
	}

	block := new(wire.MsgBlock)
	if err := block.BtcDecode(bytes.NewReader(body), 0); err != nil {
		return nil, errCorruptf("decoding block file %d record at %d: %v", fileIndex, dataPos, err)
	}
	return block, nil
}

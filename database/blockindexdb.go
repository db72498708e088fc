// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"encoding/binary"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/hindsights/xbtc/blockchain"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// Tag bytes identifying the record families sharing the block-index
// database's key space.
const (
	tagBlockIndex byte = 'b'
	tagBlockFile  byte = 'f'
	tagLastFile   byte = 'l'
)

// obfuscateKeyKey is the fixed key under which a database's obfuscation
// key, if any, is recorded.
var obfuscateKeyKey = []byte("\x0e\x00obfuscate_key")

// BlockFileInfo tracks bookkeeping for one on-disk block file: how many
// blocks and bytes it holds, and the height/time range it covers.
type BlockFileInfo struct {
	FileIndex  int32
	Blocks     uint32
	Size       uint32
	LowHeight  int64
	HighHeight int64
	LowTime    int64
	HighTime   int64
}

// addBlock extends a file's recorded range to include a newly written
// block at the given height and timestamp.
func (fi *BlockFileInfo) addBlock(height, timestamp int64) {
	fi.Blocks++
	if fi.Blocks == 1 || height < fi.LowHeight {
		fi.LowHeight = height
	}
	if height > fi.HighHeight {
		fi.HighHeight = height
	}
	if fi.Blocks == 1 || timestamp < fi.LowTime {
		fi.LowTime = timestamp
	}
	if timestamp > fi.HighTime {
		fi.HighTime = timestamp
	}
}

// BlockIndexDB persists the block header tree (as blockchain.NodeSnapshot
// records), block-file bookkeeping, and the obfuscation key to a leveldb
// instance rooted at <dataDir>/blocks/index.
type BlockIndexDB struct {
	db        *leveldb.DB
	obfuscate []byte
}

// dbOptions returns leveldb options applying the given block-cache budget,
// or nil to accept the library defaults when no budget is configured.
func dbOptions(cacheBytes int) *opt.Options {
	if cacheBytes <= 0 {
		return nil
	}
	return &opt.Options{BlockCacheCapacity: cacheBytes}
}

// OpenBlockIndexDB opens (creating if necessary) the block-index database
// under dataDir. cacheBytes sets the leveldb block-cache budget; zero
// leaves the library default in place.
func OpenBlockIndexDB(dataDir string, cacheBytes int) (*BlockIndexDB, error) {
	dbdir := filepath.Join(dataDir, "blocks", "index")
	db, err := leveldb.OpenFile(dbdir, dbOptions(cacheBytes))
	if err != nil {
		return nil, errIOf("opening block index db at %s: %v", dbdir, err)
	}

	idb := &BlockIndexDB{db: db}
	key, err := db.Get(obfuscateKeyKey, nil)
	if err == nil {
		idb.obfuscate = key
	} else if err != leveldb.ErrNotFound {
		db.Close()
		return nil, errIOf("reading obfuscation key: %v", err)
	} else {
		idb.obfuscate = make([]byte, 8)
		if err := db.Put(obfuscateKeyKey, idb.obfuscate, nil); err != nil {
			db.Close()
			return nil, errIOf("seeding obfuscation key: %v", err)
		}
	}
	return idb, nil
}

// Close releases the underlying leveldb handle.
func (idb *BlockIndexDB) Close() error {
	return idb.db.Close()
}

// xor applies the repeating obfuscation key to buf, returning a new slice.
// A zero-length key returns buf unchanged; the all-zero 8-byte key seeded
// on a fresh database also leaves every byte unchanged.
func (idb *BlockIndexDB) xor(buf []byte) []byte {
	if len(idb.obfuscate) == 0 {
		return buf
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ idb.obfuscate[i%len(idb.obfuscate)]
	}
	return out
}

func blockIndexKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = tagBlockIndex
	copy(key[1:], hash[:])
	return key
}

func blockFileKey(fileIndex int32) []byte {
	key := make([]byte, 5)
	key[0] = tagBlockFile
	binary.LittleEndian.PutUint32(key[1:], uint32(fileIndex))
	return key
}

// encodeSnapshot serializes a blockchain.NodeSnapshot into the fixed-width
// layout this database stores it in.
func encodeSnapshot(snap *blockchain.NodeSnapshot) []byte {
	var buf bytes.Buffer
	header := snap.Header
	_ = header.BtcEncode(&buf, 0)

	var flags byte
	if snap.HaveData {
		flags |= 1
	}
	if snap.Valid {
		flags |= 2
	}
	if snap.FailedValid {
		flags |= 4
	}
	if snap.FailedChild {
		flags |= 8
	}
	buf.WriteByte(flags)

	var rest [8 + 8 + 4 + 4 + 4]byte
	binary.LittleEndian.PutUint64(rest[0:8], snap.ChainTxCount)
	binary.LittleEndian.PutUint32(rest[8:12], snap.TxCount)
	binary.LittleEndian.PutUint32(rest[12:16], uint32(snap.FileIndex))
	binary.LittleEndian.PutUint32(rest[16:20], snap.DataPos)
	buf.Write(rest[:])
	var undo [4]byte
	binary.LittleEndian.PutUint32(undo[:], snap.UndoPos)
	buf.Write(undo[:])
	var height [8]byte
	binary.LittleEndian.PutUint64(height[:], uint64(snap.Height))
	buf.Write(height[:])
	return buf.Bytes()
}

func decodeSnapshot(data []byte) (*blockchain.NodeSnapshot, error) {
	if len(data) < wire.MaxBlockHeaderPayload+1+8+4+4+4+4+8 {
		return nil, errCorruptf("block index record too short: %d bytes", len(data))
	}
	snap := &blockchain.NodeSnapshot{}
	if err := snap.Header.BtcDecode(bytes.NewReader(data[:wire.MaxBlockHeaderPayload]), 0); err != nil {
		return nil, errCorruptf("decoding block index header: %v", err)
	}
	snap.Hash = snap.Header.BlockHash()

	flags := data[wire.MaxBlockHeaderPayload]
	snap.HaveData = flags&1 != 0
	snap.Valid = flags&2 != 0
	snap.FailedValid = flags&4 != 0
	snap.FailedChild = flags&8 != 0

	rest := data[wire.MaxBlockHeaderPayload+1:]
	snap.ChainTxCount = binary.LittleEndian.Uint64(rest[0:8])
	snap.TxCount = binary.LittleEndian.Uint32(rest[8:12])
	snap.FileIndex = int32(binary.LittleEndian.Uint32(rest[12:16]))
	snap.DataPos = binary.LittleEndian.Uint32(rest[16:20])
	snap.UndoPos = binary.LittleEndian.Uint32(rest[20:24])
	snap.Height = int64(binary.LittleEndian.Uint64(rest[24:32]))
	return snap, nil
}

func encodeBlockFileInfo(fi *BlockFileInfo) []byte {
	var buf [4 * 6]byte
	binary.LittleEndian.PutUint32(buf[0:4], fi.Blocks)
	binary.LittleEndian.PutUint32(buf[4:8], fi.Size)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(fi.LowHeight))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(fi.HighHeight))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(fi.LowTime))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(fi.HighTime))
	return buf[:]
}

func decodeBlockFileInfo(data []byte) (*BlockFileInfo, error) {
	if len(data) < 24 {
		return nil, errCorruptf("block file record too short: %d bytes", len(data))
	}
	return &BlockFileInfo{
		Blocks:     binary.LittleEndian.Uint32(data[0:4]),
		Size:       binary.LittleEndian.Uint32(data[4:8]),
		LowHeight:  int64(binary.LittleEndian.Uint32(data[8:12])),
		HighHeight: int64(binary.LittleEndian.Uint32(data[12:16])),
		LowTime:    int64(binary.LittleEndian.Uint32(data[16:20])),
		HighTime:   int64(binary.LittleEndian.Uint32(data[20:24])),
	}, nil
}

// WriteBlocks atomically records the given node snapshots, file-info
// records, and the last-used file index in one batch.
func (idb *BlockIndexDB) WriteBlocks(snaps []*blockchain.NodeSnapshot, files []*BlockFileInfo, lastFile int32) error {
	batch := new(leveldb.Batch)
	for _, snap := range snaps {
		batch.Put(blockIndexKey(&snap.Hash), idb.xor(encodeSnapshot(snap)))
	}
	for _, fi := range files {
		batch.Put(blockFileKey(fi.FileIndex), idb.xor(encodeBlockFileInfo(fi)))
	}
	if lastFile >= 0 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(lastFile))
		batch.Put([]byte{tagLastFile}, idb.xor(buf[:]))
	}
	if err := idb.db.Write(batch, nil); err != nil {
		return errIOf("writing block index batch: %v", err)
	}
	return nil
}

// ReadBlockFileInfo returns the stored bookkeeping for fileIndex, or nil if
// it has never been written.
func (idb *BlockIndexDB) ReadBlockFileInfo(fileIndex int32) (*BlockFileInfo, error) {
	data, err := idb.db.Get(blockFileKey(fileIndex), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errIOf("reading block file info %d: %v", fileIndex, err)
	}
	fi, err := decodeBlockFileInfo(idb.xor(data))
	if err != nil {
		return nil, err
	}
	fi.FileIndex = fileIndex
	return fi, nil
}

// LoadAll iterates every block-index and block-file record, returning node
// snapshots in no particular order (callers must sort by height before
// handing them to blockchain.BlockChain.SeedFromSnapshots), the recorded
// block-file infos, and the last-used file index (-1 if never recorded).
func (idb *BlockIndexDB) LoadAll() (snaps []*blockchain.NodeSnapshot, files []*BlockFileInfo, lastFile int32, err error) {
	lastFile = -1

	if data, getErr := idb.db.Get([]byte{tagLastFile}, nil); getErr == nil {
		decoded := idb.xor(data)
		if len(decoded) >= 4 {
			lastFile = int32(binary.LittleEndian.Uint32(decoded))
		}
	} else if getErr != leveldb.ErrNotFound {
		return nil, nil, -1, errIOf("reading last block file: %v", getErr)
	}

	iter := idb.db.NewIterator(util.BytesPrefix([]byte{tagBlockIndex}), nil)
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+chainhash.HashSize {
			continue
		}
		snap, decErr := decodeSnapshot(idb.xor(iter.Value()))
		if decErr != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	iter.Release()
	if iterErr := iter.Error(); iterErr != nil {
		return nil, nil, -1, errIOf("iterating block index: %v", iterErr)
	}

	iter = idb.db.NewIterator(util.BytesPrefix([]byte{tagBlockFile}), nil)
	for iter.Next() {
		key := iter.Key()
		if len(key) != 5 {
			continue
		}
		fileIndex := int32(binary.LittleEndian.Uint32(key[1:]))
		fi, decErr := decodeBlockFileInfo(idb.xor(iter.Value()))
		if decErr != nil {
			continue
		}
		fi.FileIndex = fileIndex
		files = append(files, fi)
	}
	iter.Release()
	if iterErr := iter.Error(); iterErr != nil {
		return nil, nil, -1, errIOf("iterating block files: %v", iterErr)
	}

	return snaps, files, lastFile, nil
}

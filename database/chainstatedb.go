// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"encoding/binary"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// Tag bytes for the chainstate database's key space.
const (
	tagCoin      byte = 'C'
	tagBestBlock byte = 'B'
)

// CoinRecord is the on-disk form of one unspent transaction output.
type CoinRecord struct {
	Amount      int64
	PkScript    []byte
	BlockHeight int64
	IsCoinBase  bool
}

// ChainStateDB persists the unspent transaction output set and the
// best-block pointer to a leveldb instance rooted at <dataDir>/chainstate.
type ChainStateDB struct {
	db        *leveldb.DB
	obfuscate []byte
}

// OpenChainStateDB opens (creating if necessary) the chain-state database
// under dataDir, reusing the block-index database's obfuscation key
// convention so both namespaces XOR consistently if ever merged.
func OpenChainStateDB(dataDir string, cacheBytes int) (*ChainStateDB, error) {
	dbdir := filepath.Join(dataDir, "chainstate")
	db, err := leveldb.OpenFile(dbdir, dbOptions(cacheBytes))
	if err != nil {
		return nil, errIOf("opening chainstate db at %s: %v", dbdir, err)
	}

	cdb := &ChainStateDB{db: db}
	key, err := db.Get(obfuscateKeyKey, nil)
	if err == nil {
		cdb.obfuscate = key
	} else if err != leveldb.ErrNotFound {
		db.Close()
		return nil, errIOf("reading chainstate obfuscation key: %v", err)
	} else {
		cdb.obfuscate = make([]byte, 8)
		if err := db.Put(obfuscateKeyKey, cdb.obfuscate, nil); err != nil {
			db.Close()
			return nil, errIOf("seeding chainstate obfuscation key: %v", err)
		}
	}
	return cdb, nil
}

// Close releases the underlying leveldb handle.
func (cdb *ChainStateDB) Close() error {
	return cdb.db.Close()
}

func (cdb *ChainStateDB) xor(buf []byte) []byte {
	if len(cdb.obfuscate) == 0 {
		return buf
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = b ^ cdb.obfuscate[i%len(cdb.obfuscate)]
	}
	return out
}

func coinKey(outpoint wire.OutPoint) []byte {
	key := make([]byte, 1+chainhash.HashSize+4)
	key[0] = tagCoin
	copy(key[1:], outpoint.Hash[:])
	binary.LittleEndian.PutUint32(key[1+chainhash.HashSize:], outpoint.Index)
	return key
}

func encodeCoin(c *CoinRecord) []byte {
	buf := make([]byte, 8+8+1+len(c.PkScript))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(c.Amount))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(c.BlockHeight))
	if c.IsCoinBase {
		buf[16] = 1
	}
	copy(buf[17:], c.PkScript)
	return buf
}

func decodeCoin(data []byte) (*CoinRecord, error) {
	if len(data) < 17 {
		return nil, errCorruptf("coin record too short: %d bytes", len(data))
	}
	pkScript := make([]byte, len(data)-17)
	copy(pkScript, data[17:])
	return &CoinRecord{
		Amount:      int64(binary.LittleEndian.Uint64(data[0:8])),
		BlockHeight: int64(binary.LittleEndian.Uint64(data[8:16])),
		IsCoinBase:  data[16] != 0,
		PkScript:    pkScript,
	}, nil
}

// ReadCoin returns the coin recorded for outpoint, or nil if it is not
// present.
func (cdb *ChainStateDB) ReadCoin(outpoint wire.OutPoint) (*CoinRecord, error) {
	data, err := cdb.db.Get(coinKey(outpoint), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errIOf("reading coin %s: %v", outpoint, err)
	}
	return decodeCoin(cdb.xor(data))
}

// WriteCoins commits a set of added coins, a set of removed outpoints, and
// the new best-block hash in a single atomic batch: either the whole
// batch lands or none of it does.
func (cdb *ChainStateDB) WriteCoins(added map[wire.OutPoint]*CoinRecord, removed []wire.OutPoint, bestBlock chainhash.Hash) error {
	batch := new(leveldb.Batch)
	for outpoint, coin := range added {
		if coin.Amount <= 0 {
			continue
		}
		batch.Put(coinKey(outpoint), cdb.xor(encodeCoin(coin)))
	}
	for _, outpoint := range removed {
		batch.Delete(coinKey(outpoint))
	}
	batch.Put([]byte{tagBestBlock}, cdb.xor(bestBlock[:]))
	if err := cdb.db.Write(batch, nil); err != nil {
		return errIOf("writing chainstate batch: %v", err)
	}
	return nil
}

// ReadBestBlock returns the persisted best-block hash, or the zero hash if
// none has ever been recorded.
func (cdb *ChainStateDB) ReadBestBlock() (chainhash.Hash, error) {
	var hash chainhash.Hash
	data, err := cdb.db.Get([]byte{tagBestBlock}, nil)
	if err == leveldb.ErrNotFound {
		return hash, nil
	}
	if err != nil {
		return hash, errIOf("reading best block: %v", err)
	}
	decoded := cdb.xor(data)
	if err := hash.SetBytes(decoded); err != nil {
		return hash, errCorruptf("invalid best block record: %v", err)
	}
	return hash, nil
}

// LoadAllCoins iterates every coin record, used only by consistency checks
// and tooling; the live UTXO view resolves individual lookups through
// ReadCoin instead of loading the full set into memory.
func (cdb *ChainStateDB) LoadAllCoins(fn func(outpoint wire.OutPoint, coin *CoinRecord) error) error {
	iter := cdb.db.NewIterator(util.BytesPrefix([]byte{tagCoin}), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+chainhash.HashSize+4 {
			continue
		}
		var outpoint wire.OutPoint
		copy(outpoint.Hash[:], key[1:1+chainhash.HashSize])
		outpoint.Index = binary.LittleEndian.Uint32(key[1+chainhash.HashSize:])
		coin, err := decodeCoin(cdb.xor(iter.Value()))
		if err != nil {
			continue
		}
		if err := fn(outpoint, coin); err != nil {
			return err
		}
	}
	return iter.Error()
}

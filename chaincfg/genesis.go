// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

func hexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// newGenesisCoinbaseTx returns the coinbase transaction carried by a
// network's genesis block, using the signature script and output script
// unique to that network.
func newGenesisCoinbaseTx(sigScript, pkScript []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.Hash{},
			Index: 0xffffffff,
		},
		SignatureScript: sigScript,
		Sequence:        0xffffffff,
	})
	tx.AddTxOut(wire.NewTxOut(50*1e8, pkScript))
	return tx
}

// newGenesisBlock assembles a genesis block from its header fields and
// coinbase transaction, computing the merkle root from the (single)
// transaction.
func newGenesisBlock(version int32, timestamp time.Time, bits, nonce uint32, coinbase *wire.MsgTx) *wire.MsgBlock {
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:   version,
		PrevBlock: chainhash.Hash{},
		Timestamp: timestamp,
		Bits:      bits,
		Nonce:     nonce,
	})
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = coinbase.TxHash()
	return block
}

// mainNetGenesisCoinbaseSigScript is the canonical Genesis Block coinbase
// signature script, embedding the famous "Chancellor on brink of second
// bailout for banks" headline.
var mainNetGenesisCoinbaseSigScript = hexDecode(
	"04ffff001d0104455468652054696d65732030332f4a616e2f32303039204368" +
		"616e63656c6c6f72206f6e206272696e6b206f66207365636f6e64206261696c" +
		"6f757420666f722062616e6b73")

var mainNetGenesisCoinbasePkScript = hexDecode(
	"4104678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f6" +
		"1deb649f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6b" +
		"f11d5fac")

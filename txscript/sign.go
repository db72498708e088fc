// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"github.com/hindsights/xbtc/wire"
)

// SigHashType represents the sighash type byte appended to ECDSA
// signatures.
type SigHashType uint32

// SigHashAll is the only sighash algorithm this historical-chain core
// computes. A zero type byte is treated as SigHashAll; any other type byte is
// appended to the digest as given, with the digest otherwise computed the
// SigHashAll way.
const SigHashAll SigHashType = 1

// CalcSignatureHash computes the double-SHA-256 digest a signature over
// input idx of tx must cover: every other input's signature script is
// blanked, input idx's signature script is replaced by subScript, the result
// is serialized in legacy (non-witness) form, the 4-byte little-endian
// sighash type is appended, and the whole thing is double hashed.
func CalcSignatureHash(subScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) (chainhash.Hash, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		return chainhash.Hash{}, scriptError(ErrInvalidIndex, "signature hash input index out of range")
	}

	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		txCopy.TxIn[i].Witness = nil
		if i == idx {
			txCopy.TxIn[i].SignatureScript = subScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	var buf bytes.Buffer
	if err := txCopy.BtcEncode(&buf, 0); err != nil {
		return chainhash.Hash{}, err
	}
	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(hashType))
	buf.Write(typeBytes[:])

	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// TxSigChecker implements SignatureChecker against a concrete transaction
// input, delegating the actual ECDSA math to
// github.com/decred/dcrd/dcrec/secp256k1/v4 and its ecdsa subpackage, never
// reimplementing the primitive itself.
type TxSigChecker struct {
	Tx       *wire.MsgTx
	TxIdx    int
	SigCache *SigCache
}

// CheckSignature verifies a <signature><sighash-type-byte> blob against
// pubKey for the engine's currently executing subscript. The blob's last byte
// is always taken as the sighash type; a zero type byte is still treated as
// SigHashAll, matching historical chain data.
func (c *TxSigChecker) CheckSignature(vm *Engine, fullSigBytes, pubKeyBytes []byte) (bool, error) {
	if len(fullSigBytes) == 0 {
		return false, nil
	}

	hashType := SigHashAll
	sigBytes := fullSigBytes[:len(fullSigBytes)-1]
	if t := fullSigBytes[len(fullSigBytes)-1]; t != 0 {
		hashType = SigHashType(t)
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false, nil
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false, nil
	}

	subScript, err := vm.currentSubScript()
	if err != nil {
		return false, err
	}
	hash, err := CalcSignatureHash(subScript, hashType, c.Tx, c.TxIdx)
	if err != nil {
		return false, err
	}

	if c.SigCache != nil && c.SigCache.Exists(hash, sig, pubKey) {
		return true, nil
	}

	valid := sig.Verify(hash[:], pubKey)
	if valid && c.SigCache != nil {
		c.SigCache.Add(hash, sig, pubKey, c.Tx)
	}
	return valid, nil
}

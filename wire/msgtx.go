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

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// defaultTxInOutAlloc is the default size used for the backing array
	// for transaction inputs and outputs. The array will dynamically grow
	// as needed, but this figure is intended to provide enough space for
	// the number of inputs and outputs in a typical transaction without
	// needing to grow the backing array multiple times.
	defaultTxInOutAlloc = 15

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Sequence 4
	// bytes + the signature script length varint (0).
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transactions inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxMessagePayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction
	// output. Value 8 bytes + the pk script length varint (0).
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transactions outputs
	// that a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxMessagePayload / minTxOutPayload) + 1

	// witnessMarkerByte and witnessFlagByte are the two bytes written after the version that
	// signal a transaction carries segregated witness data.
	witnessMarkerByte = 0x00
	witnessFlagByte   = 0x01

	// MaxScriptSize is the hard upper bound on the length of any single
	// signature or public key script carried in a transaction.
	MaxScriptSize = 10000
)

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided
// hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input, not including any witness data.
func (t *TxIn) SerializeSize() int {
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript)
}

// NewTxIn returns a new transaction input with the given previous outpoint
// and signature script, with a default, max sequence number.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxWitness defines the witness for a TxIn. A witness is to be interpreted
// as a slice of byte slices, or a stack with one or many elements.
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input's witness.
func (t TxWitness) SerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t)))
	for _, item := range t {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new bitcoin transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{Value: value, PkScript: pkScript}
}

// MsgTx implements the Message interface and represents a bitcoin tx
// message.  The legacy serialization is used for txid computation; the
// witness form is used only for relay when negotiated.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (m *MsgTx) AddTxIn(ti *TxIn) {
	m.TxIn = append(m.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (m *MsgTx) AddTxOut(to *TxOut) {
	m.TxOut = append(m.TxOut, to)
}

// HasWitness returns whether or not the transaction has any inputs with
// witness data.
func (m *MsgTx) HasWitness() bool {
	for _, txIn := range m.TxIn {
		if len(txIn.Witness) > 0 {
			return true
		}
	}
	return false
}

// TxHash generates the hash for the transaction.  The txid is always
// computed from the legacy (non-witness) serialization.
func (m *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = m.serialize(&buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash generates the hash of the transaction serialized according to
// the new witness serialization. If the transaction has no witness data,
// this is equivalent to TxHash.
func (m *MsgTx) WitnessHash() chainhash.Hash {
	if !m.HasWitness() {
		return m.TxHash()
	}
	var buf bytes.Buffer
	_ = m.serialize(&buf, true)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes r into the receiver, detecting and handling the
// optional witness marker/flag bytes transparently.
func (m *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	if err := ReadElement(r, &m.Version); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	var flag [1]byte
	hasWitness := false
	if count == 0 {
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return err
		}
		if flag[0] != witnessFlagByte {
			return messageError("MsgTx.BtcDecode", "witness tx but flag byte is not 0x01")
		}
		hasWitness = true

		count, err = ReadVarInt(r)
		if err != nil {
			return err
		}
	}
	if count > maxTxInPerMessage {
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many input transactions to fit into max message size [count %d, max %d]",
			count, maxTxInPerMessage))
	}

	txIns := make([]TxIn, count)
	m.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := &txIns[i]
		m.TxIn[i] = ti
		if err := readTxIn(r, ti); err != nil {
			return err
		}
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > maxTxOutPerMessage {
		return messageError("MsgTx.BtcDecode", fmt.Sprintf(
			"too many output transactions to fit into max message size [count %d, max %d]",
			outCount, maxTxOutPerMessage))
	}

	txOuts := make([]TxOut, outCount)
	m.TxOut = make([]*TxOut, outCount)
	for i := uint64(0); i < outCount; i++ {
		to := &txOuts[i]
		m.TxOut[i] = to
		if err := readTxOut(r, to); err != nil {
			return err
		}
	}

	if hasWitness {
		for _, ti := range m.TxIn {
			witCount, err := ReadVarInt(r)
			if err != nil {
				return err
			}
			ti.Witness = make(TxWitness, witCount)
			for j := uint64(0); j < witCount; j++ {
				item, err := ReadVarBytes(r, MaxScriptSize, "witness item")
				if err != nil {
					return err
				}
				ti.Witness[j] = item
			}
		}
	}

	return ReadElement(r, &m.LockTime)
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := ReadElement(r, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := ReadElement(r, &ti.PreviousOutPoint.Index); err != nil {
		return err
	}

	script, err := ReadVarBytes(r, MaxScriptSize, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	return ReadElement(r, &ti.Sequence)
}

func readTxOut(r io.Reader, to *TxOut) error {
	if err := ReadElement(r, &to.Value); err != nil {
		return err
	}

	script, err := ReadVarBytes(r, MaxScriptSize, "public key script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

// BtcEncode encodes the receiver to w, including witness data when present.
func (m *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	return m.serialize(w, m.HasWitness())
}

func (m *MsgTx) serialize(w io.Writer, witness bool) error {
	if err := WriteElement(w, m.Version); err != nil {
		return err
	}

	if witness {
		if err := WriteElement(w, uint8(witnessMarkerByte)); err != nil {
			return err
		}
		if err := WriteElement(w, uint8(witnessFlagByte)); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(m.TxIn))); err != nil {
		return err
	}
	for _, ti := range m.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(m.TxOut))); err != nil {
		return err
	}
	for _, to := range m.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	if witness {
		for _, ti := range m.TxIn {
			if err := WriteVarInt(w, uint64(len(ti.Witness))); err != nil {
				return err
			}
			for _, item := range ti.Witness {
				if err := WriteVarBytes(w, item); err != nil {
					return err
				}
			}
		}
	}

	return WriteElement(w, m.LockTime)
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := WriteElement(w, ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := WriteElement(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}
	return WriteElement(w, ti.Sequence)
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := WriteElement(w, to.Value); err != nil {
		return err
	}
	return WriteVarBytes(w, to.PkScript)
}

// Command returns the protocol command string for a tx message.
func (m *MsgTx) Command() string {
	return CmdTx
}

// MaxPayloadLength returns the maximum length the payload can be.
func (m *MsgTx) MaxPayloadLength(pver uint32) uint64 {
	return MaxMessagePayload
}

// Copy creates a deep copy of the transaction so it can be safely modified
// without affecting the original.
func (m *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  m.Version,
		TxIn:     make([]*TxIn, 0, len(m.TxIn)),
		TxOut:    make([]*TxOut, 0, len(m.TxOut)),
		LockTime: m.LockTime,
	}

	for _, oldTxIn := range m.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: OutPoint{
				Hash:  oldTxIn.PreviousOutPoint.Hash,
				Index: oldTxIn.PreviousOutPoint.Index,
			},
			SignatureScript: append([]byte(nil), oldTxIn.SignatureScript...),
			Sequence:        oldTxIn.Sequence,
		}
		if oldTxIn.Witness != nil {
			newTxIn.Witness = make(TxWitness, len(oldTxIn.Witness))
			for i, item := range oldTxIn.Witness {
				newTxIn.Witness[i] = append([]byte(nil), item...)
			}
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range m.TxOut {
		newTxOut := TxOut{
			Value:    oldTxOut.Value,
			PkScript: append([]byte(nil), oldTxOut.PkScript...),
		}
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// NewMsgTx returns a new tx message that conforms to the Message interface.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

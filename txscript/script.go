// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// MaxPubKeysPerMultiSig is the maximum number of public keys allowed in a
// CHECKMULTISIG script.
const MaxPubKeysPerMultiSig = 20

// Hash160 calculates the hash ripemd160(sha256(b)), the address digest used
// throughout the standard script templates below.
func Hash160(buf []byte) []byte {
	sha := sha256.Sum256(buf)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// ScriptClass identifies the type of a standard script.
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	MultiSigTy
	NullDataTy
)

var scriptClassNames = map[ScriptClass]string{
	NonStandardTy: "nonstandard",
	PubKeyTy:      "pubkey",
	PubKeyHashTy:  "pubkeyhash",
	ScriptHashTy:  "scripthash",
	MultiSigTy:    "multisig",
	NullDataTy:    "nulldata",
}

func (t ScriptClass) String() string {
	if s, ok := scriptClassNames[t]; ok {
		return s
	}
	return "invalid"
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is used by the multisig template matcher to read the key counts.
func isSmallInt(op *opcode) bool {
	return op.value == OP_0 || (op.value >= OP_1 && op.value <= OP_16)
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt, as an integer.
func asSmallInt(op *opcode) int {
	if op.value == OP_0 {
		return 0
	}
	return int(op.value - (OP_1 - 1))
}

// isPubKeyScript returns whether or not the passed script is a standard
// pay-to-pubkey script: <pubkey> OP_CHECKSIG.
func isPubKeyScript(pops []parsedOpcode) bool {
	return len(pops) == 2 &&
		(len(pops[0].data) == 33 || len(pops[0].data) == 65) &&
		pops[1].opcode.value == OP_CHECKSIG
}

// isPubKeyHashScript returns whether or not the passed script is a standard
// pay-to-pubkey-hash script: OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY
// OP_CHECKSIG.
func isPubKeyHashScript(pops []parsedOpcode) bool {
	return len(pops) == 5 &&
		pops[0].opcode.value == OP_DUP &&
		pops[1].opcode.value == OP_HASH160 &&
		pops[2].opcode.value == OP_DATA_20 &&
		pops[3].opcode.value == OP_EQUALVERIFY &&
		pops[4].opcode.value == OP_CHECKSIG
}

// isScriptHashScript returns whether or not the passed script is a standard
// pay-to-script-hash script: OP_HASH160 <hash> OP_EQUAL.
func isScriptHashScript(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OP_HASH160 &&
		pops[1].opcode.value == OP_DATA_20 &&
		pops[2].opcode.value == OP_EQUAL
}

// isMultiSigScript returns whether or not the passed script is a standard
// bare multisig script: OP_m <pubkey>... OP_n OP_CHECKMULTISIG.
func isMultiSigScript(pops []parsedOpcode) bool {
	if len(pops) < 4 {
		return false
	}
	if !isSmallInt(pops[0].opcode) {
		return false
	}
	numSigs := asSmallInt(pops[0].opcode)

	numPubKeys := len(pops) - 3
	if numPubKeys < 1 || numPubKeys > MaxPubKeysPerMultiSig {
		return false
	}
	for i := 1; i <= numPubKeys; i++ {
		if len(pops[i].data) != 33 && len(pops[i].data) != 65 {
			return false
		}
	}
	if !isSmallInt(pops[len(pops)-2].opcode) {
		return false
	}
	if asSmallInt(pops[len(pops)-2].opcode) != numPubKeys {
		return false
	}
	_ = numSigs
	return pops[len(pops)-1].opcode.value == OP_CHECKMULTISIG
}

// isNullDataScript returns whether or not the passed script is a standard
// null-data script: OP_RETURN [<data>].
func isNullDataScript(pops []parsedOpcode) bool {
	return len(pops) >= 1 && pops[0].opcode.value == OP_RETURN
}

// GetScriptClass returns the class of the script passed, classifying it
// against the standard templates defined above.
func GetScriptClass(script []byte) ScriptClass {
	pops, err := parseScript(script)
	if err != nil {
		return NonStandardTy
	}
	switch {
	case isPubKeyScript(pops):
		return PubKeyTy
	case isPubKeyHashScript(pops):
		return PubKeyHashTy
	case isScriptHashScript(pops):
		return ScriptHashTy
	case isMultiSigScript(pops):
		return MultiSigTy
	case isNullDataScript(pops):
		return NullDataTy
	}
	return NonStandardTy
}

// IsPayToScriptHash returns whether or not the passed script is a standard
// pay-to-script-hash script.
func IsPayToScriptHash(script []byte) bool {
	pops, err := parseScript(script)
	if err != nil {
		return false
	}
	return isScriptHashScript(pops)
}

// IsUnspendable returns whether the passed script is unspendable, i.e. it
// starts with OP_RETURN or fails to parse.
func IsUnspendable(pkScript []byte) bool {
	pops, err := parseScript(pkScript)
	if err != nil {
		return true
	}
	return len(pops) > 0 && pops[0].opcode.value == OP_RETURN
}

// PushedData returns the pushed data in script, if any.
func PushedData(script []byte) ([][]byte, error) {
	pops, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	var data [][]byte
	for _, pop := range pops {
		if pop.data != nil {
			data = append(data, pop.data)
		} else if pop.opcode.value == OP_0 {
			data = append(data, nil)
		}
	}
	return data, nil
}

// ExtractPubKeyHash extracts the 20-byte public key hash from a standard
// pay-to-pubkey-hash script, returning ok=false for anything else.
func ExtractPubKeyHash(script []byte) (hash []byte, ok bool) {
	pops, err := parseScript(script)
	if err != nil || !isPubKeyHashScript(pops) {
		return nil, false
	}
	return pops[2].data, true
}

// ExtractScriptHash extracts the 20-byte script hash from a standard
// pay-to-script-hash script, returning ok=false for anything else.
func ExtractScriptHash(script []byte) (hash []byte, ok bool) {
	pops, err := parseScript(script)
	if err != nil || !isScriptHashScript(pops) {
		return nil, false
	}
	return pops[1].data, true
}

// PayToAddrScript builds a standard pay-to-pubkey-hash script that pays to
// the 20-byte hash160 of a public key.
func PayToAddrScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != ripemd160.Size {
		return nil, scriptError(ErrInternal, "pubKeyHash must be 20 bytes")
	}
	pops := []parsedOpcode{
		{opcode: &opcodeArray[OP_DUP]},
		{opcode: &opcodeArray[OP_HASH160]},
		{opcode: &opcodeArray[OP_DATA_20], data: pubKeyHash},
		{opcode: &opcodeArray[OP_EQUALVERIFY]},
		{opcode: &opcodeArray[OP_CHECKSIG]},
	}
	return unparseScript(pops)
}

// PayToScriptHashScript builds a standard pay-to-script-hash script that pays
// to the 20-byte hash160 of a redeem script.
func PayToScriptHashScript(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != ripemd160.Size {
		return nil, scriptError(ErrInternal, "scriptHash must be 20 bytes")
	}
	pops := []parsedOpcode{
		{opcode: &opcodeArray[OP_HASH160]},
		{opcode: &opcodeArray[OP_DATA_20], data: scriptHash},
		{opcode: &opcodeArray[OP_EQUAL]},
	}
	return unparseScript(pops)
}

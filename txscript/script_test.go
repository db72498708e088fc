// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"
)

// TestGetScriptClass ensures GetScriptClass recognizes the standard script
// templates.
func TestGetScriptClass(t *testing.T) {
	t.Parallel()

	pubKeyHash := bytes.Repeat([]byte{0x01}, 20)
	pkScript, err := PayToAddrScript(pubKeyHash)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}
	if class := GetScriptClass(pkScript); class != PubKeyHashTy {
		t.Fatalf("unexpected class for p2pkh: got %v, want %v", class, PubKeyHashTy)
	}

	scriptHash := bytes.Repeat([]byte{0x02}, 20)
	shScript, err := PayToScriptHashScript(scriptHash)
	if err != nil {
		t.Fatalf("PayToScriptHashScript: %v", err)
	}
	if class := GetScriptClass(shScript); class != ScriptHashTy {
		t.Fatalf("unexpected class for p2sh: got %v, want %v", class, ScriptHashTy)
	}
	if !IsPayToScriptHash(shScript) {
		t.Fatalf("IsPayToScriptHash returned false for a p2sh script")
	}

	nullData := []byte{OP_RETURN, 0x04, 't', 'e', 's', 't'}
	if class := GetScriptClass(nullData); class != NullDataTy {
		t.Fatalf("unexpected class for null data: got %v, want %v", class, NullDataTy)
	}
	if !IsUnspendable(nullData) {
		t.Fatalf("IsUnspendable returned false for an OP_RETURN script")
	}
}

// TestExtractHashes ensures the pubkey/script hash extraction helpers agree
// with the hashes fed into the corresponding template builders.
func TestExtractHashes(t *testing.T) {
	t.Parallel()

	pubKeyHash := bytes.Repeat([]byte{0x03}, 20)
	pkScript, err := PayToAddrScript(pubKeyHash)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}
	gotHash, ok := ExtractPubKeyHash(pkScript)
	if !ok {
		t.Fatalf("ExtractPubKeyHash: not ok")
	}
	if !bytes.Equal(gotHash, pubKeyHash) {
		t.Fatalf("ExtractPubKeyHash: got %x, want %x", gotHash, pubKeyHash)
	}

	scriptHash := bytes.Repeat([]byte{0x04}, 20)
	shScript, err := PayToScriptHashScript(scriptHash)
	if err != nil {
		t.Fatalf("PayToScriptHashScript: %v", err)
	}
	gotHash, ok = ExtractScriptHash(shScript)
	if !ok {
		t.Fatalf("ExtractScriptHash: not ok")
	}
	if !bytes.Equal(gotHash, scriptHash) {
		t.Fatalf("ExtractScriptHash: got %x, want %x", gotHash, scriptHash)
	}
}

// TestParseUnparseRoundTrip ensures parseScript followed by unparseScript
// reproduces the original script bytes for a representative mix of push
// forms.
func TestParseUnparseRoundTrip(t *testing.T) {
	t.Parallel()

	tests := [][]byte{
		{OP_0, OP_1, OP_16, OP_CHECKMULTISIG},
		{OP_DATA_1, 0xAB},
		append([]byte{OP_PUSHDATA1, 3}, []byte{1, 2, 3}...),
		append([]byte{OP_PUSHDATA2, 2, 0}, bytes.Repeat([]byte{0xff}, 2)...),
	}
	for i, script := range tests {
		pops, err := parseScript(script)
		if err != nil {
			t.Fatalf("test %d: parseScript: %v", i, err)
		}
		out, err := unparseScript(pops)
		if err != nil {
			t.Fatalf("test %d: unparseScript: %v", i, err)
		}
		if !bytes.Equal(out, script) {
			t.Fatalf("test %d: roundtrip mismatch: got %x, want %x", i, out, script)
		}
	}
}

// TestParseScriptMalformedPush ensures truncated pushdata opcodes are
// rejected with ErrMalformedPush.
func TestParseScriptMalformedPush(t *testing.T) {
	t.Parallel()

	tests := [][]byte{
		{0x02, 0x01},
		{OP_PUSHDATA1, 5, 0x01},
		{OP_PUSHDATA2, 0xff, 0xff},
	}
	for i, script := range tests {
		if _, err := parseScript(script); !IsErrorCode(err, ErrMalformedPush) {
			t.Fatalf("test %d: expected ErrMalformedPush, got %v", i, err)
		}
	}
}

// TestEngineArithmeticAndStack exercises a script engine running a script
// that relies solely on stack/arithmetic opcodes, with no signature checking
// involved.
func TestEngineArithmeticAndStack(t *testing.T) {
	t.Parallel()

	// scriptSig pushes 3 and 4; scriptPubKey adds them and compares to 7.
	scriptSig := []byte{OP_1 + 2, OP_1 + 3}
	scriptPubKey := []byte{OP_ADD, OP_1 + 6, OP_NUMEQUAL}

	vm, err := NewEngine(scriptPubKey, scriptSig, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

// TestEngineFalseResultFails ensures a script leaving a false value on the
// stack is reported as a failure via ErrEvalFalse.
func TestEngineFalseResultFails(t *testing.T) {
	t.Parallel()

	scriptSig := []byte{OP_0}
	scriptPubKey := []byte{}

	vm, err := NewEngine(scriptPubKey, scriptSig, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); !IsErrorCode(err, ErrEvalFalse) {
		t.Fatalf("expected ErrEvalFalse, got %v", err)
	}
}

// TestEngineDisabledOpcodeFails ensures a disabled historical opcode halts
// execution with ErrDisabledOpcode.
func TestEngineDisabledOpcodeFails(t *testing.T) {
	t.Parallel()

	scriptSig := []byte{OP_1, OP_1}
	scriptPubKey := []byte{OP_CAT}

	vm, err := NewEngine(scriptPubKey, scriptSig, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); !IsErrorCode(err, ErrDisabledOpcode) {
		t.Fatalf("expected ErrDisabledOpcode, got %v", err)
	}
}

// TestEngineSignatureScriptNotPushOnly ensures a signature script containing
// a non-push opcode is rejected up front.
func TestEngineSignatureScriptNotPushOnly(t *testing.T) {
	t.Parallel()

	scriptSig := []byte{OP_1, OP_DUP}
	scriptPubKey := []byte{OP_EQUAL}

	if _, err := NewEngine(scriptPubKey, scriptSig, ScriptNoFlags, nil, nil); !IsErrorCode(err, ErrNotPushOnly) {
		t.Fatalf("expected ErrNotPushOnly, got %v", err)
	}
}

// TestEngineNonMinimalPushFails ensures a push encoded with a larger
// opcode than necessary halts execution with ErrMinimalData.
func TestEngineNonMinimalPushFails(t *testing.T) {
	t.Parallel()

	// A single byte pushed via OP_PUSHDATA1 must use OP_DATA_1 instead.
	scriptSig := []byte{OP_PUSHDATA1, 1, 0xab}
	scriptPubKey := []byte{OP_SIZE, OP_1, OP_NUMEQUAL}

	vm, err := NewEngine(scriptPubKey, scriptSig, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := vm.Execute(); !IsErrorCode(err, ErrMinimalData) {
		t.Fatalf("expected ErrMinimalData, got %v", err)
	}
}

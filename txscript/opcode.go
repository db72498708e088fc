// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// These constants are the values of the single-byte opcodes understood by
// the script virtual machine.
const (
	OP_0         = 0x00
	OP_FALSE     = 0x00
	OP_DATA_1    = 0x01
	OP_DATA_20   = 0x14
	OP_DATA_75   = 0x4b
	OP_PUSHDATA1 = 0x4c
	OP_PUSHDATA2 = 0x4d
	OP_PUSHDATA4 = 0x4e
	OP_1NEGATE   = 0x4f
	OP_RESERVED  = 0x50
	OP_1         = 0x51
	OP_TRUE      = 0x51
	OP_16        = 0x60

	OP_NOP      = 0x61
	OP_VER      = 0x62
	OP_IF       = 0x63
	OP_NOTIF    = 0x64
	OP_VERIF    = 0x65
	OP_VERNOTIF = 0x66
	OP_ELSE     = 0x67
	OP_ENDIF    = 0x68
	OP_VERIFY   = 0x69
	OP_RETURN   = 0x6a

	OP_TOALTSTACK   = 0x6b
	OP_FROMALTSTACK = 0x6c
	OP_2DROP        = 0x6d
	OP_2DUP         = 0x6e
	OP_3DUP         = 0x6f
	OP_2OVER        = 0x70
	OP_2ROT         = 0x71
	OP_2SWAP        = 0x72
	OP_IFDUP        = 0x73
	OP_DEPTH        = 0x74
	OP_DROP         = 0x75
	OP_DUP          = 0x76
	OP_NIP          = 0x77
	OP_OVER         = 0x78
	OP_PICK         = 0x79
	OP_ROLL         = 0x7a
	OP_ROT          = 0x7b
	OP_SWAP         = 0x7c
	OP_TUCK         = 0x7d

	OP_CAT    = 0x7e
	OP_SUBSTR = 0x7f
	OP_LEFT   = 0x80
	OP_RIGHT  = 0x81
	OP_SIZE   = 0x82

	OP_INVERT      = 0x83
	OP_AND         = 0x84
	OP_OR          = 0x85
	OP_XOR         = 0x86
	OP_EQUAL       = 0x87
	OP_EQUALVERIFY = 0x88
	OP_RESERVED1   = 0x89
	OP_RESERVED2   = 0x8a

	OP_1ADD               = 0x8b
	OP_1SUB               = 0x8c
	OP_2MUL               = 0x8d
	OP_2DIV               = 0x8e
	OP_NEGATE             = 0x8f
	OP_ABS                = 0x90
	OP_NOT                = 0x91
	OP_0NOTEQUAL          = 0x92
	OP_ADD                = 0x93
	OP_SUB                = 0x94
	OP_MUL                = 0x95
	OP_DIV                = 0x96
	OP_MOD                = 0x97
	OP_LSHIFT             = 0x98
	OP_RSHIFT             = 0x99
	OP_BOOLAND            = 0x9a
	OP_BOOLOR             = 0x9b
	OP_NUMEQUAL           = 0x9c
	OP_NUMEQUALVERIFY     = 0x9d
	OP_NUMNOTEQUAL        = 0x9e
	OP_LESSTHAN           = 0x9f
	OP_GREATERTHAN        = 0xa0
	OP_LESSTHANOREQUAL    = 0xa1
	OP_GREATERTHANOREQUAL = 0xa2
	OP_MIN                = 0xa3
	OP_MAX                = 0xa4
	OP_WITHIN             = 0xa5

	OP_RIPEMD160           = 0xa6
	OP_SHA1                = 0xa7
	OP_SHA256              = 0xa8
	OP_HASH160             = 0xa9
	OP_HASH256             = 0xaa
	OP_CODESEPARATOR       = 0xab
	OP_CHECKSIG            = 0xac
	OP_CHECKSIGVERIFY      = 0xad
	OP_CHECKMULTISIG       = 0xae
	OP_CHECKMULTISIGVERIFY = 0xaf

	OP_NOP1  = 0xb0
	OP_NOP2  = 0xb1
	OP_NOP3  = 0xb2
	OP_NOP4  = 0xb3
	OP_NOP5  = 0xb4
	OP_NOP6  = 0xb5
	OP_NOP7  = 0xb6
	OP_NOP8  = 0xb7
	OP_NOP9  = 0xb8
	OP_NOP10 = 0xb9

	OP_INVALIDOPCODE = 0xff
)

// opcode holds the static properties of a single opcode: its value, its
// display name, its encoded length (1 for ordinary opcodes, N+1 for the
// OP_DATA_N direct pushes counting the opcode byte, and -1/-2/-4 for the
// PUSHDATA1/2/4 length-prefixed forms), and its execution function.
type opcode struct {
	value  byte
	name   string
	length int
	opfunc func(*parsedOpcode, *Engine) error
}

// opcodeArray holds details about all possible opcodes, indexed by opcode
// value.
var opcodeArray [256]opcode

func init() {
	for i := 0; i < 256; i++ {
		opcodeArray[i] = opcode{value: byte(i), name: fmt.Sprintf("OP_UNKNOWN%d", i), length: 1, opfunc: opcodeInvalid}
	}

	// Data push opcodes.
	opcodeArray[OP_0] = opcode{OP_0, "OP_0", 1, opcodePushData}
	for i := OP_DATA_1; i <= OP_DATA_75; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_DATA_%d", i), i + 1, opcodePushData}
	}
	opcodeArray[OP_PUSHDATA1] = opcode{OP_PUSHDATA1, "OP_PUSHDATA1", -1, opcodePushData}
	opcodeArray[OP_PUSHDATA2] = opcode{OP_PUSHDATA2, "OP_PUSHDATA2", -2, opcodePushData}
	opcodeArray[OP_PUSHDATA4] = opcode{OP_PUSHDATA4, "OP_PUSHDATA4", -4, opcodePushData}
	opcodeArray[OP_1NEGATE] = opcode{OP_1NEGATE, "OP_1NEGATE", 1, opcode1Negate}
	opcodeArray[OP_RESERVED] = opcode{OP_RESERVED, "OP_RESERVED", 1, opcodeReserved}
	for i := OP_1; i <= OP_16; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_%d", i-OP_1+1), 1, opcodeN}
	}

	// Flow control.
	opcodeArray[OP_NOP] = opcode{OP_NOP, "OP_NOP", 1, opcodeNop}
	opcodeArray[OP_VER] = opcode{OP_VER, "OP_VER", 1, opcodeReserved}
	opcodeArray[OP_IF] = opcode{OP_IF, "OP_IF", 1, opcodeIf}
	opcodeArray[OP_NOTIF] = opcode{OP_NOTIF, "OP_NOTIF", 1, opcodeNotIf}
	opcodeArray[OP_VERIF] = opcode{OP_VERIF, "OP_VERIF", 1, opcodeReserved}
	opcodeArray[OP_VERNOTIF] = opcode{OP_VERNOTIF, "OP_VERNOTIF", 1, opcodeReserved}
	opcodeArray[OP_ELSE] = opcode{OP_ELSE, "OP_ELSE", 1, opcodeElse}
	opcodeArray[OP_ENDIF] = opcode{OP_ENDIF, "OP_ENDIF", 1, opcodeEndif}
	opcodeArray[OP_VERIFY] = opcode{OP_VERIFY, "OP_VERIFY", 1, opcodeVerify}
	opcodeArray[OP_RETURN] = opcode{OP_RETURN, "OP_RETURN", 1, opcodeReturn}

	// Stack ops.
	opcodeArray[OP_TOALTSTACK] = opcode{OP_TOALTSTACK, "OP_TOALTSTACK", 1, opcodeToAltStack}
	opcodeArray[OP_FROMALTSTACK] = opcode{OP_FROMALTSTACK, "OP_FROMALTSTACK", 1, opcodeFromAltStack}
	opcodeArray[OP_2DROP] = opcode{OP_2DROP, "OP_2DROP", 1, opcode2Drop}
	opcodeArray[OP_2DUP] = opcode{OP_2DUP, "OP_2DUP", 1, opcode2Dup}
	opcodeArray[OP_3DUP] = opcode{OP_3DUP, "OP_3DUP", 1, opcode3Dup}
	opcodeArray[OP_2OVER] = opcode{OP_2OVER, "OP_2OVER", 1, opcode2Over}
	opcodeArray[OP_2ROT] = opcode{OP_2ROT, "OP_2ROT", 1, opcode2Rot}
	opcodeArray[OP_2SWAP] = opcode{OP_2SWAP, "OP_2SWAP", 1, opcode2Swap}
	opcodeArray[OP_IFDUP] = opcode{OP_IFDUP, "OP_IFDUP", 1, opcodeIfDup}
	opcodeArray[OP_DEPTH] = opcode{OP_DEPTH, "OP_DEPTH", 1, opcodeDepth}
	opcodeArray[OP_DROP] = opcode{OP_DROP, "OP_DROP", 1, opcodeDrop}
	opcodeArray[OP_DUP] = opcode{OP_DUP, "OP_DUP", 1, opcodeDup}
	opcodeArray[OP_NIP] = opcode{OP_NIP, "OP_NIP", 1, opcodeNip}
	opcodeArray[OP_OVER] = opcode{OP_OVER, "OP_OVER", 1, opcodeOver}
	opcodeArray[OP_PICK] = opcode{OP_PICK, "OP_PICK", 1, opcodePick}
	opcodeArray[OP_ROLL] = opcode{OP_ROLL, "OP_ROLL", 1, opcodeRoll}
	opcodeArray[OP_ROT] = opcode{OP_ROT, "OP_ROT", 1, opcodeRot}
	opcodeArray[OP_SWAP] = opcode{OP_SWAP, "OP_SWAP", 1, opcodeSwap}
	opcodeArray[OP_TUCK] = opcode{OP_TUCK, "OP_TUCK", 1, opcodeTuck}

	// Splice ops: disabled historically, except SIZE.
	opcodeArray[OP_CAT] = opcode{OP_CAT, "OP_CAT", 1, opcodeDisabled}
	opcodeArray[OP_SUBSTR] = opcode{OP_SUBSTR, "OP_SUBSTR", 1, opcodeDisabled}
	opcodeArray[OP_LEFT] = opcode{OP_LEFT, "OP_LEFT", 1, opcodeDisabled}
	opcodeArray[OP_RIGHT] = opcode{OP_RIGHT, "OP_RIGHT", 1, opcodeDisabled}
	opcodeArray[OP_SIZE] = opcode{OP_SIZE, "OP_SIZE", 1, opcodeSize}

	// Bitwise logic: disabled historically, except EQUAL(VERIFY).
	opcodeArray[OP_INVERT] = opcode{OP_INVERT, "OP_INVERT", 1, opcodeDisabled}
	opcodeArray[OP_AND] = opcode{OP_AND, "OP_AND", 1, opcodeDisabled}
	opcodeArray[OP_OR] = opcode{OP_OR, "OP_OR", 1, opcodeDisabled}
	opcodeArray[OP_XOR] = opcode{OP_XOR, "OP_XOR", 1, opcodeDisabled}
	opcodeArray[OP_EQUAL] = opcode{OP_EQUAL, "OP_EQUAL", 1, opcodeEqual}
	opcodeArray[OP_EQUALVERIFY] = opcode{OP_EQUALVERIFY, "OP_EQUALVERIFY", 1, opcodeEqualVerify}
	opcodeArray[OP_RESERVED1] = opcode{OP_RESERVED1, "OP_RESERVED1", 1, opcodeReserved}
	opcodeArray[OP_RESERVED2] = opcode{OP_RESERVED2, "OP_RESERVED2", 1, opcodeReserved}

	// Arithmetic.
	opcodeArray[OP_1ADD] = opcode{OP_1ADD, "OP_1ADD", 1, opcode1Add}
	opcodeArray[OP_1SUB] = opcode{OP_1SUB, "OP_1SUB", 1, opcode1Sub}
	opcodeArray[OP_2MUL] = opcode{OP_2MUL, "OP_2MUL", 1, opcodeDisabled}
	opcodeArray[OP_2DIV] = opcode{OP_2DIV, "OP_2DIV", 1, opcodeDisabled}
	opcodeArray[OP_NEGATE] = opcode{OP_NEGATE, "OP_NEGATE", 1, opcodeNegate}
	opcodeArray[OP_ABS] = opcode{OP_ABS, "OP_ABS", 1, opcodeAbs}
	opcodeArray[OP_NOT] = opcode{OP_NOT, "OP_NOT", 1, opcodeNot}
	opcodeArray[OP_0NOTEQUAL] = opcode{OP_0NOTEQUAL, "OP_0NOTEQUAL", 1, opcode0NotEqual}
	opcodeArray[OP_ADD] = opcode{OP_ADD, "OP_ADD", 1, opcodeAdd}
	opcodeArray[OP_SUB] = opcode{OP_SUB, "OP_SUB", 1, opcodeSub}
	opcodeArray[OP_MUL] = opcode{OP_MUL, "OP_MUL", 1, opcodeDisabled}
	opcodeArray[OP_DIV] = opcode{OP_DIV, "OP_DIV", 1, opcodeDisabled}
	opcodeArray[OP_MOD] = opcode{OP_MOD, "OP_MOD", 1, opcodeDisabled}
	opcodeArray[OP_LSHIFT] = opcode{OP_LSHIFT, "OP_LSHIFT", 1, opcodeDisabled}
	opcodeArray[OP_RSHIFT] = opcode{OP_RSHIFT, "OP_RSHIFT", 1, opcodeDisabled}
	opcodeArray[OP_BOOLAND] = opcode{OP_BOOLAND, "OP_BOOLAND", 1, opcodeBoolAnd}
	opcodeArray[OP_BOOLOR] = opcode{OP_BOOLOR, "OP_BOOLOR", 1, opcodeBoolOr}
	opcodeArray[OP_NUMEQUAL] = opcode{OP_NUMEQUAL, "OP_NUMEQUAL", 1, opcodeNumEqual}
	opcodeArray[OP_NUMEQUALVERIFY] = opcode{OP_NUMEQUALVERIFY, "OP_NUMEQUALVERIFY", 1, opcodeNumEqualVerify}
	opcodeArray[OP_NUMNOTEQUAL] = opcode{OP_NUMNOTEQUAL, "OP_NUMNOTEQUAL", 1, opcodeNumNotEqual}
	opcodeArray[OP_LESSTHAN] = opcode{OP_LESSTHAN, "OP_LESSTHAN", 1, opcodeLessThan}
	opcodeArray[OP_GREATERTHAN] = opcode{OP_GREATERTHAN, "OP_GREATERTHAN", 1, opcodeGreaterThan}
	opcodeArray[OP_LESSTHANOREQUAL] = opcode{OP_LESSTHANOREQUAL, "OP_LESSTHANOREQUAL", 1, opcodeLessThanOrEqual}
	opcodeArray[OP_GREATERTHANOREQUAL] = opcode{OP_GREATERTHANOREQUAL, "OP_GREATERTHANOREQUAL", 1, opcodeGreaterThanOrEqual}
	opcodeArray[OP_MIN] = opcode{OP_MIN, "OP_MIN", 1, opcodeMin}
	opcodeArray[OP_MAX] = opcode{OP_MAX, "OP_MAX", 1, opcodeMax}
	opcodeArray[OP_WITHIN] = opcode{OP_WITHIN, "OP_WITHIN", 1, opcodeWithin}

	// Crypto ops.
	opcodeArray[OP_RIPEMD160] = opcode{OP_RIPEMD160, "OP_RIPEMD160", 1, opcodeRipemd160}
	opcodeArray[OP_SHA1] = opcode{OP_SHA1, "OP_SHA1", 1, opcodeSha1}
	opcodeArray[OP_SHA256] = opcode{OP_SHA256, "OP_SHA256", 1, opcodeSha256}
	opcodeArray[OP_HASH160] = opcode{OP_HASH160, "OP_HASH160", 1, opcodeHash160}
	opcodeArray[OP_HASH256] = opcode{OP_HASH256, "OP_HASH256", 1, opcodeHash256}
	opcodeArray[OP_CODESEPARATOR] = opcode{OP_CODESEPARATOR, "OP_CODESEPARATOR", 1, opcodeCodeSeparator}
	opcodeArray[OP_CHECKSIG] = opcode{OP_CHECKSIG, "OP_CHECKSIG", 1, opcodeCheckSig}
	opcodeArray[OP_CHECKSIGVERIFY] = opcode{OP_CHECKSIGVERIFY, "OP_CHECKSIGVERIFY", 1, opcodeCheckSigVerify}
	opcodeArray[OP_CHECKMULTISIG] = opcode{OP_CHECKMULTISIG, "OP_CHECKMULTISIG", 1, opcodeCheckMultiSig}
	opcodeArray[OP_CHECKMULTISIGVERIFY] = opcode{OP_CHECKMULTISIGVERIFY, "OP_CHECKMULTISIGVERIFY", 1, opcodeCheckMultiSigVerify}

	// Reserved for future soft-fork upgrades: behave as NOPs.
	for i := OP_NOP1; i <= OP_NOP10; i++ {
		opcodeArray[i] = opcode{byte(i), fmt.Sprintf("OP_NOP%d", i-OP_NOP1+1), 1, opcodeNop}
	}
}

// parsedOpcode represents an opcode that has been parsed and includes any
// potential data associated with it.
type parsedOpcode struct {
	opcode *opcode
	data   []byte
}

// isDisabled returns whether or not the opcode is disabled and thus is
// always bad to see in the instruction stream.
func (pop *parsedOpcode) isDisabled() bool {
	switch pop.opcode.value {
	case OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT,
		OP_INVERT, OP_AND, OP_OR, OP_XOR,
		OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT, OP_RSHIFT:
		return true
	}
	return false
}

// alwaysIllegal returns whether or not the opcode is always illegal when
// present in a script, regardless of whether it is executed.
func (pop *parsedOpcode) alwaysIllegal() bool {
	switch pop.opcode.value {
	case OP_VERIF, OP_VERNOTIF:
		return true
	}
	return false
}

// isConditional returns whether or not the opcode is a conditional opcode
// which changes the conditional execution stack when executed.
func (pop *parsedOpcode) isConditional() bool {
	switch pop.opcode.value {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	}
	return false
}

// checkMinimalDataPush returns whether or not the current data push uses
// the smallest possible opcode to represent it. For example, the value 1
// must be pushed with OP_1 rather than OP_DATA_1 followed by 0x01, and any
// data of length one through 75 must use the direct-length opcode rather
// than OP_PUSHDATA1.
func (pop *parsedOpcode) checkMinimalDataPush() error {
	data := pop.data
	dataLen := len(data)
	op := pop.opcode.value

	switch {
	case dataLen == 0 && op != OP_0:
		return scriptError(ErrMinimalData, fmt.Sprintf(
			"zero length data push is encoded with opcode %s instead of OP_0", pop.opcode.name))
	case dataLen == 1 && data[0] >= 1 && data[0] <= 16:
		if op != OP_1+data[0]-1 {
			return scriptError(ErrMinimalData, fmt.Sprintf(
				"data push of the value %d encoded with opcode %s instead of OP_%d",
				data[0], pop.opcode.name, data[0]))
		}
	case dataLen == 1 && data[0] == 0x81:
		if op != OP_1NEGATE {
			return scriptError(ErrMinimalData, fmt.Sprintf(
				"data push of the value -1 encoded with opcode %s instead of OP_1NEGATE",
				pop.opcode.name))
		}
	case dataLen <= 75:
		if int(op) != dataLen {
			return scriptError(ErrMinimalData, fmt.Sprintf(
				"data push of %d bytes encoded with opcode %s instead of OP_DATA_%d",
				dataLen, pop.opcode.name, dataLen))
		}
	case dataLen <= 255:
		if op != OP_PUSHDATA1 {
			return scriptError(ErrMinimalData, fmt.Sprintf(
				"data push of %d bytes encoded with opcode %s instead of OP_PUSHDATA1",
				dataLen, pop.opcode.name))
		}
	case dataLen <= 65535:
		if op != OP_PUSHDATA2 {
			return scriptError(ErrMinimalData, fmt.Sprintf(
				"data push of %d bytes encoded with opcode %s instead of OP_PUSHDATA2",
				dataLen, pop.opcode.name))
		}
	}
	return nil
}

func (pop *parsedOpcode) print() string {
	if len(pop.data) > 0 {
		return fmt.Sprintf("%s 0x%x", pop.opcode.name, pop.data)
	}
	return pop.opcode.name
}

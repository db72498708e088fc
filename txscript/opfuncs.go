// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160"
)

func opcodeInvalid(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrReservedOpcode, fmt.Sprintf("attempt to execute invalid opcode %s", pop.opcode.name))
}

func opcodeDisabled(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrDisabledOpcode, fmt.Sprintf("attempt to execute disabled opcode %s", pop.opcode.name))
}

func opcodeReserved(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrReservedOpcode, fmt.Sprintf("attempt to execute reserved opcode %s", pop.opcode.name))
}

func opcodeNop(pop *parsedOpcode, vm *Engine) error {
	return nil
}

func opcodePushData(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushByteArray(pop.data)
	return nil
}

func opcode1Negate(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(-1))
	return nil
}

func opcodeN(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(int(pop.opcode.value) - (OP_1 - 1)))
	return nil
}

// conditional execution (IF/NOTIF/ELSE/ENDIF)

const (
	opCondFalse = 0
	opCondTrue  = 1
	opCondSkip  = 2
)

func opcodeIf(pop *parsedOpcode, vm *Engine) error {
	condVal := opCondFalse
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if ok {
			condVal = opCondTrue
		}
	} else {
		condVal = opCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

func opcodeNotIf(pop *parsedOpcode, vm *Engine) error {
	condVal := opCondFalse
	if vm.isBranchExecuting() {
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			condVal = opCondTrue
		}
	} else {
		condVal = opCondSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

func opcodeElse(pop *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "encountered opcode else with no matching if")
	}
	idx := len(vm.condStack) - 1
	switch vm.condStack[idx] {
	case opCondTrue:
		vm.condStack[idx] = opCondFalse
	case opCondFalse:
		vm.condStack[idx] = opCondTrue
	case opCondSkip:
		// leave as skip
	}
	return nil
}

func opcodeEndif(pop *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "encountered opcode endif with no matching if")
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

func opcodeVerify(pop *parsedOpcode, vm *Engine) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(ErrVerify, "VERIFY failed")
	}
	return nil
}

func opcodeReturn(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrEarlyReturn, "script called OP_RETURN")
}

// stack manipulation

func opcodeToAltStack(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)
	return nil
}

func opcodeFromAltStack(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(so)
	return nil
}

func opcode2Drop(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(2)
}

func opcode2Dup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(2)
}

func opcode3Dup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(3)
}

func opcode2Over(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(2)
}

func opcode2Rot(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(2)
}

func opcode2Swap(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

func opcodeIfDup(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}
	return nil
}

func opcodeDepth(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(scriptNum(vm.dstack.Depth()))
	return nil
}

func opcodeDrop(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(1)
}

func opcodeDup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(1)
}

func opcodeNip(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.NipN(1)
}

func opcodeOver(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(1)
}

func opcodePick(pop *parsedOpcode, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.PickN(int32(val))
}

func opcodeRoll(pop *parsedOpcode, vm *Engine) error {
	val, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	return vm.dstack.RollN(int32(val))
}

func opcodeRot(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(1)
}

func opcodeSwap(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

func opcodeTuck(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.Tuck()
}

// splice / bitwise

func opcodeSize(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(scriptNum(len(so)))
	return nil
}

func opcodeEqual(pop *parsedOpcode, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(bytes.Equal(a, b))
	return nil
}

func opcodeEqualVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeEqual(pop, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrEqualVerify, "EQUALVERIFY failed")
	}
	return nil
}

// arithmetic

func arithmeticBinOp(vm *Engine, f func(a, b scriptNum) scriptNum) error {
	b, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(f(a, b))
	return nil
}

func opcode1Add(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(n + 1)
	return nil
}

func opcode1Sub(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(n - 1)
	return nil
}

func opcodeNegate(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushInt(-n)
	return nil
}

func opcodeAbs(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if n < 0 {
		n = -n
	}
	vm.dstack.PushInt(n)
	return nil
}

func opcodeNot(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if n == 0 {
		vm.dstack.PushInt(1)
	} else {
		vm.dstack.PushInt(0)
	}
	return nil
}

func opcode0NotEqual(pop *parsedOpcode, vm *Engine) error {
	n, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	if n != 0 {
		vm.dstack.PushInt(1)
	} else {
		vm.dstack.PushInt(0)
	}
	return nil
}

func opcodeAdd(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum { return a + b })
}

func opcodeSub(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum { return a - b })
}

func opcodeBoolAnd(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a != 0 && b != 0 {
			return 1
		}
		return 0
	})
}

func opcodeBoolOr(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a != 0 || b != 0 {
			return 1
		}
		return 0
	})
}

func opcodeNumEqual(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a == b {
			return 1
		}
		return 0
	})
}

func opcodeNumEqualVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeNumEqual(pop, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrNumEqualVerify, "NUMEQUALVERIFY failed")
	}
	return nil
}

func opcodeNumNotEqual(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a != b {
			return 1
		}
		return 0
	})
}

func opcodeLessThan(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a < b {
			return 1
		}
		return 0
	})
}

func opcodeGreaterThan(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a > b {
			return 1
		}
		return 0
	})
}

func opcodeLessThanOrEqual(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a <= b {
			return 1
		}
		return 0
	})
}

func opcodeGreaterThanOrEqual(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a >= b {
			return 1
		}
		return 0
	})
}

func opcodeMin(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a < b {
			return a
		}
		return b
	})
}

func opcodeMax(pop *parsedOpcode, vm *Engine) error {
	return arithmeticBinOp(vm, func(a, b scriptNum) scriptNum {
		if a > b {
			return a
		}
		return b
	})
}

func opcodeWithin(pop *parsedOpcode, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

// crypto

func opcodeRipemd160(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	h := ripemd160.New()
	h.Write(so)
	vm.dstack.PushByteArray(h.Sum(nil))
	return nil
}

func opcodeSha1(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sum := sha1.Sum(so)
	vm.dstack.PushByteArray(sum[:])
	return nil
}

func opcodeSha256(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sum := sha256.Sum256(so)
	vm.dstack.PushByteArray(sum[:])
	return nil
}

func opcodeHash160(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(Hash160(so))
	return nil
}

func opcodeHash256(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	h := chainhash.DoubleHashB(so)
	vm.dstack.PushByteArray(h)
	return nil
}

func opcodeCodeSeparator(pop *parsedOpcode, vm *Engine) error {
	vm.lastCodeSep = vm.scriptOff
	return nil
}

func opcodeCheckSig(pop *parsedOpcode, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	valid, err := vm.checkSignature(fullSigBytes, pkBytes)
	if err != nil {
		return err
	}
	vm.dstack.PushBool(valid)
	return nil
}

func opcodeCheckSigVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckSig(pop, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrCheckSigVerify, "CHECKSIGVERIFY failed")
	}
	return nil
}

func opcodeCheckMultiSig(pop *parsedOpcode, vm *Engine) error {
	numKeys, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numPubKeys := int(numKeys)
	if numPubKeys < 0 || numPubKeys > MaxPubKeysPerMultiSig {
		return scriptError(ErrInvalidPubKeyCount, "invalid pubkey count in CHECKMULTISIG")
	}

	pubKeys := make([][]byte, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pk, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys[i] = pk
	}

	numSigs, err := vm.dstack.PopInt()
	if err != nil {
		return err
	}
	numSignatures := int(numSigs)
	if numSignatures < 0 || numSignatures > numPubKeys {
		return scriptError(ErrInvalidSignatureCount, "invalid signature count in CHECKMULTISIG")
	}

	signatures := make([][]byte, numSignatures)
	for i := 0; i < numSignatures; i++ {
		sig, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		signatures[i] = sig
	}

	// Historical off-by-one bug: CHECKMULTISIG pops one extra stack item
	// that it does not use.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		return err
	}

	success := true
	pubKeyIdx := 0
	sigIdx := 0
	for sigIdx < numSignatures {
		if pubKeyIdx >= numPubKeys {
			success = false
			break
		}
		valid, err := vm.checkSignature(signatures[sigIdx], pubKeys[pubKeyIdx])
		if err != nil {
			return err
		}
		if valid {
			sigIdx++
		}
		pubKeyIdx++
	}
	if sigIdx < numSignatures {
		success = false
	}

	vm.dstack.PushBool(success)
	return nil
}

func opcodeCheckMultiSigVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckMultiSig(pop, vm); err != nil {
		return err
	}
	ok, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrCheckMultiSigVerify, "CHECKMULTISIGVERIFY failed")
	}
	return nil
}

// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// ScriptFlags is a bitmask defining additional operations or tests that will
// be done when executing a script pair.
type ScriptFlags uint32

const (
	// ScriptNoFlags is used when no additional checks are requested.
	ScriptNoFlags ScriptFlags = 0

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// NOP1 through NOP10 are reserved for future soft-fork upgrades.
	ScriptDiscourageUpgradableNops ScriptFlags = 1 << iota
)

const (
	// MaxStackSize is the maximum combined height of the data and alt
	// stacks during execution.
	MaxStackSize = 244

	// MaxScriptSize is the maximum allowed length of a raw script.
	MaxScriptSize = 10000

	// MaxOpsPerScript is the maximum number of non-push operations that
	// may be executed by a script.
	MaxOpsPerScript = 201

	// MaxScriptElementSize is the maximum allowed size, in bytes, of a
	// pushed data element.
	MaxScriptElementSize = 520

	// opCondFalse/opCondTrue/opCondSkip are the condStack values used by
	// the IF/NOTIF/ELSE/ENDIF family, see opcodeIf in opfuncs.go.
)

// SignatureChecker abstracts ECDSA signature verification for the engine, so
// the VM itself never touches the transaction-hashing/crypto details.
type SignatureChecker interface {
	// CheckSignature reports whether sig is a valid signature of the
	// engine's current subscript by the given public key.
	CheckSignature(vm *Engine, sig, pubKey []byte) (bool, error)
}

// Engine is the virtual machine that executes scripts.
type Engine struct {
	scripts         [][]parsedOpcode
	scriptIdx       int
	scriptOff       int
	lastCodeSep     int
	dstack          stack
	astack          stack
	condStack       []int
	numOps          int
	flags           ScriptFlags
	sigCache        *SigCache
	isP2SH          bool
	savedFirstStack [][]byte

	checker SignatureChecker
}

func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// isBranchExecuting reports whether the current conditional branch is
// actively executing, properly handling nested IF/NOTIF/ELSE/ENDIF.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == opCondTrue
}

// executeOpcode performs execution on the passed opcode, taking into account
// whether it is hidden by conditionals and the resource limits that must
// still be enforced regardless.
func (vm *Engine) executeOpcode(pop *parsedOpcode) error {
	if pop.isDisabled() {
		return scriptError(ErrDisabledOpcode, fmt.Sprintf(
			"attempt to execute disabled opcode %s", pop.opcode.name))
	}
	if pop.alwaysIllegal() {
		return scriptError(ErrReservedOpcode, fmt.Sprintf(
			"attempt to execute reserved opcode %s", pop.opcode.name))
	}

	if pop.opcode.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			return scriptError(ErrTooManyOperations, fmt.Sprintf(
				"exceeded max operation limit of %d", MaxOpsPerScript))
		}
	} else if len(pop.data) > MaxScriptElementSize {
		return scriptError(ErrElementTooBig, fmt.Sprintf(
			"element size %d exceeds max allowed size %d",
			len(pop.data), MaxScriptElementSize))
	}

	if !vm.isBranchExecuting() && !pop.isConditional() {
		return nil
	}

	if vm.isBranchExecuting() && pop.opcode.value <= OP_PUSHDATA4 {
		if err := pop.checkMinimalDataPush(); err != nil {
			return err
		}
	}

	return pop.opcode.opfunc(pop, vm)
}

func (vm *Engine) validPC() error {
	if vm.scriptIdx >= len(vm.scripts) {
		return scriptError(ErrInvalidProgramCounter, fmt.Sprintf(
			"past input scripts %v:%v %v:xxxx", vm.scriptIdx, vm.scriptOff, len(vm.scripts)))
	}
	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		return scriptError(ErrInvalidProgramCounter, fmt.Sprintf(
			"past input scripts %v:%v %v:%04d", vm.scriptIdx, vm.scriptOff,
			vm.scriptIdx, len(vm.scripts[vm.scriptIdx])))
	}
	return nil
}

// CheckErrorCondition returns nil if the running script has ended and left a
// true boolean on top of the stack.
func (vm *Engine) CheckErrorCondition(finalScript bool) error {
	if vm.scriptIdx < len(vm.scripts) {
		return scriptError(ErrScriptUnfinished, "error check when script unfinished")
	}

	if finalScript {
		if vm.dstack.Depth() > 1 {
			return scriptError(ErrCleanStack, fmt.Sprintf(
				"stack contains %d unexpected items", vm.dstack.Depth()-1))
		} else if vm.dstack.Depth() < 1 {
			return scriptError(ErrEmptyStack, "stack empty at end of script execution")
		}
	}

	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}
	return nil
}

// GetStack returns a shallow copy of the engine's current data stack.
func (vm *Engine) GetStack() [][]byte {
	out := make([][]byte, len(vm.dstack.stk))
	copy(out, vm.dstack.stk)
	return out
}

// SetStack replaces the engine's current data stack with the given contents.
func (vm *Engine) SetStack(data [][]byte) {
	vm.dstack.stk = make([][]byte, len(data))
	copy(vm.dstack.stk, data)
}

// Step executes the next instruction and advances the program counter to the
// next opcode, or to the next script if the current one has ended. It returns
// true once the final script has finished executing.
func (vm *Engine) Step() (done bool, err error) {
	if err = vm.validPC(); err != nil {
		return true, err
	}
	op := &vm.scripts[vm.scriptIdx][vm.scriptOff]
	vm.scriptOff++

	if err = vm.executeOpcode(op); err != nil {
		return true, err
	}

	combined := vm.dstack.Depth() + vm.astack.Depth()
	if combined > MaxStackSize {
		return false, scriptError(ErrStackOverflow, fmt.Sprintf(
			"combined stack size %d > max allowed %d", combined, MaxStackSize))
	}

	if vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
		if len(vm.condStack) != 0 {
			return false, scriptError(ErrUnbalancedConditional,
				"end of script reached in conditional execution")
		}

		_ = vm.astack.DropN(vm.astack.Depth())
		vm.numOps = 0
		vm.scriptOff = 0
		vm.lastCodeSep = 0

		switch {
		case vm.scriptIdx == 0 && vm.isP2SH:
			vm.scriptIdx++
			vm.savedFirstStack = vm.GetStack()
		case vm.scriptIdx == 1 && vm.isP2SH:
			vm.scriptIdx++
			if err := vm.CheckErrorCondition(false); err != nil {
				return false, err
			}
			script := vm.savedFirstStack[len(vm.savedFirstStack)-1]
			pops, err := parseScript(script)
			if err != nil {
				return false, err
			}
			vm.scripts = append(vm.scripts, pops)
			vm.SetStack(vm.savedFirstStack[:len(vm.savedFirstStack)-1])
		default:
			vm.scriptIdx++
		}

		if vm.scriptIdx < len(vm.scripts) && vm.scriptOff >= len(vm.scripts[vm.scriptIdx]) {
			vm.scriptIdx++
		}
		if vm.scriptIdx >= len(vm.scripts) {
			return true, nil
		}
	}
	return false, nil
}

// Execute runs every script held by the engine, returning nil only if the
// final result is a true value on top of the stack.
func (vm *Engine) Execute() error {
	done := false
	var err error
	for !done {
		done, err = vm.Step()
		if err != nil {
			return err
		}
	}
	return vm.CheckErrorCondition(true)
}

// currentSubScript returns the bytes of the currently executing script from
// just after the last executed OP_CODESEPARATOR onward, used for signature
// hashing.
func (vm *Engine) currentSubScript() ([]byte, error) {
	pops := vm.scripts[vm.scriptIdx][vm.lastCodeSep:]
	return unparseScript(pops)
}

func (vm *Engine) checkSignature(fullSigBytes, pkBytes []byte) (bool, error) {
	if len(fullSigBytes) == 0 {
		return false, nil
	}
	if vm.checker == nil {
		return false, scriptError(ErrInternal, "engine has no signature checker configured")
	}
	return vm.checker.CheckSignature(vm, fullSigBytes, pkBytes)
}

// NewEngine returns a new script engine for the provided public key script,
// signature script and transaction input index, performing P2SH detection up
// front: the two scripts execute in sequence, sharing the data stack, and a
// pay-to-script-hash scriptPubKey triggers a
// third execution of the redeem script recovered from the signature script's
// final stack item.
func NewEngine(scriptPubKey, scriptSig []byte, flags ScriptFlags, sigCache *SigCache, checker SignatureChecker) (*Engine, error) {
	if len(scriptSig) > MaxScriptSize || len(scriptPubKey) > MaxScriptSize {
		return nil, scriptError(ErrScriptTooBig, "script pair exceeds max allowed size")
	}

	sigPops, err := parseScript(scriptSig)
	if err != nil {
		return nil, err
	}
	for _, pop := range sigPops {
		if pop.opcode.value > OP_16 {
			return nil, scriptError(ErrNotPushOnly, "signature script is not push only")
		}
	}

	pkPops, err := parseScript(scriptPubKey)
	if err != nil {
		return nil, err
	}

	vm := &Engine{
		scripts:  [][]parsedOpcode{sigPops, pkPops},
		flags:    flags,
		sigCache: sigCache,
		checker:  checker,
	}
	if IsPayToScriptHash(scriptPubKey) {
		vm.isP2SH = true
	}
	return vm, nil
}

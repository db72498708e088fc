// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// ErrorCode identifies a kind of script error so callers can branch on
// cause rather than message text.
type ErrorCode int

// Script error codes.
const (
	ErrInternal ErrorCode = iota
	ErrInvalidFlags
	ErrInvalidIndex
	ErrUnsupportedAddress
	ErrNotMultisigScript
	ErrTooManyRequiredSigs
	ErrTooMuchNullData

	ErrEarlyReturn
	ErrEmptyStack
	ErrEvalFalse
	ErrScriptUnfinished
	ErrInvalidProgramCounter

	ErrScriptTooBig
	ErrElementTooBig
	ErrTooManyOperations
	ErrStackOverflow
	ErrInvalidPubKeyCount
	ErrInvalidSignatureCount
	ErrNumberTooBig

	ErrVerify
	ErrEqualVerify
	ErrNumEqualVerify
	ErrCheckSigVerify
	ErrCheckMultiSigVerify

	ErrDisabledOpcode
	ErrReservedOpcode
	ErrMalformedPush
	ErrInvalidStackOperation
	ErrUnbalancedConditional

	ErrMinimalData
	ErrInvalidSignature
	ErrNullFail
	ErrSigHashType
	ErrSigTooShort
	ErrSigTooLong
	ErrSigHighS
	ErrNotPushOnly
	ErrSigNullDummy
	ErrPubKeyType
	ErrCleanStack
	ErrNegativeLockTime
	ErrUnsatisfiedLockTime
)

var errorCodeNames = map[ErrorCode]string{
	ErrInternal:              "ErrInternal",
	ErrInvalidFlags:          "ErrInvalidFlags",
	ErrInvalidIndex:          "ErrInvalidIndex",
	ErrUnsupportedAddress:    "ErrUnsupportedAddress",
	ErrNotMultisigScript:     "ErrNotMultisigScript",
	ErrTooManyRequiredSigs:   "ErrTooManyRequiredSigs",
	ErrTooMuchNullData:       "ErrTooMuchNullData",
	ErrEarlyReturn:           "ErrEarlyReturn",
	ErrEmptyStack:            "ErrEmptyStack",
	ErrEvalFalse:             "ErrEvalFalse",
	ErrScriptUnfinished:      "ErrScriptUnfinished",
	ErrInvalidProgramCounter: "ErrInvalidProgramCounter",
	ErrScriptTooBig:          "ErrScriptTooBig",
	ErrElementTooBig:         "ErrElementTooBig",
	ErrTooManyOperations:     "ErrTooManyOperations",
	ErrStackOverflow:         "ErrStackOverflow",
	ErrInvalidPubKeyCount:    "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount: "ErrInvalidSignatureCount",
	ErrNumberTooBig:          "ErrNumberTooBig",
	ErrVerify:                "ErrVerify",
	ErrEqualVerify:           "ErrEqualVerify",
	ErrNumEqualVerify:        "ErrNumEqualVerify",
	ErrCheckSigVerify:        "ErrCheckSigVerify",
	ErrCheckMultiSigVerify:   "ErrCheckMultiSigVerify",
	ErrDisabledOpcode:        "ErrDisabledOpcode",
	ErrReservedOpcode:        "ErrReservedOpcode",
	ErrMalformedPush:         "ErrMalformedPush",
	ErrInvalidStackOperation: "ErrInvalidStackOperation",
	ErrUnbalancedConditional: "ErrUnbalancedConditional",
	ErrMinimalData:           "ErrMinimalData",
	ErrInvalidSignature:      "ErrInvalidSignature",
	ErrNullFail:              "ErrNullFail",
	ErrSigHashType:           "ErrSigHashType",
	ErrSigTooShort:           "ErrSigTooShort",
	ErrSigTooLong:            "ErrSigTooLong",
	ErrSigHighS:              "ErrSigHighS",
	ErrNotPushOnly:           "ErrNotPushOnly",
	ErrSigNullDummy:          "ErrSigNullDummy",
	ErrPubKeyType:            "ErrPubKeyType",
	ErrCleanStack:            "ErrCleanStack",
	ErrNegativeLockTime:      "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:   "ErrUnsatisfiedLockTime",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeNames[e]; ok {
		return s
	}
	return "Unknown ErrorCode"
}

// Error identifies a script-evaluation failure, carrying both the specific
// ErrorCode and a human-readable description.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script Error
// with the given error code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}

// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database persists the block index, block contents, and the
// unspent transaction output set to disk on top of
// github.com/syndtr/goleveldb.
package database

import "fmt"

// ErrorKind identifies a class of storage failure.
type ErrorKind string

func (e ErrorKind) Error() string { return string(e) }

const (
	// ErrCorrupt indicates an on-disk record failed to decode.
	ErrCorrupt = ErrorKind("ErrCorrupt")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = ErrorKind("ErrNotFound")

	// ErrIO indicates an underlying filesystem or leveldb operation
	// failed.
	ErrIO = ErrorKind("ErrIO")
)

// Error wraps an ErrorKind with a human-readable description, mirroring
// the blockchain package's RuleError so callers can use errors.Is against
// either package consistently.
type Error struct {
	ErrorCode   ErrorKind
	Description string
}

func (e Error) Error() string { return e.Description }

func (e Error) Unwrap() error { return e.ErrorCode }

func makeError(kind ErrorKind, format string, args ...interface{}) Error {
	return Error{ErrorCode: kind, Description: fmt.Sprintf(format, args...)}
}

func errCorruptf(format string, args ...interface{}) Error {
	return makeError(ErrCorrupt, format, args...)
}

func errIOf(format string, args ...interface{}) Error {
	return makeError(ErrIO, format, args...)
}

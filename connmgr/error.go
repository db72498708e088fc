// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import "fmt"

// ErrorKind identifies a class of dial failure.
type ErrorKind string

func (e ErrorKind) Error() string { return string(e) }

const (
	// ErrNoAddress indicates the address pool had no candidate to dial.
	ErrNoAddress = ErrorKind("ErrNoAddress")

	// ErrDial indicates the TCP or SOCKS5 connect attempt itself failed.
	ErrDial = ErrorKind("ErrDial")
)

// Error pairs an ErrorKind with a description.
type Error struct {
	ErrorCode   ErrorKind
	Description string
}

func (e Error) Error() string { return e.Description }

func (e Error) Unwrap() error { return e.ErrorCode }

func errorf(kind ErrorKind, format string, args ...interface{}) Error {
	return Error{ErrorCode: kind, Description: fmt.Sprintf(format, args...)}
}

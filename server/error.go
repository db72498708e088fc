// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import "fmt"

// ErrorKind identifies a class of server-level failure.
type ErrorKind string

func (e ErrorKind) Error() string { return string(e) }

const (
	// ErrListen indicates the inbound TCP listener could not be opened,
	// or a dialed peer's observed address could not be parsed.
	ErrListen = ErrorKind("ErrListen")

	// ErrHandshakeTimeout indicates a session never reached StateReady
	// within the handshake window.
	ErrHandshakeTimeout = ErrorKind("ErrHandshakeTimeout")

	// ErrIdleRequester indicates the header requester stopped answering
	// and was evicted.
	ErrIdleRequester = ErrorKind("ErrIdleRequester")
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

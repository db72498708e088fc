// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "fmt"

// ErrorKind identifies a class of per-session failure.
type ErrorKind string

func (e ErrorKind) Error() string { return string(e) }

const (
	// ErrFraming indicates a malformed wire frame: bad magic, bad
	// checksum, or an oversized payload.
	ErrFraming = ErrorKind("ErrFraming")

	// ErrProtocol indicates a message arrived that is not valid at the
	// session's current handshake state (e.g. a second version message,
	// or any command before the handshake completes).
	ErrProtocol = ErrorKind("ErrProtocol")

	// ErrHandshakeTimeout indicates the 10s handshake window elapsed
	// without reaching StateReady.
	ErrHandshakeTimeout = ErrorKind("ErrHandshakeTimeout")

	// ErrRemoteReject indicates the remote peer sent a reject message,
	// which this node treats as a close-worthy protocol event.
	ErrRemoteReject = ErrorKind("ErrRemoteReject")

	// ErrSocket indicates the underlying connection failed (read error,
	// write error, or a clean EOF before the handshake completed).
	ErrSocket = ErrorKind("ErrSocket")
)

// Error pairs an ErrorKind with a description, matching the
// blockchain/database packages' own Error type so callers can use
// errors.Is consistently across the module.
type Error struct {
	ErrorCode   ErrorKind
	Description string
}

func (e Error) Error() string { return e.Description }

func (e Error) Unwrap() error { return e.ErrorCode }

func errorf(kind ErrorKind, format string, args ...interface{}) Error {
	return Error{ErrorCode: kind, Description: fmt.Sprintf(format, args...)}
}

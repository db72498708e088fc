// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hindsights/xbtc/chaincfg/chainhash"
)

var littleEndian = binary.LittleEndian

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int32(littleEndian.Uint32(b[:]))
		return nil
	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(b[:])
		return nil
	case *int64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(b[:]))
		return nil
	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(b[:])
		return nil
	case *bool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0] != 0
		return nil
	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *[CommandSize]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *ServiceFlag:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = ServiceFlag(littleEndian.Uint64(b[:]))
		return nil
	case *InvType:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = InvType(littleEndian.Uint32(b[:]))
		return nil
	case *CurrencyNet:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = CurrencyNet(littleEndian.Uint32(b[:]))
		return nil
	}

	return binary.Read(r, littleEndian, element)
}

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		var b [4]byte
		littleEndian.PutUint32(b[:], uint32(e))
		_, err := w.Write(b[:])
		return err
	case uint32:
		var b [4]byte
		littleEndian.PutUint32(b[:], e)
		_, err := w.Write(b[:])
		return err
	case int64:
		var b [8]byte
		littleEndian.PutUint64(b[:], uint64(e))
		_, err := w.Write(b[:])
		return err
	case uint64:
		var b [8]byte
		littleEndian.PutUint64(b[:], e)
		_, err := w.Write(b[:])
		return err
	case bool:
		var b [1]byte
		if e {
			b[0] = 1
		}
		_, err := w.Write(b[:])
		return err
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	case [4]byte:
		_, err := w.Write(e[:])
		return err
	case [CommandSize]byte:
		_, err := w.Write(e[:])
		return err
	case ServiceFlag:
		var b [8]byte
		littleEndian.PutUint64(b[:], uint64(e))
		_, err := w.Write(b[:])
		return err
	case InvType:
		var b [4]byte
		littleEndian.PutUint32(b[:], uint32(e))
		_, err := w.Write(b[:])
		return err
	case CurrencyNet:
		var b [4]byte
		littleEndian.PutUint32(b[:], uint32(e))
		_, err := w.Write(b[:])
		return err
	}

	return binary.Write(w, littleEndian, element)
}

// ReadVarInt reads a compact-size variable length integer: values below 0xfd
// fit in a single byte; 0xfd/0xfe/0xff are followed by a 2/4/8-byte value.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case 0xff:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		rv := littleEndian.Uint64(b[:])
		if rv <= 0xffffffff {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must encode a value greater than %x",
				rv, prefix[0], uint64(0xffffffff)))
		}
		return rv, nil
	case 0xfe:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		rv := uint64(littleEndian.Uint32(b[:]))
		if rv <= 0xffff {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must encode a value greater than %x",
				rv, prefix[0], uint64(0xffff)))
		}
		return rv, nil
	case 0xfd:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		rv := uint64(littleEndian.Uint16(b[:]))
		if rv < 0xfd {
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				"non-canonical varint %x - discriminant %x must encode a value of at least %x",
				rv, prefix[0], uint64(0xfd)))
		}
		return rv, nil
	default:
		return uint64(prefix[0]), nil
	}
}

// WriteVarInt writes n to w encoded as a compact-size variable length
// integer.
func WriteVarInt(w io.Writer, n uint64) error {
	if n < 0xfd {
		_, err := w.Write([]byte{byte(n)})
		return err
	}
	if n <= 0xffff {
		var b [3]byte
		b[0] = 0xfd
		littleEndian.PutUint16(b[1:], uint16(n))
		_, err := w.Write(b[:])
		return err
	}
	if n <= 0xffffffff {
		var b [5]byte
		b[0] = 0xfe
		littleEndian.PutUint32(b[1:], uint32(n))
		_, err := w.Write(b[:])
		return err
	}
	var b [9]byte
	b[0] = 0xff
	littleEndian.PutUint64(b[1:], n)
	_, err := w.Write(b[:])
	return err
}

// VarIntSerializeSize returns the number of bytes needed to serialize n as a
// compact-size variable length integer.
func VarIntSerializeSize(n uint64) int {
	if n < 0xfd {
		return 1
	}
	if n <= 0xffff {
		return 3
	}
	if n <= 0xffffffff {
		return 5
	}
	return 9
}

// ReadVarBytes reads a compact-size length followed by that many raw bytes,
// rejecting a length that exceeds maxAllowed.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageError("ReadVarBytes", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed))
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarBytes writes a compact-size length followed by the raw bytes.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// ReadVarString reads a compact-size length followed by that many bytes of
// ASCII text, rejecting a length that exceeds maxAllowed.
func ReadVarString(r io.Reader, maxAllowed uint64) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, "string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString writes a compact-size length followed by the string bytes.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

func messageError(op, desc string) error {
	return &MessageError{Op: op, Description: desc}
}

// MessageError describes an issue encountered while decoding a message. An
// implementing code may check the Op/Description fields for context.
type MessageError struct {
	Op          string
	Description string
}

func (e *MessageError) Error() string {
	if e.Op == "" {
		return e.Description
	}
	return e.Op + ": " + e.Description
}

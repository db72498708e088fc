// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, 0xffffffffffffffff}
	for _, n := range tests {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, n); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", n, err)
		}
		if buf.Len() != VarIntSerializeSize(n) {
			t.Fatalf("VarIntSerializeSize(%d) = %d, wrote %d bytes", n, VarIntSerializeSize(n), buf.Len())
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", n, err)
		}
		if got != n {
			t.Fatalf("ReadVarInt round trip = %d, want %d", got, n)
		}
	}
}

func TestReadVarIntNonCanonical(t *testing.T) {
	// 0xfd discriminant followed by a value that fits in a single byte is
	// a non-canonical encoding and must be rejected.
	buf := bytes.NewReader([]byte{0xfd, 0x01, 0x00})
	if _, err := ReadVarInt(buf); err == nil {
		t.Fatal("expected non-canonical varint to be rejected")
	}
}

func TestReadVarBytesExceedsMax(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteVarInt(&buf, 100)
	buf.Write(make([]byte, 100))

	if _, err := ReadVarBytes(&buf, 10, "test"); err == nil {
		t.Fatal("expected ReadVarBytes to reject a length over maxAllowed")
	}
}

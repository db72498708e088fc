// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"testing"
)

// TestCompactRoundTrip ensures BigToCompact(CompactToBig(x)) reproduces the
// original compact representation for a handful of well-known values,
// including the mainnet genesis bits.
func TestCompactRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []uint32{0x1d00ffff, 0x1b0404cb, 0x207fffff}
	for _, bits := range tests {
		n := CompactToBig(bits)
		got := BigToCompact(n)
		if got != bits {
			t.Errorf("round trip of %08x: got %08x", bits, got)
		}
	}
}

// TestCalcWorkMonotonic ensures a smaller target (harder difficulty)
// produces a strictly greater work value.
func TestCalcWorkMonotonic(t *testing.T) {
	t.Parallel()

	easy := CalcWork(0x1d00ffff)
	hard := CalcWork(0x1b0404cb)
	if hard.Cmp(easy) <= 0 {
		t.Fatalf("expected harder target to have more work: easy=%s hard=%s", easy, hard)
	}
}

// TestHashToBig ensures HashToBig treats the hash as a little-endian
// encoded unsigned integer.
func TestHashToBig(t *testing.T) {
	t.Parallel()

	var hash [32]byte
	hash[0] = 0x01 // least-significant byte
	got := HashToBig(&hash)
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("HashToBig: got %s, want 1", got)
	}
}

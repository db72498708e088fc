// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "math/big"

// CompactToBig converts the 32-bit compact representation of a whole number
// N to a big integer.  The representation is similar to IEEE754 floating
// point numbers: the high 8 bits hold an exponent and the low 23 bits hold
// the mantissa, with the bit above them (0x00800000) as the sign bit.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number, the inverse of CompactToBig.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// maxProof is 2^256, the implicit ceiling every block's proof is measured
// against to derive its contribution to accumulated chainwork.
var maxProof = new(big.Int).Lsh(bigOne, 256)

// bigOne is 1 represented as a big.Int, defined once to avoid repeated
// allocation.
var bigOne = big.NewInt(1)

// CalcWork calculates a work value from difficulty bits as
// floor(2^256 / (target+1)).  Blocks with a higher difficulty
// (that is, a smaller target) have a higher work value.
func CalcWork(bits uint32) *big.Int {
	target := CompactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}
	denominator := new(big.Int).Add(target, bigOne)
	return new(big.Int).Div(maxProof, denominator)
}

// HashToBig converts a chainhash.Hash into a big.Int treated as an unsigned
// 256-bit number in little-endian byte order, for comparing a block hash
// against a decoded difficulty target.
func HashToBig(hash *[32]byte) *big.Int {
	var buf [32]byte
	for i := 0; i < 32; i++ {
		buf[i] = hash[32-1-i]
	}
	return new(big.Int).SetBytes(buf[:])
}

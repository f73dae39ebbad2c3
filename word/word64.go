// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

//go:build !byteunit128

package word

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"
)

// Word is the unsigned integer holding a raw count of base units.
type Word = uint64

// Bits is the width of a Word.
const Bits = 64

// Max is the largest value a Word can hold.
var Max Word = math.MaxUint64

func From64(v uint64) Word { return v }

// To64 narrows w to a uint64. It never fails in 64-bit builds.
func To64(w Word) (uint64, bool) { return w, true }

// FromBig converts b, reporting false if b is negative or too large.
func FromBig(b *big.Int) (Word, bool) {
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}

func Big(w Word) *big.Int { return new(big.Int).SetUint64(w) }

func Add(a, b Word) (Word, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

func Sub(a, b Word) (Word, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

func Mul64(a Word, k uint64) (Word, bool) {
	hi, lo := bits.Mul64(a, k)
	return lo, hi == 0
}

// Quo64 returns a / k truncated. k must not be zero.
func Quo64(a Word, k uint64) Word { return a / k }

// Rem returns a % b. b must not be zero.
func Rem(a, b Word) Word { return a % b }

func Cmp(a, b Word) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func IsZero(w Word) bool { return w == 0 }

func String(w Word) string { return strconv.FormatUint(w, 10) }

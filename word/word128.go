// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

//go:build byteunit128

package word

import (
	"math/big"

	num "github.com/shabbyrobe/go-num"
)

// Word is the unsigned integer holding a raw count of base units.
type Word = num.U128

// Bits is the width of a Word.
const Bits = 128

// Max is the largest value a Word can hold.
var Max Word = num.MaxU128

func From64(v uint64) Word { return num.U128From64(v) }

// To64 narrows w to a uint64, reporting false if it does not fit.
func To64(w Word) (uint64, bool) {
	if !w.IsUint64() {
		return 0, false
	}
	return w.AsUint64(), true
}

// FromBig converts b, reporting false if b is negative or too large.
func FromBig(b *big.Int) (Word, bool) {
	w, inRange := num.U128FromBigInt(b)
	if !inRange {
		return Word{}, false
	}
	return w, true
}

func Big(w Word) *big.Int { return w.AsBigInt() }

func Add(a, b Word) (Word, bool) {
	sum := a.Add(b)
	return sum, !sum.LessThan(a)
}

func Sub(a, b Word) (Word, bool) {
	if b.GreaterThan(a) {
		return Word{}, false
	}
	return a.Sub(b), true
}

func Mul64(a Word, k uint64) (Word, bool) {
	if k == 0 || a.IsZero() {
		return Word{}, true
	}
	if a.GreaterThan(num.MaxU128.Quo64(k)) {
		return Word{}, false
	}
	return a.Mul64(k), true
}

// Quo64 returns a / k truncated. k must not be zero.
func Quo64(a Word, k uint64) Word { return a.Quo64(k) }

// Rem returns a % b. b must not be zero.
func Rem(a, b Word) Word { return a.Rem(b) }

func Cmp(a, b Word) int { return a.Cmp(b) }

func IsZero(w Word) bool { return w.IsZero() }

func String(w Word) string { return w.String() }

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package word provides the fixed-width unsigned integer backing every
// quantity. The width is 64 bits unless the module is built with the
// `byteunit128` tag, in which case it is 128 bits.
//
// All arithmetic helpers are checked: they report failure instead of
// wrapping around.
package word

// Pow returns base^exp, or false if the result does not fit in a Word.
func Pow(base uint64, exp int) (Word, bool) {
	w := From64(1)
	for i := 0; i < exp; i++ {
		var ok bool
		if w, ok = Mul64(w, base); !ok {
			return w, false
		}
	}
	return w, true
}

// Less reports whether a < b.
func Less(a, b Word) bool {
	return Cmp(a, b) < 0
}

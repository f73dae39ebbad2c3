// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

//go:build !byteunit128

package unit

// MaxExponent is the exponent of the largest prefix, E (exa).
const MaxExponent = 6

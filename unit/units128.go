// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

//go:build byteunit128

package unit

// MaxExponent is the exponent of the largest prefix, Y (yotta).
const MaxExponent = 8

const (
	ZB Unit = 7
	YB Unit = 8

	ZiB = binaryFlag | ZB
	YiB = binaryFlag | YB

	Zbit = bitFlag | ZB
	Ybit = bitFlag | YB

	Zibit = bitFlag | ZiB
	Yibit = bitFlag | YiB
)

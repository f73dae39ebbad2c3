// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/optable/byteunit/unit"
	"github.com/optable/byteunit/word"
)

var (
	bitsPerByte = decimal.NewFromInt(8)
	bytesPerBit = decimal.New(125, -3)

	eight      = big.NewInt(8)
	fiveEighth = big.NewInt(125)
	five       = big.NewInt(5)
)

// toBase converts magnitude units of u into base units of category c. Bits
// converted to bytes are rounded up.
func toBase(magnitude decimal.Decimal, u unit.Unit, c unit.Category) decimal.Decimal {
	d := magnitude.Mul(decimal.NewFromBigInt(word.Big(u.Multiplier()), 0))
	switch {
	case u.Category() == c:
	case c == unit.Bits:
		d = d.Mul(bitsPerByte)
	default:
		d = d.Mul(bytesPerBit).Ceil()
	}
	return d
}

// fromBase is the exact inverse of toBase: n base units of category c
// expressed in u. Dividing by 1000^e shifts the decimal exponent by 3e,
// dividing by 1024^e = 2^10e multiplies by 5^10e and shifts by 10e.
func fromBase(n *big.Int, u unit.Unit, c unit.Category) decimal.Decimal {
	n = new(big.Int).Set(n)
	var exp int32

	switch {
	case u.Category() == c:
	case c == unit.Bytes:
		n.Mul(n, eight)
	default:
		n.Mul(n, fiveEighth)
		exp -= 3
	}

	e := int64(u.Exponent())
	if u.IsBinary() {
		n.Mul(n, new(big.Int).Exp(five, big.NewInt(10*e), nil))
		exp -= int32(10 * e)
	} else {
		exp -= int32(3 * e)
	}

	return decimal.NewFromBigInt(n, exp)
}

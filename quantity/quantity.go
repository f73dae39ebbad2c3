// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package quantity implements byte and bit quantities: immutable counts of
// base units with overflow-checked arithmetic, parsing of human size strings
// ("50.84 MB", "123 KiB"), unit selection and formatting.
//
// A Quantity is parametrized by its category marker, so Byte and Bit values
// cannot be mixed by accident:
//
//	size, err := quantity.ParseByte("50.84 MB", true)
//	// size.Uint64() == 50840000
//	fmt.Println(size.AppropriateUnit(unit.Binary).StringFixed(2)) // 48.48 MiB
package quantity

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/unit"
	"github.com/optable/byteunit/word"
)

type (
	// Kind is the category marker of a Quantity. It is implemented by
	// ByteKind and BitKind only.
	Kind interface {
		category() unit.Category
	}

	ByteKind struct{}
	BitKind  struct{}
)

func (ByteKind) category() unit.Category { return unit.Bytes }
func (BitKind) category() unit.Category  { return unit.Bits }

func categoryOf[K Kind]() unit.Category {
	var k K
	return k.category()
}

// Quantity is a non-negative count of base units, bytes or bits depending on
// K. The zero value is a zero quantity.
type Quantity[K Kind] struct {
	v word.Word
}

type (
	// Byte is a count of bytes.
	Byte = Quantity[ByteKind]
	// Bit is a count of bits.
	Bit = Quantity[BitKind]
)

func New[K Kind](n uint64) Quantity[K] {
	return Quantity[K]{word.From64(n)}
}

func NewByte(n uint64) Byte { return New[ByteKind](n) }

func NewBit(n uint64) Bit { return New[BitKind](n) }

// FromWord wraps a raw Word.
func FromWord[K Kind](w word.Word) Quantity[K] {
	return Quantity[K]{w}
}

// FromBig fails with InvalidMagnitude if n is negative and Overflow if it
// does not fit the configured width.
func FromBig[K Kind](n *big.Int) (Quantity[K], error) {
	if n.Sign() < 0 {
		return Quantity[K]{}, errors.New(errors.InvalidMagnitude, n.String())
	}
	w, ok := word.FromBig(n)
	if !ok {
		return Quantity[K]{}, errors.New(errors.Overflow, n.String())
	}
	return Quantity[K]{w}, nil
}

func FromInt64[K Kind](n int64) (Quantity[K], error) {
	return FromBig[K](big.NewInt(n))
}

// WithUnit returns n units of u. The unit may belong to the other category,
// in which case the value is converted at 8 bits per byte.
func WithUnit[K Kind](n uint64, u unit.Unit) (Quantity[K], error) {
	return WithDecimal[K](decimal.NewFromUint64(n), u)
}

// WithDecimal returns magnitude units of u, rounded half away from zero to a
// whole number of base units.
func WithDecimal[K Kind](magnitude decimal.Decimal, u unit.Unit) (Quantity[K], error) {
	if !u.Valid() {
		return Quantity[K]{}, errors.New(errors.UnknownUnit, u.Symbol())
	}
	if magnitude.Sign() < 0 {
		return Quantity[K]{}, errors.New(errors.InvalidMagnitude, magnitude.String())
	}
	return fromDecimal[K](toBase(magnitude, u, categoryOf[K]()), magnitude.String()+" "+u.Symbol())
}

// WithFloat is WithDecimal for a float64 magnitude, which must be finite and
// non-negative.
func WithFloat[K Kind](magnitude float64, u unit.Unit) (Quantity[K], error) {
	d, err := decimalFromFloat(magnitude)
	if err != nil {
		return Quantity[K]{}, err
	}
	return WithDecimal[K](d, u)
}

func decimalFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Decimal{}, errors.New(errors.InvalidMagnitude, fmt.Sprint(f))
	}
	return decimal.NewFromFloat(f), nil
}

// fromDecimal rounds d, a count of base units, to the nearest integer and
// narrows it into a Word.
func fromDecimal[K Kind](d decimal.Decimal, input string) (Quantity[K], error) {
	w, ok := word.FromBig(d.Round(0).BigInt())
	if !ok {
		return Quantity[K]{}, errors.New(errors.Overflow, input)
	}
	return Quantity[K]{w}, nil
}

// Category returns unit.Bytes or unit.Bits.
func (q Quantity[K]) Category() unit.Category { return categoryOf[K]() }

// Word returns the raw count of base units.
func (q Quantity[K]) Word() word.Word { return q.v }

func (q Quantity[K]) Big() *big.Int { return word.Big(q.v) }

func (q Quantity[K]) Uint64() (uint64, error) {
	n, ok := word.To64(q.v)
	if !ok {
		return 0, errors.New(errors.Overflow, q.String())
	}
	return n, nil
}

func (q Quantity[K]) Uint32() (uint32, error) {
	n, err := q.Uint64()
	if err != nil || n > math.MaxUint32 {
		return 0, errors.New(errors.Overflow, q.String())
	}
	return uint32(n), nil
}

func (q Quantity[K]) Int64() (int64, error) {
	n, err := q.Uint64()
	if err != nil || n > math.MaxInt64 {
		return 0, errors.New(errors.Overflow, q.String())
	}
	return int64(n), nil
}

func (q Quantity[K]) Int() (int, error) {
	n, err := q.Uint64()
	if err != nil || n > math.MaxInt {
		return 0, errors.New(errors.Overflow, q.String())
	}
	return int(n), nil
}

func (q Quantity[K]) IsZero() bool { return word.IsZero(q.v) }

func (q Quantity[K]) Cmp(o Quantity[K]) int { return word.Cmp(q.v, o.v) }

func (q Quantity[K]) Equal(o Quantity[K]) bool { return q.Cmp(o) == 0 }

func (q Quantity[K]) Less(o Quantity[K]) bool { return q.Cmp(o) < 0 }

// Add fails with Overflow if the sum exceeds the configured width.
func (q Quantity[K]) Add(o Quantity[K]) (Quantity[K], error) {
	sum, ok := word.Add(q.v, o.v)
	if !ok {
		return Quantity[K]{}, errors.New(errors.Overflow, q.String()+" + "+o.String())
	}
	return Quantity[K]{sum}, nil
}

// Sub fails with Underflow if o is larger than q.
func (q Quantity[K]) Sub(o Quantity[K]) (Quantity[K], error) {
	diff, ok := word.Sub(q.v, o.v)
	if !ok {
		return Quantity[K]{}, errors.New(errors.Underflow, q.String()+" - "+o.String())
	}
	return Quantity[K]{diff}, nil
}

// Mul fails with Overflow if the product exceeds the configured width.
func (q Quantity[K]) Mul(k uint64) (Quantity[K], error) {
	product, ok := word.Mul64(q.v, k)
	if !ok {
		return Quantity[K]{}, errors.New(errors.Overflow, fmt.Sprintf("%s * %d", q, k))
	}
	return Quantity[K]{product}, nil
}

// Div truncates: the remainder is discarded.
func (q Quantity[K]) Div(k uint64) (Quantity[K], error) {
	if k == 0 {
		return Quantity[K]{}, errors.New(errors.DivideByZero, q.String()+" / 0")
	}
	return Quantity[K]{word.Quo64(q.v, k)}, nil
}

// String returns the raw count of base units.
func (q Quantity[K]) String() string { return word.String(q.v) }

// ToBits converts bytes to bits, failing with Overflow past the width.
func ToBits(b Byte) (Bit, error) {
	bits, ok := word.Mul64(b.v, 8)
	if !ok {
		return Bit{}, errors.New(errors.Overflow, b.String()+" B")
	}
	return Bit{bits}, nil
}

// ToBytes converts bits to bytes, rounding up so that no bit is lost.
func ToBytes(b Bit) Byte {
	bytes := word.Quo64(b.v, 8)
	if !word.IsZero(word.Rem(b.v, word.From64(8))) {
		bytes, _ = word.Add(bytes, word.From64(1))
	}
	return Byte{bytes}
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package unit is the static table of byte and bit units. A Unit carries its
// exponent, its base (1000 for SI-decimal prefixes, 1024 for IEC-binary
// prefixes) and its category. The table is constant data and safe for
// concurrent use.
package unit

import (
	"fmt"

	"github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/word"
)

// Unit is a member of the closed set of recognized units. The low nibble
// holds the exponent, the remaining bits flag binary units and bit units.
type Unit uint8

const (
	exponentMask Unit = 0x0f
	binaryFlag   Unit = 1 << 4
	bitFlag      Unit = 1 << 5
)

const (
	B  Unit = 0
	KB Unit = 1
	MB Unit = 2
	GB Unit = 3
	TB Unit = 4
	PB Unit = 5
	EB Unit = 6

	// The binary (IEC) prefix are powers of 1024.
	KiB = binaryFlag | KB
	MiB = binaryFlag | MB
	GiB = binaryFlag | GB
	TiB = binaryFlag | TB
	PiB = binaryFlag | PB
	EiB = binaryFlag | EB

	Bit  = bitFlag | B
	Kbit = bitFlag | KB
	Mbit = bitFlag | MB
	Gbit = bitFlag | GB
	Tbit = bitFlag | TB
	Pbit = bitFlag | PB
	Ebit = bitFlag | EB

	Kibit = bitFlag | KiB
	Mibit = bitFlag | MiB
	Gibit = bitFlag | GiB
	Tibit = bitFlag | TiB
	Pibit = bitFlag | PiB
	Eibit = bitFlag | EiB
)

// Category separates byte units from bit units.
type Category uint8

const (
	Bytes Category = iota
	Bits
)

func (c Category) String() string {
	if c == Bits {
		return "bit"
	}
	return "byte"
}

// System selects the decimal units, the binary units, or both.
type System uint8

const (
	Decimal System = iota
	Binary
	Both
)

func (s System) String() string {
	switch s {
	case Decimal:
		return "decimal"
	case Binary:
		return "binary"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("System(%d)", uint8(s))
	}
}

func (s System) MarshalText() ([]byte, error) {
	if s > Both {
		return nil, fmt.Errorf("invalid unit system %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *System) UnmarshalText(text []byte) error {
	for _, candidate := range []System{Decimal, Binary, Both} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid unit system %q, expected one of decimal, binary, both", text)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "byte":
		*c = Bytes
	case "bit":
		*c = Bits
	default:
		return fmt.Errorf("invalid unit category %q, expected byte or bit", text)
	}
	return nil
}

const prefixes = "KMGTPEZY"

// Exponent returns e such that the multiplier is Base()^e.
func (u Unit) Exponent() int { return int(u & exponentMask) }

func (u Unit) IsBinary() bool { return u&binaryFlag != 0 }

func (u Unit) IsBit() bool { return u&bitFlag != 0 }

func (u Unit) Category() Category {
	if u.IsBit() {
		return Bits
	}
	return Bytes
}

// Base returns 1024 for binary units and 1000 otherwise, including for the
// base units B and bit.
func (u Unit) Base() uint64 {
	if u.IsBinary() {
		return 1024
	}
	return 1000
}

// Valid reports whether u is a unit enabled in this build.
func (u Unit) Valid() bool {
	if u&^(exponentMask|binaryFlag|bitFlag) != 0 {
		return false
	}
	exp := u.Exponent()
	if exp > MaxExponent {
		return false
	}
	return exp > 0 || !u.IsBinary()
}

// Multiplier returns the number of base units (bytes or bits) in one u.
func (u Unit) Multiplier() word.Word {
	m, _ := word.Pow(u.Base(), u.Exponent())
	return m
}

// Base returns the unit of multiplier 1 for the category.
func (c Category) Base() Unit {
	if c == Bits {
		return Bit
	}
	return B
}

// Symbol returns the canonical rendering of the unit, e.g. "KiB" or "Mbit".
func (u Unit) Symbol() string {
	if !u.Valid() {
		return fmt.Sprintf("Unit(%d)", uint8(u))
	}

	var prefix string
	if exp := u.Exponent(); exp > 0 {
		prefix = prefixes[exp-1 : exp]
		if u.IsBinary() {
			prefix += "i"
		}
	}

	if u.IsBit() {
		return prefix + "bit"
	}
	return prefix + "B"
}

func (u Unit) String() string { return u.Symbol() }

func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, errors.New(errors.UnknownUnit, u.Symbol())
	}
	return []byte(u.Symbol()), nil
}

// UnmarshalText parses a unit token case-sensitively, a token without suffix
// names a byte unit.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text), true, Bytes)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Units returns the units of category c in system s, in ascending order of
// multiplier. The base unit comes first. Both interleaves decimal and binary
// units: KB < KiB < MB < MiB and so on.
func Units(c Category, s System) []Unit {
	base := c.Base()
	units := []Unit{base}
	for exp := Unit(1); int(exp) <= MaxExponent; exp++ {
		if s != Binary {
			units = append(units, base|exp)
		}
		if s != Decimal {
			units = append(units, base|binaryFlag|exp)
		}
	}
	return units
}

// All returns every unit enabled in this build, bytes first.
func All() []Unit {
	return append(Units(Bytes, Both), Units(Bits, Both)...)
}

// Largest returns the unit of greatest multiplier of c in s.
func Largest(c Category, s System) Unit {
	units := Units(c, s)
	return units[len(units)-1]
}

// Lookup resolves a canonical symbol.
func Lookup(symbol string) (Unit, error) {
	for _, u := range All() {
		if u.Symbol() == symbol {
			return u, nil
		}
	}
	return 0, errors.New(errors.UnknownUnit, symbol)
}

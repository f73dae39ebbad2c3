// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"github.com/optable/byteunit/unit"
	"github.com/optable/byteunit/word"
)

func systemFor(allowBinary bool) unit.System {
	if allowBinary {
		return unit.Both
	}
	return unit.Decimal
}

// candidates returns the units of q's category in s, largest multiplier
// first, keeping only units no larger than q.
func (q Quantity[K]) candidates(s unit.System) []unit.Unit {
	units := unit.Units(q.Category(), s)
	out := make([]unit.Unit, 0, len(units))
	for i := len(units) - 1; i > 0; i-- {
		if word.Cmp(q.v, units[i].Multiplier()) >= 0 {
			out = append(out, units[i])
		}
	}
	return out
}

func (q Quantity[K]) base() Adjusted[K] {
	return Adjusted[K]{fromBase(q.Big(), q.Category().Base(), q.Category()), q.Category().Base()}
}

// ExactUnit returns the largest unit dividing q evenly, with the integral
// quotient. Binary units are considered only when allowBinary is set. The
// base unit is returned when nothing larger divides q, including for zero.
func (q Quantity[K]) ExactUnit(allowBinary bool) Adjusted[K] {
	for _, u := range q.candidates(systemFor(allowBinary)) {
		if word.IsZero(word.Rem(q.v, u.Multiplier())) {
			return q.AdjustedTo(u)
		}
	}
	return q.base()
}

// RecoverableUnit returns the largest unit whose quotient, rounded to
// precision fractional digits, converts back to exactly q. The returned
// magnitude is the rounded quotient, so rendering it with precision digits
// and parsing the result yields q again.
func (q Quantity[K]) RecoverableUnit(allowBinary bool, precision int) Adjusted[K] {
	if precision < 0 {
		precision = 0
	}

	c := q.Category()
	value := q.Big()
	for _, u := range q.candidates(systemFor(allowBinary)) {
		rounded := fromBase(value, u, c).Round(int32(precision))
		if toBase(rounded, u, c).Round(0).BigInt().Cmp(value) == 0 {
			return Adjusted[K]{rounded, u}
		}
	}
	return q.base()
}

// AppropriateUnit returns the largest unit of s no larger than q, which keeps
// the integral part of the magnitude below the system base. Quantities
// beyond the largest unit are clamped to it; quantities below the first
// prefixed unit use the base unit.
func (q Quantity[K]) AppropriateUnit(s unit.System) Adjusted[K] {
	if candidates := q.candidates(s); len(candidates) > 0 {
		return q.AdjustedTo(candidates[0])
	}
	return q.base()
}

// AdjustedTo expresses q in u, which may belong to the other category.
func (q Quantity[K]) AdjustedTo(u unit.Unit) Adjusted[K] {
	return Adjusted[K]{fromBase(q.Big(), u, q.Category()), u}
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/byteunit/unit"
	"github.com/optable/byteunit/word"
)

var selectorValues = []uint64{
	0, 1, 7, 999, 1000, 1001, 1023, 1024, 1500, 1536, 2048, 15000,
	1500000, 50840000, 123456789, 1<<40 + 1, 3 << 30, 1e18, math.MaxUint64,
}

func TestExactUnit(t *testing.T) {
	cases := []struct {
		n           uint64
		allowBinary bool
		expected    string
	}{
		{0, true, "0 B"},
		{1, true, "1 B"},
		{1000, false, "1 KB"},
		{1024, true, "1 KiB"},
		{1024, false, "1024 B"},
		{1536, true, "1536 B"},
		{2048, true, "2 KiB"},
		{3 << 30, true, "3 GiB"},
		{50840000, true, "50840 KB"},
		{50840000, false, "50840 KB"},
		{1e18, false, "1 EB"},
	}

	for _, c := range cases {
		adjusted := NewByte(c.n).ExactUnit(c.allowBinary)
		assert.Equal(t, c.expected, adjusted.String(), "exact unit of %d", c.n)
	}

	assert.Equal(t, "8 Kbit", NewBit(8000).ExactUnit(false).String())
	assert.Equal(t, unit.Kbit, NewBit(8000).ExactUnit(true).Unit())
}

func TestExactUnitProperties(t *testing.T) {
	for _, n := range selectorValues {
		q := NewByte(n)
		adjusted := q.ExactUnit(true)
		assert.True(t, adjusted.Magnitude().IsInteger(), "%d", n)

		back, err := adjusted.Quantity()
		require.NoError(t, err)
		assert.True(t, back.Equal(q), "%d", n)

		// No larger unit divides q evenly.
		for _, u := range unit.Units(unit.Bytes, unit.Both) {
			if word.Less(adjusted.Unit().Multiplier(), u.Multiplier()) && !word.Less(q.Word(), u.Multiplier()) {
				assert.False(t, word.IsZero(word.Rem(q.Word(), u.Multiplier())), "%s divides %d", u, n)
			}
		}

		// Rendering at any evenly dividing unit parses back.
		for _, u := range unit.Units(unit.Bytes, unit.Both) {
			if !word.IsZero(word.Rem(q.Word(), u.Multiplier())) {
				continue
			}
			parsed, err := ParseByte(q.AdjustedTo(u).String(), true)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(q), "%d as %s", n, u)
		}
	}
}

func TestRecoverableUnit(t *testing.T) {
	q := NewByte(50840000)

	adjusted := q.RecoverableUnit(true, 2)
	assert.Equal(t, unit.MB, adjusted.Unit())
	assert.Equal(t, "50.84", adjusted.Magnitude().String())

	adjusted = q.RecoverableUnit(true, 0)
	assert.Equal(t, unit.KB, adjusted.Unit())
	assert.Equal(t, "50840", adjusted.Magnitude().String())

	adjusted = q.RecoverableUnit(true, -3)
	assert.Equal(t, unit.KB, adjusted.Unit(), "negative precision acts as zero")

	assert.Equal(t, "1.5 KiB", NewByte(1536).RecoverableUnit(true, 1).String())
	assert.Equal(t, "1.536 KB", NewByte(1536).RecoverableUnit(false, 3).String())
	assert.Equal(t, "1536 B", NewByte(1536).RecoverableUnit(false, 2).String())
	assert.Equal(t, "0 B", NewByte(0).RecoverableUnit(true, 3).String())
}

func TestRecoverableUnitRoundTrips(t *testing.T) {
	for _, n := range selectorValues {
		q := NewByte(n)
		for precision := 0; precision <= 4; precision++ {
			for _, allowBinary := range []bool{false, true} {
				adjusted := q.RecoverableUnit(allowBinary, precision)

				fixed, err := ParseByte(adjusted.StringFixed(precision), true)
				require.NoError(t, err)
				assert.True(t, fixed.Equal(q), "%d at precision %d: %s", n, precision, adjusted.StringFixed(precision))

				trimmed, err := ParseByte(adjusted.String(), true)
				require.NoError(t, err)
				assert.True(t, trimmed.Equal(q), "%d at precision %d: %s", n, precision, adjusted)
			}
		}
	}

	for _, n := range selectorValues {
		q := NewBit(n)
		adjusted := q.RecoverableUnit(true, 2)
		parsed, err := ParseBit(adjusted.StringFixed(2))
		require.NoError(t, err)
		assert.True(t, parsed.Equal(q), "%d bits", n)
	}
}

func TestAppropriateUnit(t *testing.T) {
	cases := []struct {
		n        uint64
		system   unit.System
		expected string
	}{
		{0, unit.Binary, "0 B"},
		{999, unit.Decimal, "999 B"},
		{1000, unit.Decimal, "1 KB"},
		{1023, unit.Binary, "1023 B"},
		{1023, unit.Both, "1.023 KB"},
		{1500000, unit.Decimal, "1.5 MB"},
		{1500000, unit.Binary, "1.430511474609375 MiB"},
		{1500000, unit.Both, "1.430511474609375 MiB"},
		{999999, unit.Decimal, "999.999 KB"},
	}

	for _, c := range cases {
		adjusted := NewByte(c.n).AppropriateUnit(c.system)
		assert.Equal(t, c.expected, adjusted.String(), "%d in %s", c.n, c.system)
	}

	assert.Equal(t, "1.43 MiB", NewByte(1500000).AppropriateUnit(unit.Binary).StringFixed(2))
	assert.Equal(t, "1.5 Mbit", NewBit(1500000).AppropriateUnit(unit.Decimal).String())
}

func TestAppropriateUnitRange(t *testing.T) {
	for _, system := range []unit.System{unit.Decimal, unit.Binary} {
		largest := unit.Largest(unit.Bytes, system)
		for _, n := range selectorValues {
			adjusted := NewByte(n).AppropriateUnit(system)
			if adjusted.Unit() == largest {
				continue
			}
			base := float64(1000)
			if system == unit.Binary {
				base = 1024
			}
			f, _ := adjusted.Magnitude().Float64()
			assert.Less(t, f, base, "%d in %s", n, system)
		}

		clamped := FromWord[ByteKind](word.Max).AppropriateUnit(system)
		assert.Equal(t, largest, clamped.Unit())
	}
}

func TestAdjustedTo(t *testing.T) {
	assert.Equal(t, "8 Kbit", NewByte(1000).AdjustedTo(unit.Kbit).String())
	assert.Equal(t, "1 KB", NewBit(8000).AdjustedTo(unit.KB).String())
	assert.Equal(t, "0.0078125 Kibit", NewByte(1).AdjustedTo(unit.Kibit).String())
	assert.Equal(t, "0.001 KB", NewByte(1).AdjustedTo(unit.KB).String())
	assert.Equal(t, "48.48480224609375 MiB", NewByte(50840000).AdjustedTo(unit.MiB).String())
}

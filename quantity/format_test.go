// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/unit"
)

func TestRender(t *testing.T) {
	q := NewByte(1500000)

	cases := []struct {
		name      string
		formatter Formatter
		expected  string
	}{
		{"zero value is raw", Formatter{}, "1500000"},
		{"raw ignores precision", Formatter{Mode: FormatRaw, Precision: 3}, "1500000"},
		{"base", Formatter{Mode: FormatBase}, "1500000 B"},
		{"base trimmed", Formatter{Mode: FormatBase, Precision: Trimmed}, "1500000 B"},
		{"base fixed", Formatter{Mode: FormatBase, Precision: 2}, "1500000.00 B"},
		{"base compact", Formatter{Mode: FormatBase, Compact: true}, "1500000B"},
		{"auto binary fixed", Formatter{Mode: FormatAuto, Precision: 2, System: unit.Binary}, "1.43 MiB"},
		{"auto binary trimmed", Formatter{Mode: FormatAuto, Precision: Trimmed, System: unit.Binary}, "1.430511474609375 MiB"},
		{"auto decimal rounds half away", Formatter{Mode: FormatAuto, Precision: 0, System: unit.Decimal}, "2 MB"},
		{"auto decimal compact", Formatter{Mode: FormatAuto, Precision: 1, System: unit.Decimal, Compact: true}, "1.5MB"},
		{"auto both", Formatter{Mode: FormatAuto, Precision: 3, System: unit.Both}, "1.431 MiB"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, q.Render(c.formatter))
		})
	}

	assert.Equal(t, "10 bit", NewBit(10).Render(Formatter{Mode: FormatBase}))
	assert.Equal(t, "10", NewBit(10).String())
	assert.Equal(t, "0 B", NewByte(0).Render(Formatter{Mode: FormatAuto, Precision: Trimmed}))
}

func TestAdjustedRenderKeepsUnit(t *testing.T) {
	adjusted := NewByte(50840000).ExactUnit(false)
	f := Formatter{Mode: FormatAuto, Precision: 1, System: unit.Binary}
	assert.Equal(t, "50840.0 KB", adjusted.Render(f))
}

func TestAdjustedFixedRounding(t *testing.T) {
	up, err := NewAdjusted[ByteKind](decimal.RequireFromString("2.345"), unit.MB)
	require.NoError(t, err)
	assert.Equal(t, "2.35 MB", up.StringFixed(2))
	assert.Equal(t, "2.345 MB", up.String())

	down, err := NewAdjusted[ByteKind](decimal.RequireFromString("2.344"), unit.MB)
	require.NoError(t, err)
	assert.Equal(t, "2.34 MB", down.StringFixed(2))
	assert.Equal(t, "2.34400 MB", down.StringFixed(5))
}

func TestAdjustedFormatVerbs(t *testing.T) {
	adjusted := NewByte(1500000).AppropriateUnit(unit.Binary)

	assert.Equal(t, "1.43 MiB", fmt.Sprintf("%.2v", adjusted))
	assert.Equal(t, "1.430511474609375 MiB", fmt.Sprintf("%v", adjusted))
	assert.Equal(t, "1.4MiB", fmt.Sprintf("%#.1s", adjusted))
	assert.Equal(t, "%!d(1.430511474609375 MiB)", fmt.Sprintf("%d", adjusted))
}

func TestNewAdjusted(t *testing.T) {
	adjusted, err := NewAdjustedFloat[ByteKind](1.5, unit.KiB)
	require.NoError(t, err)
	assert.Equal(t, unit.KiB, adjusted.Unit())
	q, err := adjusted.Quantity()
	require.NoError(t, err)
	requireUint64(t, 1536, q)

	for _, f := range []float64{math.NaN(), math.Inf(1), -0.5} {
		_, err = NewAdjustedFloat[ByteKind](f, unit.KB)
		assert.ErrorIs(t, err, errors.InvalidMagnitude)
	}

	_, err = NewAdjusted[BitKind](decimal.NewFromInt(1), unit.Unit(0x40))
	assert.ErrorIs(t, err, errors.UnknownUnit)

	huge, err := NewAdjusted[ByteKind](decimal.RequireFromString("1e40"), unit.EB)
	require.NoError(t, err)
	_, err = huge.Quantity()
	assert.ErrorIs(t, err, errors.Overflow)

	bits, err := NewAdjusted[BitKind](decimal.RequireFromString("1.5"), unit.KB)
	require.NoError(t, err)
	q2, err := bits.Quantity()
	require.NoError(t, err)
	requireUint64(t, 12000, q2)
}

func TestModeText(t *testing.T) {
	for _, mode := range []Mode{FormatRaw, FormatBase, FormatAuto} {
		text, err := mode.MarshalText()
		require.NoError(t, err)

		var parsed Mode
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, mode, parsed)
	}

	var m Mode
	assert.Error(t, m.UnmarshalText([]byte("fancy")))
	_, err := Mode(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestFormatterZeroPrecision(t *testing.T) {
	q := NewByte(1536)

	assert.Equal(t, "1536", q.Render(Formatter{}))
	assert.Equal(t, "2 KiB", q.Render(Formatter{Mode: FormatAuto, System: unit.Binary}))
	assert.Equal(t, "2 KB", q.Render(Formatter{Mode: FormatAuto}))
	assert.Equal(t, "1.5 KiB", q.Render(Formatter{Mode: FormatAuto, System: unit.Binary, Precision: Trimmed}))
	assert.Equal(t, "1.536 KB", q.Render(Formatter{Mode: FormatAuto, Precision: Trimmed}))
}

func TestAdjustedFormatWidth(t *testing.T) {
	kib := NewByte(10000).AdjustedTo(unit.KiB)
	kb := NewByte(10000).AdjustedTo(unit.KB)

	assert.Equal(t, "  9.77 KiB", fmt.Sprintf("%10.2v", kib))
	assert.Equal(t, "9.77 KiB  |", fmt.Sprintf("%-10.2v|", kib))
	assert.Equal(t, "9.765625 KiB", fmt.Sprintf("%3v", kib))

	// '+' lines units up in a column.
	assert.Equal(t, "  9.77 KiB", fmt.Sprintf("%+10.2v", kib))
	assert.Equal(t, " 10.00  KB", fmt.Sprintf("%+10.2v", kb))
	assert.Equal(t, "10  KB", fmt.Sprintf("%+v", kb))

	assert.Equal(t, "9.8KiB      |", fmt.Sprintf("%#-12.1v|", kib))
}

func TestQuantityFormatVerbs(t *testing.T) {
	q := NewByte(3211776)

	assert.Equal(t, "3211776", fmt.Sprintf("%v", q))
	assert.Equal(t, "3211776", fmt.Sprintf("%d", q))
	assert.Equal(t, "   3211776", fmt.Sprintf("%10d", q))
	assert.Equal(t, "3211776   |", fmt.Sprintf("%-10s|", q))
	assert.Equal(t, "%!x(3211776)", fmt.Sprintf("%x", q))

	// The alternate form picks a decimal unit that parses back to q.
	assert.Equal(t, "3211.776 KB", fmt.Sprintf("%#v", q))
	assert.Equal(t, "3.211776 MB", fmt.Sprintf("%#.6v", q))
	assert.Equal(t, "3211776 B", fmt.Sprintf("%#.0v", q))
	assert.Equal(t, "  3211.776 KB", fmt.Sprintf("%#13v", q))
	assert.Equal(t, "3211.776  KB |", fmt.Sprintf("%#-+13v|", q))

	parsed, err := ParseByte(fmt.Sprintf("%#v", q), true)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(q))

	assert.Equal(t, "1.5 Kbit", fmt.Sprintf("%#v", NewBit(1500)))
	assert.Equal(t, "0 B", fmt.Sprintf("%#v", NewByte(0)))
}

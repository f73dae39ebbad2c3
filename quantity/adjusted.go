// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/unit"
)

// Adjusted is a quantity expressed as a decimal magnitude of a unit, such as
// 50.84 MB. It is produced by the unit selectors and exists to be rendered or
// converted back; it is not meant to be stored.
type Adjusted[K Kind] struct {
	magnitude decimal.Decimal
	unit      unit.Unit
}

type (
	AdjustedByte = Adjusted[ByteKind]
	AdjustedBit  = Adjusted[BitKind]
)

// NewAdjusted fails with InvalidMagnitude for negative magnitudes and
// UnknownUnit for units not enabled in this build.
func NewAdjusted[K Kind](magnitude decimal.Decimal, u unit.Unit) (Adjusted[K], error) {
	if !u.Valid() {
		return Adjusted[K]{}, errors.New(errors.UnknownUnit, u.Symbol())
	}
	if magnitude.Sign() < 0 {
		return Adjusted[K]{}, errors.New(errors.InvalidMagnitude, magnitude.String())
	}
	return Adjusted[K]{magnitude, u}, nil
}

// NewAdjustedFloat validates that magnitude is finite and non-negative.
func NewAdjustedFloat[K Kind](magnitude float64, u unit.Unit) (Adjusted[K], error) {
	d, err := decimalFromFloat(magnitude)
	if err != nil {
		return Adjusted[K]{}, err
	}
	return NewAdjusted[K](d, u)
}

func (a Adjusted[K]) Magnitude() decimal.Decimal { return a.magnitude }

func (a Adjusted[K]) Unit() unit.Unit { return a.unit }

// Quantity converts back to base units, rounding half away from zero. A bit
// magnitude converted to bytes is rounded up.
func (a Adjusted[K]) Quantity() (Quantity[K], error) {
	return fromDecimal[K](toBase(a.magnitude, a.unit, categoryOf[K]()), a.String())
}

// String renders the magnitude without trailing zeros, e.g. "1.5 KiB".
func (a Adjusted[K]) String() string {
	return a.render(Trimmed, false)
}

// StringFixed renders the magnitude with exactly precision fractional digits.
func (a Adjusted[K]) StringFixed(precision int) string {
	return a.render(precision, false)
}

// Render uses the precision and separator of f with the stored unit.
func (a Adjusted[K]) Render(f Formatter) string {
	return a.render(f.Precision, f.Compact)
}

func (a Adjusted[K]) magnitudeText(precision int) string {
	if precision < 0 {
		return a.magnitude.String()
	}
	return a.magnitude.StringFixed(int32(precision))
}

func (a Adjusted[K]) render(precision int, compact bool) string {
	if compact {
		return a.magnitudeText(precision) + a.unit.Symbol()
	}
	return a.magnitudeText(precision) + " " + a.unit.Symbol()
}

// Format implements fmt.Formatter. %v and %s honor the precision ("%.2v")
// and the width, right-justified unless the '-' flag is given. The '#' flag
// drops the space before the unit and the '+' flag pads it so that units
// line up in a column ("%+10.2v" gives "  9.77 KiB" and " 10.00  KB").
func (a Adjusted[K]) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		precision, ok := s.Precision()
		if !ok {
			precision = Trimmed
		}
		writeSized(s, a.magnitudeText(precision), a.unit.Symbol(), s.Flag('#'))
	default:
		fmt.Fprintf(s, "%%!%c(%s)", verb, a.String())
	}
}

// unitColumn is the width '+' aligns unit symbols to.
const unitColumn = 4

func writeSized(s fmt.State, magnitude, symbol string, compact bool) {
	sep := " "
	switch {
	case compact:
		sep = ""
	case s.Flag('+') && len(symbol) < unitColumn:
		sep = strings.Repeat(" ", unitColumn-len(symbol))
	}
	writePadded(s, magnitude+sep+symbol)
}

// writePadded writes text padded with spaces to the width of s.
func writePadded(s fmt.State, text string) {
	width, ok := s.Width()
	if !ok || width <= len(text) {
		io.WriteString(s, text)
		return
	}

	pad := strings.Repeat(" ", width-len(text))
	if s.Flag('-') {
		io.WriteString(s, text+pad)
	} else {
		io.WriteString(s, pad+text)
	}
}

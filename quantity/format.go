// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"fmt"
	"strings"

	"github.com/optable/byteunit/unit"
)

// Mode selects how a Formatter renders a Quantity.
type Mode uint8

const (
	// FormatRaw renders the count of base units without unit, "50840000".
	FormatRaw Mode = iota
	// FormatBase renders the count of base units with the base unit
	// symbol, "50840000 B".
	FormatBase
	// FormatAuto renders in the appropriate unit of the system, "48.48 MiB".
	FormatAuto
)

var modeNames = []string{"raw", "base", "auto"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid format mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if name == string(text) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("invalid format mode %q, expected one of %s", text, strings.Join(modeNames, ", "))
}

// Trimmed as a precision renders magnitudes without trailing zeros.
const Trimmed = -1

// Formatter renders quantities. The zero value renders raw counts.
//
// Precision is not defaulted: a zero Precision renders whole magnitudes, so
// Formatter{Mode: FormatAuto, System: unit.Binary} renders 1536 B as
// "2 KiB". Set Precision to Trimmed to keep every significant digit.
type Formatter struct {
	Mode Mode
	// Precision is the number of fractional digits, or Trimmed. Rounding is
	// half away from zero.
	Precision int
	// System is the unit system FormatAuto picks from.
	System unit.System
	// Compact drops the space between the magnitude and the unit.
	Compact bool
}

// Render formats q according to f.
func (q Quantity[K]) Render(f Formatter) string {
	switch f.Mode {
	case FormatBase:
		s := q.String()
		if f.Precision > 0 {
			s += "." + strings.Repeat("0", f.Precision)
		}
		if !f.Compact {
			s += " "
		}
		return s + q.Category().Base().Symbol()
	case FormatAuto:
		return q.AppropriateUnit(f.System).Render(f)
	default:
		return q.String()
	}
}

// DefaultRecoverablePrecision is the precision of %#v on a Quantity.
const DefaultRecoverablePrecision = 3

// Format implements fmt.Formatter. %v, %s and %d print the count of base
// units. %#v prints q in the largest decimal unit recoverable at the
// precision, DefaultRecoverablePrecision unless given, e.g. "3211.776 KB"
// and "3.211776 MB" with "%#.6v". The width and the '-' and '+' flags apply
// as for Adjusted.
func (q Quantity[K]) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('#'):
		precision, ok := s.Precision()
		if !ok {
			precision = DefaultRecoverablePrecision
		}
		a := q.RecoverableUnit(false, precision)
		writeSized(s, a.magnitudeText(Trimmed), a.unit.Symbol(), false)
	case verb == 'v', verb == 's', verb == 'd':
		writePadded(s, q.String())
	default:
		fmt.Fprintf(s, "%%!%c(%s)", verb, q.String())
	}
}

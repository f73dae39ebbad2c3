// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/unit"
)

// Parse reads a human size string: a non-negative decimal literal, optional
// whitespace and an optional unit token, e.g. "15000", "15 KB", "50.84MB" or
// "1.5 Gibit". The literal accepts at most one decimal point with digits on
// both sides, no sign, no exponent and no digit grouping.
//
// Without a unit the literal counts base units and must be integral, otherwise
// Parse fails with FractionalBaseUnit. Unit tokens are resolved with
// unit.Parse, using the category of K when the token has no suffix. Bit
// quantities are always parsed case-sensitively.
//
// The literal times the unit multiplier is rounded half away from zero and
// fails with Overflow if it does not fit the configured width.
func Parse[K Kind](input string, caseSensitive bool) (Quantity[K], error) {
	c := categoryOf[K]()
	if c == unit.Bits {
		caseSensitive = true
	}

	literal, token, err := split(input)
	if err != nil {
		return Quantity[K]{}, err
	}

	magnitude, err := decimal.NewFromString(literal)
	if err != nil {
		return Quantity[K]{}, errors.New(errors.InvalidNumber, input)
	}

	u := c.Base()
	if token == "" {
		if !magnitude.IsInteger() {
			return Quantity[K]{}, errors.New(errors.FractionalBaseUnit, input)
		}
	} else if u, err = unit.Parse(token, caseSensitive, c); err != nil {
		return Quantity[K]{}, errors.New(errors.UnknownUnit, input)
	}

	return fromDecimal[K](toBase(magnitude, u, c), input)
}

// ParseByte parses a byte quantity.
func ParseByte(input string, caseSensitive bool) (Byte, error) {
	return Parse[ByteKind](input, caseSensitive)
}

// ParseBit parses a bit quantity. Case-insensitive parsing is not offered
// for bits since "b" and "B" would be ambiguous.
func ParseBit(input string) (Bit, error) {
	return Parse[BitKind](input, true)
}

// split separates the numeric literal from the unit token.
func split(input string) (literal, token string, err error) {
	s := strings.TrimSpace(input)

	end := 0
	for end < len(s) && (isDigit(s[end]) || s[end] == '.') {
		end++
	}
	literal = s[:end]
	token = strings.TrimLeftFunc(s[end:], unicode.IsSpace)

	if !validLiteral(literal) || strings.ContainsAny(token, "0123456789.+-") {
		return "", "", errors.New(errors.InvalidNumber, input)
	}
	return literal, token, nil
}

func validLiteral(literal string) bool {
	if literal == "" || !isDigit(literal[0]) || !isDigit(literal[len(literal)-1]) {
		return false
	}
	return strings.Count(literal, ".") <= 1
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

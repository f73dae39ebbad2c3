// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package unit

import (
	"strings"

	"github.com/optable/byteunit/errors"
)

// Parse resolves a unit token such as "K", "MB", "MiB", "Gb", "Tibit" or
// "bits". The token is a prefix letter, an optional binary marker "i" and a
// suffix: "B" for bytes, "b", "bit" or "bits" for bits. A token without suffix
// takes the category def.
//
// When caseSensitive is true the prefix must be uppercase, the binary marker
// and "bit" lowercase. Otherwise they match in any case. In both modes "B"
// and "b" keep their literal meaning, so "kb" is a kilobit and "kB" a kilobyte
// when case is ignored.
func Parse(token string, caseSensitive bool, def Category) (Unit, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return 0, errors.New(errors.UnknownUnit, token)
	}

	var u Unit
	rest := s
	if exp := prefixExponent(s[0], caseSensitive); exp > 0 {
		u, rest = Unit(exp), s[1:]
		if len(rest) > 0 && (rest[0] == 'i' || (!caseSensitive && rest[0] == 'I')) {
			u, rest = u|binaryFlag, rest[1:]
		}
	}

	switch {
	case rest == "" && u != 0:
		if def == Bits {
			u |= bitFlag
		}
	case rest == "B":
	case rest == "b", matchBit(rest, caseSensitive):
		u |= bitFlag
	default:
		return 0, errors.New(errors.UnknownUnit, token)
	}

	return u, nil
}

func prefixExponent(c byte, caseSensitive bool) int {
	if !caseSensitive && 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	if i := strings.IndexByte(prefixes[:MaxExponent], c); i >= 0 {
		return i + 1
	}
	return 0
}

func matchBit(suffix string, caseSensitive bool) bool {
	if caseSensitive {
		return suffix == "bit" || suffix == "bits"
	}
	return strings.EqualFold(suffix, "bit") || strings.EqualFold(suffix, "bits")
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// textPrecision is the number of fractional digits used by MarshalText. The
// recoverable unit guarantees the text parses back to the same value.
const textPrecision = 3

var (
	_ pflag.Value    = (*Byte)(nil)
	_ pflag.Value    = (*Bit)(nil)
	_ json.Marshaler = Byte{}
	_ yaml.Marshaler = Byte{}
)

// MarshalText renders q in the largest unit, decimal or binary, that
// represents it exactly with up to three fractional digits.
func (q Quantity[K]) MarshalText() ([]byte, error) {
	return []byte(q.RecoverableUnit(true, textPrecision).String()), nil
}

// UnmarshalText parses text case-sensitively.
func (q *Quantity[K]) UnmarshalText(text []byte) error {
	parsed, err := Parse[K](string(text), true)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func (q Quantity[K]) MarshalJSON() ([]byte, error) {
	text, err := q.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON accepts either a string ("1.5 KiB") or an integer count of
// base units.
func (q *Quantity[K]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return q.UnmarshalText([]byte(s))
	}

	return q.UnmarshalText(data)
}

func (q Quantity[K]) MarshalYAML() (interface{}, error) {
	text, err := q.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

func (q *Quantity[K]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a %s quantity, got a non scalar value", node.Line, q.Category())
	}
	return q.UnmarshalText([]byte(node.Value))
}

// Set implements pflag.Value.
func (q *Quantity[K]) Set(s string) error {
	return q.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (q *Quantity[K]) Type() string {
	return q.Category().String()
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"fmt"

	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

// Profile is a named set of parsing and rendering preferences.
type Profile struct {
	Mode          quantity.Mode `json:"mode" yaml:"mode"`
	Precision     int           `json:"precision" yaml:"precision"`
	System        unit.System   `json:"system" yaml:"system"`
	Compact       bool          `json:"compact" yaml:"compact"`
	CaseSensitive bool          `json:"case_sensitive" yaml:"case_sensitive"`
}

// DefaultProfile renders in binary units with two fractional digits.
var DefaultProfile = Profile{
	Mode:      quantity.FormatAuto,
	Precision: 2,
	System:    unit.Binary,
}

func (p Profile) Validate() error {
	if p.Precision < quantity.Trimmed {
		return fmt.Errorf("invalid precision %d", p.Precision)
	}
	if _, err := p.Mode.MarshalText(); err != nil {
		return err
	}
	if _, err := p.System.MarshalText(); err != nil {
		return err
	}
	return nil
}

func (p Profile) Formatter() quantity.Formatter {
	return quantity.Formatter{
		Mode:      p.Mode,
		Precision: p.Precision,
		System:    p.System,
		Compact:   p.Compact,
	}
}

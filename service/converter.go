// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	berrors "github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

// ErrInvalidRequest is returned for requests that are not well formed, as
// opposed to quantities that fail to convert.
var ErrInvalidRequest = errors.New("Invalid request")

// Strategy selects the unit picked by Select.
type Strategy uint8

const (
	// Exact picks the largest unit dividing the value evenly.
	Exact Strategy = iota
	// Recoverable picks the largest unit that renders back to the same
	// value at the requested precision.
	Recoverable
	// Appropriate picks the largest unit no larger than the value.
	Appropriate
)

var strategyNames = []string{"exact", "recoverable", "appropriate"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func (s Strategy) MarshalText() ([]byte, error) {
	if int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("%w: strategy %d", ErrInvalidRequest, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	for i, name := range strategyNames {
		if name == string(text) {
			*s = Strategy(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown strategy %q", ErrInvalidRequest, text)
}

type (
	ParseRequest struct {
		Input         string        `json:"input"`
		Category      unit.Category `json:"category"`
		CaseSensitive bool          `json:"case_sensitive,omitempty"`
	}

	// ParseResponse carries the count of base units as a decimal string, it
	// may not fit a json number.
	ParseResponse struct {
		Value     string        `json:"value"`
		Category  unit.Category `json:"category"`
		Formatted string        `json:"formatted"`
	}

	// FormatRequest renders Value, a count of base units or any size
	// expression of the category.
	FormatRequest struct {
		Value     string        `json:"value"`
		Category  unit.Category `json:"category"`
		Mode      quantity.Mode `json:"mode"`
		Precision int           `json:"precision"`
		System    unit.System   `json:"system"`
		Compact   bool          `json:"compact,omitempty"`
	}

	FormatResponse struct {
		Formatted string `json:"formatted"`
	}

	SelectRequest struct {
		Value       string        `json:"value"`
		Category    unit.Category `json:"category"`
		Strategy    Strategy      `json:"strategy"`
		AllowBinary bool          `json:"allow_binary,omitempty"`
		Precision   int           `json:"precision,omitempty"`
		System      unit.System   `json:"system"`
	}

	SelectResponse struct {
		Magnitude string    `json:"magnitude"`
		Unit      unit.Unit `json:"unit"`
		Formatted string    `json:"formatted"`
	}
)

// Converter exposes the quantity operations to remote callers. It is safe for
// concurrent use and implements prometheus.Collector.
type Converter struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewConverter() *Converter {
	return &Converter{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "byteunit",
			Subsystem: "converter",
			Name:      "requests_total",
			Help:      "Total number of conversion requests by operation.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "byteunit",
			Subsystem: "converter",
			Name:      "failures_total",
			Help:      "Total number of failed conversion requests by operation and reason.",
		}, []string{"operation", "reason"}),
	}
}

func (c *Converter) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.failures.Describe(ch)
}

func (c *Converter) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.failures.Collect(ch)
}

func (c *Converter) observe(ctx context.Context, op string, err error) {
	c.requests.WithLabelValues(op).Inc()
	if err == nil {
		return
	}

	reason := "invalid_request"
	if code, ok := berrors.CodeOf(err); ok {
		reason = code.Error()
	}
	c.failures.WithLabelValues(op, reason).Inc()
	zerolog.Ctx(ctx).Debug().Err(err).Str("operation", op).Msg("conversion failed")
}

func checkCategory(c unit.Category) error {
	if c != unit.Bytes && c != unit.Bits {
		return fmt.Errorf("%w: category %d", ErrInvalidRequest, uint8(c))
	}
	return nil
}

// Parse converts a size expression to a count of base units.
func (c *Converter) Parse(ctx context.Context, req *ParseRequest) (resp *ParseResponse, err error) {
	defer func() { c.observe(ctx, "parse", err) }()

	if err := checkCategory(req.Category); err != nil {
		return nil, err
	}
	if req.Category == unit.Bits {
		return parse[quantity.BitKind](req)
	}
	return parse[quantity.ByteKind](req)
}

func parse[K quantity.Kind](req *ParseRequest) (*ParseResponse, error) {
	q, err := quantity.Parse[K](req.Input, req.CaseSensitive)
	if err != nil {
		return nil, err
	}

	text, err := q.MarshalText()
	if err != nil {
		return nil, err
	}

	return &ParseResponse{
		Value:     q.String(),
		Category:  q.Category(),
		Formatted: string(text),
	}, nil
}

// Format renders a quantity with a Formatter built from the request.
func (c *Converter) Format(ctx context.Context, req *FormatRequest) (resp *FormatResponse, err error) {
	defer func() { c.observe(ctx, "format", err) }()

	if err := checkCategory(req.Category); err != nil {
		return nil, err
	}

	f := quantity.Formatter{
		Mode:      req.Mode,
		Precision: req.Precision,
		System:    req.System,
		Compact:   req.Compact,
	}
	if _, err := f.Mode.MarshalText(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if _, err := f.System.MarshalText(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if f.Precision < quantity.Trimmed {
		return nil, fmt.Errorf("%w: precision %d", ErrInvalidRequest, f.Precision)
	}

	if req.Category == unit.Bits {
		return format[quantity.BitKind](req.Value, f)
	}
	return format[quantity.ByteKind](req.Value, f)
}

func format[K quantity.Kind](value string, f quantity.Formatter) (*FormatResponse, error) {
	q, err := quantity.Parse[K](value, true)
	if err != nil {
		return nil, err
	}
	return &FormatResponse{Formatted: q.Render(f)}, nil
}

// Select expresses a quantity in the unit picked by the requested Strategy.
func (c *Converter) Select(ctx context.Context, req *SelectRequest) (resp *SelectResponse, err error) {
	defer func() { c.observe(ctx, "select", err) }()

	if err := checkCategory(req.Category); err != nil {
		return nil, err
	}
	if _, err := req.Strategy.MarshalText(); err != nil {
		return nil, err
	}
	if _, err := req.System.MarshalText(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	if req.Category == unit.Bits {
		return selectUnit[quantity.BitKind](req)
	}
	return selectUnit[quantity.ByteKind](req)
}

func selectUnit[K quantity.Kind](req *SelectRequest) (*SelectResponse, error) {
	q, err := quantity.Parse[K](req.Value, true)
	if err != nil {
		return nil, err
	}

	var adjusted quantity.Adjusted[K]
	switch req.Strategy {
	case Exact:
		adjusted = q.ExactUnit(req.AllowBinary)
	case Recoverable:
		adjusted = q.RecoverableUnit(req.AllowBinary, req.Precision)
	default:
		adjusted = q.AppropriateUnit(req.System)
	}

	return &SelectResponse{
		Magnitude: adjusted.Magnitude().String(),
		Unit:      adjusted.Unit(),
		Formatted: adjusted.String(),
	}, nil
}

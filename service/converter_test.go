// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berrors "github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

func TestConverterParse(t *testing.T) {
	c := NewConverter()
	ctx := context.Background()

	resp, err := c.Parse(ctx, &ParseRequest{Input: "50.84 MB"})
	require.NoError(t, err)
	assert.Equal(t, &ParseResponse{Value: "50840000", Category: unit.Bytes, Formatted: "50.84 MB"}, resp)

	resp, err = c.Parse(ctx, &ParseRequest{Input: "1 KiB", Category: unit.Bits})
	require.NoError(t, err)
	assert.Equal(t, "8192", resp.Value)
	assert.Equal(t, unit.Bits, resp.Category)

	resp, err = c.Parse(ctx, &ParseRequest{Input: "2 kib"})
	require.NoError(t, err)
	assert.Equal(t, "256", resp.Value)

	_, err = c.Parse(ctx, &ParseRequest{Input: "2 kib", CaseSensitive: true})
	assert.ErrorIs(t, err, berrors.UnknownUnit)

	_, err = c.Parse(ctx, &ParseRequest{Input: "1", Category: unit.Category(7)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConverterFormat(t *testing.T) {
	c := NewConverter()
	ctx := context.Background()

	resp, err := c.Format(ctx, &FormatRequest{
		Value:     "50840000",
		Mode:      quantity.FormatAuto,
		Precision: 2,
		System:    unit.Binary,
	})
	require.NoError(t, err)
	assert.Equal(t, "48.48 MiB", resp.Formatted)

	resp, err = c.Format(ctx, &FormatRequest{Value: "1 KB", Mode: quantity.FormatBase})
	require.NoError(t, err)
	assert.Equal(t, "1000 B", resp.Formatted)

	_, err = c.Format(ctx, &FormatRequest{Value: "1", Precision: -3})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Format(ctx, &FormatRequest{Value: "1", Mode: quantity.Mode(4)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Format(ctx, &FormatRequest{Value: "1.5"})
	assert.ErrorIs(t, err, berrors.FractionalBaseUnit)
}

func TestConverterSelect(t *testing.T) {
	c := NewConverter()
	ctx := context.Background()

	resp, err := c.Select(ctx, &SelectRequest{Value: "3072", Strategy: Exact, AllowBinary: true})
	require.NoError(t, err)
	assert.Equal(t, &SelectResponse{Magnitude: "3", Unit: unit.KiB, Formatted: "3 KiB"}, resp)

	resp, err = c.Select(ctx, &SelectRequest{Value: "1536", Strategy: Exact, AllowBinary: true})
	require.NoError(t, err)
	assert.Equal(t, &SelectResponse{Magnitude: "1536", Unit: unit.B, Formatted: "1536 B"}, resp)

	resp, err = c.Select(ctx, &SelectRequest{Value: "1000000", Strategy: Exact})
	require.NoError(t, err)
	assert.Equal(t, "1", resp.Magnitude)
	assert.Equal(t, unit.MB, resp.Unit)
	assert.Equal(t, "1 MB", resp.Formatted)

	resp, err = c.Select(ctx, &SelectRequest{Value: "1500000", Strategy: Recoverable, Precision: 1})
	require.NoError(t, err)
	assert.Equal(t, "1.5 MB", resp.Formatted)

	resp, err = c.Select(ctx, &SelectRequest{Value: "4096", Category: unit.Bits, Strategy: Appropriate, System: unit.Binary})
	require.NoError(t, err)
	assert.Equal(t, "4 Kibit", resp.Formatted)

	_, err = c.Select(ctx, &SelectRequest{Value: "1", Strategy: Strategy(9)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestStrategyText(t *testing.T) {
	var s Strategy
	require.NoError(t, json.Unmarshal([]byte(`"recoverable"`), &s))
	assert.Equal(t, Recoverable, s)

	b, err := json.Marshal(Appropriate)
	require.NoError(t, err)
	assert.Equal(t, `"appropriate"`, string(b))

	assert.ErrorIs(t, s.UnmarshalText([]byte("best")), ErrInvalidRequest)
}

func TestConverterMetrics(t *testing.T) {
	c := NewConverter()
	ctx := context.Background()

	_, _ = c.Parse(ctx, &ParseRequest{Input: "1 KB"})
	_, _ = c.Parse(ctx, &ParseRequest{Input: "1 XB"})
	_, _ = c.Parse(ctx, &ParseRequest{Input: "16 EiB"})

	expected := `
# HELP byteunit_converter_requests_total Total number of conversion requests by operation.
# TYPE byteunit_converter_requests_total counter
byteunit_converter_requests_total{operation="parse"} 3
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "byteunit_converter_requests_total"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("parse", "Unknown unit")))
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package quantity

import (
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/optable/byteunit/errors"
)

func TestText(t *testing.T) {
	cases := map[uint64]string{
		0:        "0 B",
		1536:     "1.5 KiB",
		1048576:  "1 MiB",
		50840000: "50.84 MB",
		1001:     "1.001 KB",
		1000001:  "976.563 KiB",
	}

	for n, expected := range cases {
		text, err := NewByte(n).MarshalText()
		require.NoError(t, err)
		assert.Equal(t, expected, string(text))

		var back Byte
		require.NoError(t, back.UnmarshalText(text))
		requireUint64(t, n, back)
	}

	text, err := NewBit(8192).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "8 Kibit", string(text))
}

type limits struct {
	Upload   Byte `json:"upload" yaml:"upload"`
	Download Bit  `json:"download" yaml:"download"`
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(limits{Upload: NewByte(1536), Download: NewBit(1500000)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"upload":"1.5 KiB","download":"1.5 Mbit"}`, string(data))

	var l limits
	require.NoError(t, json.Unmarshal([]byte(`{"upload": 2048, "download": "1 Kb"}`), &l))
	requireUint64(t, 2048, l.Upload)
	requireUint64(t, 1000, l.Download)

	require.NoError(t, json.Unmarshal([]byte(`{"upload": null}`), &l))
	requireUint64(t, 2048, l.Upload)

	err = json.Unmarshal([]byte(`{"upload": 1.5}`), &l)
	assert.ErrorIs(t, err, errors.FractionalBaseUnit)

	err = json.Unmarshal([]byte(`{"upload": "12 XB"}`), &l)
	assert.ErrorIs(t, err, errors.UnknownUnit)

	err = json.Unmarshal([]byte(`{"upload": -1}`), &l)
	assert.ErrorIs(t, err, errors.InvalidNumber)
}

func TestYAML(t *testing.T) {
	data, err := yaml.Marshal(limits{Upload: NewByte(1 << 20), Download: NewBit(1000)})
	require.NoError(t, err)
	assert.Equal(t, "upload: 1 MiB\ndownload: 1 Kbit\n", string(data))

	var l limits
	require.NoError(t, yaml.Unmarshal([]byte("upload: 64 KiB\ndownload: 1024\n"), &l))
	requireUint64(t, 65536, l.Upload)
	requireUint64(t, 1024, l.Download)

	assert.Error(t, yaml.Unmarshal([]byte("upload: [1, 2]\n"), &l))
	assert.Error(t, yaml.Unmarshal([]byte("upload: 1.5\n"), &l))
}

func TestFlag(t *testing.T) {
	var (
		buffer = NewByte(4096)
		rate   Bit
	)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Var(&buffer, "buffer", "buffer size")
	flags.Var(&rate, "rate", "bandwidth")

	assert.Equal(t, "byte", flags.Lookup("buffer").Value.Type())
	assert.Equal(t, "bit", flags.Lookup("rate").Value.Type())
	assert.Equal(t, "4096", flags.Lookup("buffer").DefValue)

	require.NoError(t, flags.Parse([]string{"--buffer", "1.5 KiB", "--rate=100 Mb"}))
	requireUint64(t, 1536, buffer)
	requireUint64(t, 100000000, rate)

	assert.Error(t, flags.Parse([]string{"--buffer", "lots"}))
}

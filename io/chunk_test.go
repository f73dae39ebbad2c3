// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/byteunit/quantity"
)

func assertChunkReaderRoundTrip(t *testing.T, framer FrameReader, chunker ChunkReader) {
	expected, err := ReadAllFrames(framer)
	assert.NoError(t, err)

	readers, err := ReadAllChunks(chunker)
	assert.NoError(t, err)

	actual, err := ReadAllFrames(MultiFrameReader(readers...))
	assert.NoError(t, err)

	assert.Equal(t, expected, actual)
}

var chunkSize = quantity.NewByte(128)

func assertNewLineDelimitedChunker(t *testing.T, payload string) {
	framer := NewNewlineDelimitedFrameReader(bytes.NewBufferString(payload), true)
	chunker, err := NewNewlineDelimitedChunkReader(bytes.NewBufferString(payload), chunkSize)
	assert.NoError(t, err)
	assertChunkReaderRoundTrip(t, framer, chunker)
}

func TestEmptyNewLineDelimitedChunker(t *testing.T) {
	assertNewLineDelimitedChunker(t, "")
}

func TestOneNewLineDelimitedChunker(t *testing.T) {
	assertNewLineDelimitedChunker(t, "42 KiB")
}

func TestExtraNewLineDelimitedChunker(t *testing.T) {
	assertNewLineDelimitedChunker(t, "42 KiB\n")
}

func TestNewLineDelimitedChunker(t *testing.T) {
	lines := `
1 KiB
50.84 MB
1.5 GiB
1024
4 Kbit
3 TB
77.25 MiB
12 EB
0
999999999999
`
	assertNewLineDelimitedChunker(t, strings.Repeat(lines, 20))
}

func TestNewLineDelimitedChunkerKeepsLastLine(t *testing.T) {
	assertNewLineDelimitedChunker(t, strings.Repeat("1 KB\n", 40)+"2 KB")
}

func TestNewLineDelimitedChunkerInvalidArguments(t *testing.T) {
	_, err := NewNewlineDelimitedChunkReader(strings.NewReader(""), quantity.NewByte(0))
	assert.ErrorIs(t, err, InvalidArgErr)

	_, err = NewNewlineDelimitedChunkReader(nil, chunkSize)
	assert.ErrorIs(t, err, InvalidArgErr)
}

func TestNewLineDelimitedChunkerFrameLargerThanChunk(t *testing.T) {
	chunker, err := NewNewlineDelimitedChunkReader(strings.NewReader(strings.Repeat("1", 200)), chunkSize)
	require.NoError(t, err)

	_, err = chunker.NextChunk()
	assert.ErrorIs(t, err, NoFrameFoundErr)
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/optable/byteunit/quantity"
)

type (
	// ChunkReader breaks a stream into chunks amenable to parallel parsing.
	ChunkReader interface {
		// NextChunk returns a FrameReader.
		NextChunk() (FrameReader, error)
	}
)

var InvalidArgErr = errors.New("Invalid argument")

// NewNewlineDelimitedChunkReader returns a ChunkReader that breaks chunks of
// frames delimited by newlines. The chunkSize must be large enough to hold a
// full frame, like the buffer of a bufio.Scanner.
//
// The chunker does not look for the `\r` rune, the frame readers it returns
// do.
func NewNewlineDelimitedChunkReader(reader io.Reader, chunkSize quantity.Byte) (ChunkReader, error) {
	size, err := chunkSize.Int()
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %s", InvalidArgErr, chunkSize)
	}

	if reader == nil {
		return nil, InvalidArgErr
	}

	return &delimitedChunker{
		r:         reader,
		delimiter: '\n',
		chunkSize: size,
	}, nil
}

type delimitedChunker struct {
	r         io.Reader
	delimiter byte
	chunkSize int

	prev []byte
}

var NoFrameFoundErr = errors.New("No frame found in chunk")

func (c *delimitedChunker) NextChunk() (FrameReader, error) {
	if c.r == nil {
		return nil, io.EOF
	}

	buf := make([]byte, c.chunkSize)
	n, err := io.ReadFull(c.r, buf)
	last := false
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		// Only the last chunk can be shorter than chunkSize.
		c.r = nil
		buf = buf[:n]
		last = true
	} else if err != nil {
		return nil, err
	}

	var buffers []io.Reader
	if len(c.prev) > 0 {
		buffers, c.prev = append(buffers, bytes.NewReader(c.prev)), nil
	}

	switch pos := bytes.LastIndexByte(buf, c.delimiter); {
	case last:
		buffers = append(buffers, bytes.NewReader(buf))
	case pos == -1:
		return nil, NoFrameFoundErr
	default:
		buffers, c.prev = append(buffers, bytes.NewReader(buf[0:pos])), buf[pos:]
	}

	reader := io.MultiReader(buffers...)
	return NewNewlineDelimitedFrameReader(reader, true), nil
}

// ReadAllChunks consumes all FrameReader from the chunker. It holds the whole
// stream in memory and is meant for tests.
func ReadAllChunks(chunker ChunkReader) (readers []FrameReader, err error) {
	for {
		reader, err := chunker.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		readers = append(readers, reader)
	}

	return readers, nil
}

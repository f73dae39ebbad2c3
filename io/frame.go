// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bufio"
	"errors"
	"io"

	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

// FrameWriter wraps messages (payload) and takes care of framing them in a
// stream, here one size expression per line. The implementer is not required
// to provide any concurrency guarantees.
type FrameWriter interface {
	// Write a single message. Returns the number of bytes required to write
	// the message with framing.
	Write(payload []byte) (int, error)
}

// FrameReader reads messages framed in a stream. A FrameReader is usually the
// opposite of a FrameWriter. The implementer is not required to provide any
// concurrency guarantees. Returns io.EOF when no frames are left.
type FrameReader interface {
	// Read a single message. Returns the payload of the message.
	Read() ([]byte, error)
}

// maxFrameSize bounds the length of a single line.
var maxFrameSize, _ = quantity.WithUnit[quantity.ByteKind](1, unit.MiB)

// NewNewlineDelimitedFrameWriter separates messages with a `\n`. The payload
// should not contain a newline, this is the responsibility of the caller. No
// newline is written after the last message.
func NewNewlineDelimitedFrameWriter(w io.Writer) FrameWriter {
	first := true
	newline := []byte{'\n'}
	return frameWriterFn(func(payload []byte) (int, error) {
		if first {
			first = false
			return w.Write(payload)
		}

		written, err := w.Write(newline)
		if err != nil {
			return written, err
		}

		n, err := w.Write(payload)
		return n + written, err
	})
}

// NewNewlineDelimitedFrameReader parses a stream separated by newlines with a
// bufio.Scanner:
//
// - lines may end with `\r\n`.
// - a line longer than maxFrameSize fails with `bufio.ErrTooLong`.
//
// When skipEmpty is set, empty lines are not reported as frames.
func NewNewlineDelimitedFrameReader(r io.Reader, skipEmpty bool) FrameReader {
	scanner := bufio.NewScanner(r)
	size, _ := maxFrameSize.Int()
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), size)

	return frameReaderFn(func() ([]byte, error) {
		for {
			if !scanner.Scan() {
				err := scanner.Err()
				// We reached EOF
				if err == nil {
					err = io.EOF
				}
				return nil, err
			}
			line := scanner.Bytes()
			if skipEmpty && len(line) == 0 {
				continue
			}
			return line, nil
		}
	})
}

type multiFrameReader struct {
	readers []FrameReader
}

func (r *multiFrameReader) Read() ([]byte, error) {
	for len(r.readers) > 0 {
		frame, err := r.readers[0].Read()
		if errors.Is(err, io.EOF) {
			// Allow gc to reclaim FrameReader.
			r.readers[0] = nil
			r.readers = r.readers[1:]
			continue
		} else if err != nil {
			return nil, err
		}
		return frame, nil
	}

	return nil, io.EOF
}

// MultiFrameReader concatenates FrameReaders in a single virtual FrameReader,
// similar to io.MultiReader.
func MultiFrameReader(readers ...FrameReader) FrameReader {
	r := make([]FrameReader, len(readers))
	copy(r, readers)
	return &multiFrameReader{r}
}

// ReadAllFrames returns all frames exposed by a FrameReader until io.EOF is
// reached. Frames are copied since readers may reuse their buffer.
func ReadAllFrames(r FrameReader) ([][]byte, error) {
	frames := make([][]byte, 0, 16)
	for {
		frame, err := r.Read()
		if errors.Is(err, io.EOF) {
			return frames, nil
		} else if err != nil {
			return nil, err
		}

		newFrame := make([]byte, len(frame))
		copy(newFrame, frame)
		frames = append(frames, newFrame)
	}
}

type sliceFrameReader struct {
	frames [][]byte
	pos    int
}

func (s *sliceFrameReader) Read() ([]byte, error) {
	if s.pos == len(s.frames) {
		return nil, io.EOF
	}

	frame := s.frames[s.pos]
	s.pos++

	return frame, nil
}

// SliceFrameReader wraps a slice of frames in a FrameReader.
func SliceFrameReader(frames [][]byte) FrameReader {
	return &sliceFrameReader{frames: frames}
}

type frameWriterFn func([]byte) (int, error)

func (f frameWriterFn) Write(payload []byte) (int, error) {
	return f(payload)
}

type frameReaderFn func() ([]byte, error)

func (f frameReaderFn) Read() ([]byte, error) {
	return f()
}

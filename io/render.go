// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"errors"
	"io"

	berrors "github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/quantity"
)

// Render reads a size per frame of r, usually a count of base units, and
// writes it formatted by f to w. It stops at the first frame that fails to
// parse and reports its position. Returns the number of frames written.
func Render[K quantity.Kind](r FrameReader, w FrameWriter, f quantity.Formatter) (int, error) {
	n := 0
	for {
		frame, err := r.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		} else if err != nil {
			return n, err
		}

		q, err := quantity.Parse[K](string(frame), true)
		if err != nil {
			return n, berrors.NewPositionalError(n, err)
		}

		if _, err := w.Write([]byte(q.Render(f))); err != nil {
			return n, err
		}
		n++
	}
}

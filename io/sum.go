// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	berrors "github.com/optable/byteunit/errors"
	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/unit"
)

// DefaultChunkSize is used when SumOptions.ChunkSize is zero.
var DefaultChunkSize, _ = quantity.WithUnit[quantity.ByteKind](64, unit.KiB)

// SumOptions tunes Sum.
type SumOptions struct {
	// CaseSensitive applies to byte quantities. Bits are always parsed
	// case-sensitively.
	CaseSensitive bool
	// ChunkSize is the size of the chunks parsed concurrently. A chunk must
	// be able to hold a full line.
	ChunkSize quantity.Byte
}

type partial[K quantity.Kind] struct {
	offset int
	frames FrameReader
	total  quantity.Quantity[K]
	errs   []error
}

func (p *partial[K]) sum(ctx context.Context, caseSensitive bool) error {
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := p.frames.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		q, err := quantity.Parse[K](string(frame), caseSensitive)
		if err != nil {
			p.errs = append(p.errs, berrors.NewPositionalError(p.offset+i, err))
			continue
		}

		if p.total, err = p.total.Add(q); err != nil {
			return err
		}
	}
}

// summer fans batches of frames out to concurrent partial sums.
type summer[K quantity.Kind] struct {
	group         *errgroup.Group
	ctx           context.Context
	caseSensitive bool
	partials      []*partial[K]
	offset        int
}

func newSummer[K quantity.Kind](ctx context.Context, opts SumOptions) *summer[K] {
	group, gctx := errgroup.WithContext(ctx)
	return &summer[K]{group: group, ctx: gctx, caseSensitive: opts.CaseSensitive}
}

func (s *summer[K]) add(frames [][]byte) {
	p := &partial[K]{offset: s.offset, frames: SliceFrameReader(frames)}
	s.partials = append(s.partials, p)
	s.offset += len(frames)

	s.group.Go(func() error {
		return p.sum(s.ctx, s.caseSensitive)
	})
}

func (s *summer[K]) abort(err error) (quantity.Quantity[K], error) {
	_ = s.group.Wait()
	return quantity.Quantity[K]{}, err
}

func (s *summer[K]) total(ctx context.Context) (quantity.Quantity[K], error) {
	var total quantity.Quantity[K]
	if err := s.group.Wait(); err != nil {
		return total, err
	}

	var (
		errs []error
		err  error
	)
	for _, p := range s.partials {
		errs = append(errs, p.errs...)
		if total, err = total.Add(p.total); err != nil {
			return quantity.Quantity[K]{}, err
		}
	}

	if err := berrors.NewErrors(errs...); err != nil {
		return quantity.Quantity[K]{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("entries", s.offset).
		Int("chunks", len(s.partials)).
		Str("total", total.String()).
		Msg("summed stream")

	return total, nil
}

func chunkSizeOf(opts SumOptions) quantity.Byte {
	if opts.ChunkSize.IsZero() {
		return DefaultChunkSize
	}
	return opts.ChunkSize
}

// Sum parses one size expression per non-empty line of r and returns their
// total. Chunks of lines are parsed concurrently. Entries that fail to parse
// are reported together as PositionalError, positioned by their index among
// the non-empty lines. An overflowing total fails the whole sum.
func Sum[K quantity.Kind](ctx context.Context, r io.Reader, opts SumOptions) (quantity.Quantity[K], error) {
	chunker, err := NewNewlineDelimitedChunkReader(r, chunkSizeOf(opts))
	if err != nil {
		return quantity.Quantity[K]{}, err
	}

	s := newSummer[K](ctx, opts)
	for {
		reader, err := chunker.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return s.abort(err)
		}

		frames, err := ReadAllFrames(reader)
		if err != nil {
			return s.abort(err)
		}
		s.add(frames)
	}

	return s.total(ctx)
}

// SumFrames is Sum over already framed input, e.g. a MultiFrameReader joining
// several files. Empty frames are skipped and positions run across all the
// frames of r. Frames are batched up to ChunkSize bytes per concurrent parse.
func SumFrames[K quantity.Kind](ctx context.Context, r FrameReader, opts SumOptions) (quantity.Quantity[K], error) {
	limit, err := chunkSizeOf(opts).Int()
	if err != nil {
		return quantity.Quantity[K]{}, err
	}

	s := newSummer[K](ctx, opts)

	var (
		batch [][]byte
		size  int
	)
	for {
		frame, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return s.abort(err)
		}
		if len(frame) == 0 {
			continue
		}

		batch = append(batch, append([]byte(nil), frame...))
		size += len(frame) + 1
		if size >= limit {
			s.add(batch)
			batch, size = nil, 0
		}
	}
	if len(batch) > 0 {
		s.add(batch)
	}

	return s.total(ctx)
}

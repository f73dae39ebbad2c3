// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"context"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

type (
	// Profiling can be embedded in the kong cli to profile a command. The
	// flags are hidden from the help message.
	//
	// The supported values are "cpu", "memory", "block", "mutex" and
	// "trace". Open the resulting file with `go tool pprof $file`.
	Profiling struct {
		Profiling    string `opt:"" hidden:"true" default:""`
		ProfilingDir string `opt:"" hidden:"true" default:"." type:"path"`
	}
)

// Start starts profiling if requested. It returns a function that needs to be
// called when the profiling should stop.
func (p *Profiling) Start(ctx context.Context) func() {
	var mode func(*profile.Profile)
	switch p.Profiling {
	case "cpu":
		mode = profile.CPUProfile
	case "memory":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return func() {}
	}

	zerolog.Ctx(ctx).Info().
		Str("mode", p.Profiling).
		Str("dir", p.ProfilingDir).
		Msg("profiling enabled")
	return profile.Start(profile.ProfilePath(p.ProfilingDir), mode, profile.Quiet).Stop
}

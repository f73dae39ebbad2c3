// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/optable/byteunit/cli"
	byteio "github.com/optable/byteunit/io"
	"github.com/optable/byteunit/lifecycle"
	"github.com/optable/byteunit/quantity"
	"github.com/optable/byteunit/service"
	"github.com/optable/byteunit/unit"
)

type categoryFlag struct {
	Bits bool `help:"Sizes are counted in bits instead of bytes."`
}

func (f categoryFlag) category() unit.Category {
	if f.Bits {
		return unit.Bits
	}
	return unit.Bytes
}

// formatFlags override the fields of the profile in use when set. A nil
// field was not given on the command line.
type formatFlags struct {
	Mode      *quantity.Mode `placeholder:"MODE" help:"Rendering mode: raw, base or auto."`
	Precision *int           `placeholder:"N" help:"Number of fractional digits, -1 trims trailing zeros."`
	System    *unit.System   `placeholder:"SYSTEM" help:"Unit system: decimal, binary or both."`
	Compact   bool           `help:"Drop the space between the magnitude and the unit."`
}

func (f formatFlags) apply(p cli.Profile) (cli.Profile, error) {
	if f.Mode != nil {
		p.Mode = *f.Mode
	}
	if f.Precision != nil {
		p.Precision = *f.Precision
	}
	if f.System != nil {
		p.System = *f.System
	}
	if f.Compact {
		p.Compact = true
	}
	return p, p.Validate()
}

func (f formatFlags) profile(app *App) (cli.Profile, error) {
	p, err := app.profile()
	if err != nil {
		return p, err
	}
	return f.apply(p)
}

type ParseCmd struct {
	categoryFlag `embed:""`

	CaseSensitive bool   `help:"Require exact unit prefixes, bits are always case-sensitive."`
	Input         string `arg:"" help:"Size to parse, e.g. \"1.5 MiB\"."`
}

func (c *ParseCmd) Run(app *App) error {
	p, err := app.profile()
	if err != nil {
		return err
	}

	resp, err := app.converter.Parse(app.ctx, &service.ParseRequest{
		Input:         c.Input,
		Category:      c.category(),
		CaseSensitive: c.CaseSensitive || p.CaseSensitive,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, resp.Value)
	return nil
}

type FormatCmd struct {
	categoryFlag `embed:""`
	formatFlags  `embed:""`

	Value string `arg:"" help:"Count of base units or size to format."`
}

func (c *FormatCmd) Run(app *App) error {
	p, err := c.profile(app)
	if err != nil {
		return err
	}

	resp, err := app.converter.Format(app.ctx, &service.FormatRequest{
		Value:     c.Value,
		Category:  c.category(),
		Mode:      p.Mode,
		Precision: p.Precision,
		System:    p.System,
		Compact:   p.Compact,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, resp.Formatted)
	return nil
}

type SelectCmd struct {
	categoryFlag `embed:""`

	Strategy    service.Strategy `default:"appropriate" help:"Unit selection: exact, recoverable or appropriate."`
	AllowBinary bool             `help:"Consider binary units for exact and recoverable selection."`
	Precision   int              `default:"3" help:"Fractional digits kept by recoverable selection."`
	System      *unit.System     `placeholder:"SYSTEM" help:"Unit system of appropriate selection, defaults to the profile's."`
	Value       string           `arg:"" help:"Count of base units or size."`
}

func (c *SelectCmd) Run(app *App) error {
	p, err := formatFlags{System: c.System}.profile(app)
	if err != nil {
		return err
	}

	resp, err := app.converter.Select(app.ctx, &service.SelectRequest{
		Value:       c.Value,
		Category:    c.category(),
		Strategy:    c.Strategy,
		AllowBinary: c.AllowBinary,
		Precision:   c.Precision,
		System:      p.System,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, resp.Formatted)
	return nil
}

// inputFiles names the files read one size per line. No files, or "-",
// reads stdin.
type inputFiles struct {
	Files []string `arg:"" optional:"" type:"existingfile" help:"Files to read instead of stdin."`
}

// frames joins the lines of every file, in order, in a single FrameReader.
// The returned func closes the files.
func (f inputFiles) frames(app *App) (byteio.FrameReader, func(), error) {
	if len(f.Files) == 0 {
		return byteio.NewNewlineDelimitedFrameReader(app.stdin, true), func() {}, nil
	}

	files := make([]*os.File, 0, len(f.Files))
	closeAll := func() {
		for _, file := range files {
			file.Close()
		}
	}

	readers := make([]byteio.FrameReader, 0, len(f.Files))
	for _, name := range f.Files {
		if name == "-" {
			readers = append(readers, byteio.NewNewlineDelimitedFrameReader(app.stdin, true))
			continue
		}

		file, err := os.Open(name)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, file)
		readers = append(readers, byteio.NewNewlineDelimitedFrameReader(file, true))
	}

	return byteio.MultiFrameReader(readers...), closeAll, nil
}

type SumCmd struct {
	categoryFlag `embed:""`
	formatFlags  `embed:""`
	inputFiles   `embed:""`

	CaseSensitive bool          `help:"Require exact unit prefixes, bits are always case-sensitive."`
	ChunkSize     quantity.Byte `default:"64 KiB" help:"Size of the chunks of input parsed concurrently."`
}

func sum[K quantity.Kind](c *SumCmd, app *App, opts byteio.SumOptions) (quantity.Quantity[K], error) {
	if len(c.Files) == 0 {
		return byteio.Sum[K](app.ctx, app.stdin, opts)
	}

	r, closeAll, err := c.frames(app)
	if err != nil {
		return quantity.Quantity[K]{}, err
	}
	defer closeAll()
	return byteio.SumFrames[K](app.ctx, r, opts)
}

func (c *SumCmd) Run(app *App) error {
	p, err := c.profile(app)
	if err != nil {
		return err
	}

	opts := byteio.SumOptions{
		CaseSensitive: c.CaseSensitive || p.CaseSensitive,
		ChunkSize:     c.ChunkSize,
	}

	var total string
	if c.Bits {
		q, err := sum[quantity.BitKind](c, app, opts)
		if err != nil {
			return err
		}
		total = q.Render(p.Formatter())
	} else {
		q, err := sum[quantity.ByteKind](c, app, opts)
		if err != nil {
			return err
		}
		total = q.Render(p.Formatter())
	}

	fmt.Fprintln(app.stdout, total)
	return nil
}

type RenderCmd struct {
	categoryFlag `embed:""`
	formatFlags  `embed:""`
	inputFiles   `embed:""`
}

func (c *RenderCmd) Run(app *App) error {
	p, err := c.profile(app)
	if err != nil {
		return err
	}

	r, closeAll, err := c.frames(app)
	if err != nil {
		return err
	}
	defer closeAll()
	w := byteio.NewNewlineDelimitedFrameWriter(app.stdout)

	var n int
	if c.Bits {
		n, err = byteio.Render[quantity.BitKind](r, w, p.Formatter())
	} else {
		n, err = byteio.Render[quantity.ByteKind](r, w, p.Formatter())
	}
	if n > 0 {
		fmt.Fprintln(app.stdout)
	}
	return err
}

type ServeCmd struct {
	Listen          string        `default:":8080" env:"BYTEUNIT_LISTEN" help:"Address serving both gRPC and HTTP."`
	ShutdownTimeout time.Duration `default:"10s" help:"Grace period of in-flight requests on shutdown."`
	Token           string        `env:"BYTEUNIT_TOKEN" help:"Bearer token required by gRPC calls."`
	BodyLimit       quantity.Byte `default:"64 KiB" help:"Largest accepted HTTP request body."`
}

func (c *ServeCmd) Run(app *App) error {
	logger := zerolog.Ctx(app.ctx)

	authFunc := service.AllowAll
	if c.Token != "" {
		authFunc = service.BearerToken(c.Token)
	}

	grpcServer, err := service.NewGRPCService(app.ctx, app.converter, authFunc, prometheus.DefaultRegisterer,
		service.WithDescriptors(&service.ConverterServiceDesc))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler: service.NewHTTPHandler(app.ctx, app.converter, prometheus.DefaultGatherer, c.BodyLimit),
	}

	l, err := net.Listen("tcp", c.Listen)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", l.Addr().String()).Msg("Serving gRPC and HTTP")
	return <-lifecycle.ServeGRPCAndHTTP(app.ctx, l, grpcServer, httpServer, c.ShutdownTimeout)
}

type ProfileCmd struct {
	Set  ProfileSetCmd  `cmd:"" help:"Create or update a profile."`
	Use  ProfileUseCmd  `cmd:"" help:"Select the current profile."`
	List ProfileListCmd `cmd:"" help:"List the profiles, the current one is starred."`
	Show ProfileShowCmd `cmd:"" help:"Print a profile, the current one by default."`
}

type ProfileSetCmd struct {
	formatFlags `embed:""`

	CaseSensitive bool   `help:"Parse byte sizes case-sensitively."`
	Name          string `arg:"" help:"Profile name."`
}

func (c *ProfileSetCmd) Run(app *App) error {
	dir, err := app.configDir()
	if err != nil {
		return err
	}

	p, err := dir.Get(c.Name)
	if err != nil {
		p = cli.DefaultProfile
	}
	if p, err = c.apply(p); err != nil {
		return err
	}
	p.CaseSensitive = c.CaseSensitive

	if err := dir.Set(c.Name, p); err != nil {
		return err
	}
	zerolog.Ctx(app.ctx).Info().Str("profile", c.Name).Str("dir", dir.Path()).Msg("profile saved")
	return nil
}

type ProfileUseCmd struct {
	Name string `arg:"" help:"Profile name."`
}

func (c *ProfileUseCmd) Run(app *App) error {
	dir, err := app.configDir()
	if err != nil {
		return err
	}
	return dir.Use(c.Name)
}

type ProfileListCmd struct{}

func (c *ProfileListCmd) Run(app *App) error {
	dir, err := app.configDir()
	if err != nil {
		return err
	}

	names, err := dir.List()
	if err != nil {
		return err
	}
	current, _, _ := dir.Current()

	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(app.stdout, "%s %s\n", marker, name)
	}
	return nil
}

type ProfileShowCmd struct {
	Name string `arg:"" optional:"" help:"Profile name."`
}

func (c *ProfileShowCmd) Run(app *App) error {
	dir, err := app.configDir()
	if err != nil {
		return err
	}

	var p cli.Profile
	if c.Name != "" {
		p, err = dir.Get(c.Name)
	} else {
		_, p, err = dir.CurrentOrDefault()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "mode: %s\nprecision: %d\nsystem: %s\ncompact: %t\ncase_sensitive: %t\n",
		p.Mode, p.Precision, p.System, p.Compact, p.CaseSensitive)
	return nil
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Command byteunit parses, formats and sums byte and bit sizes, and serves
// the conversions over gRPC and HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/optable/byteunit/cli"
	"github.com/optable/byteunit/service"
)

// CLI is the kong grammar of the command.
type CLI struct {
	cli.Profiling `embed:""`

	LogLevel      string `default:"warn" enum:"trace,debug,info,warn,error,disabled" env:"BYTEUNIT_LOG_LEVEL" help:"Log level (${enum})."`
	ProfileDir    string `default:"${profile_dir}" type:"path" env:"BYTEUNIT_PROFILE_DIR" help:"Directory holding the formatting profiles."`
	ProfileFormat string `default:"yaml" enum:"json,yaml" help:"Encoding of the profile files (${enum})."`
	WithProfile   string `short:"p" help:"Profile to use instead of the current one."`

	Parse   ParseCmd   `cmd:"" help:"Parse a size into a count of base units."`
	Format  FormatCmd  `cmd:"" help:"Format a size."`
	Select  SelectCmd  `cmd:"" help:"Express a size in a selected unit."`
	Sum     SumCmd     `cmd:"" help:"Sum the sizes read from files or stdin, one per line."`
	Render  RenderCmd  `cmd:"" help:"Format the sizes read from files or stdin, one per line."`
	Serve   ServeCmd   `cmd:"" help:"Serve the conversions over gRPC and HTTP."`
	Profile ProfileCmd `cmd:"" help:"Manage formatting profiles."`
}

// App carries what commands need besides their flags.
type App struct {
	ctx       context.Context
	cli       *CLI
	stdin     io.Reader
	stdout    io.Writer
	converter *service.Converter
}

func (a *App) configDir() (*cli.ConfigDir, error) {
	loader, err := cli.LoaderFor(a.cli.ProfileFormat)
	if err != nil {
		return nil, err
	}
	return cli.CreateConfigDir(a.cli.ProfileDir, loader)
}

// profile returns the profile selected with --with-profile, or the current
// one.
func (a *App) profile() (cli.Profile, error) {
	dir, err := a.configDir()
	if err != nil {
		return cli.Profile{}, err
	}

	if a.cli.WithProfile != "" {
		return dir.Get(a.cli.WithProfile)
	}

	name, p, err := dir.CurrentOrDefault()
	zerolog.Ctx(a.ctx).Debug().Str("profile", name).Msg("loaded profile")
	return p, err
}

var intMapper = kong.NewRegistry().RegisterDefaults().ForType(reflect.TypeOf(0))

// optionalIntMapper decodes *int flags with kong's int mapper, leaving them
// nil when absent.
func optionalIntMapper(ctx *kong.DecodeContext, target reflect.Value) error {
	if target.IsNil() {
		target.Set(reflect.New(target.Type().Elem()))
	}
	return intMapper.Decode(ctx, target.Elem())
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var c CLI
	parser, err := kong.New(&c,
		kong.Name("byteunit"),
		kong.Description("Convert byte and bit sizes."),
		kong.UsageOnError(),
		kong.Vars{"profile_dir": cli.DefaultConfigDir()},
		kong.Writers(stdout, stderr),
		kong.TypeMapper(reflect.TypeOf((*int)(nil)), kong.MapperFunc(optionalIntMapper)),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
	ctx = logger.WithContext(ctx)

	stop := c.Profiling.Start(ctx)
	defer stop()

	return kctx.Run(&App{
		ctx:       ctx,
		cli:       &c,
		stdin:     stdin,
		stdout:    stdout,
		converter: service.NewConverter(),
	})
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "byteunit: %s\n", err)
		os.Exit(1)
	}
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

type (
	// Servable is implemented by components that listen and serve requests. The
	// most notable type implementing this are http.Server and GRPCServer.
	Servable interface {
		Serve(net.Listener) error
	}
)

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// ServeWithGracefulShutdown glue a Servable with a proper shutdown routine.
// SIGINT, SIGTERM or the cancellation of ctx trigger the shutdown sequence,
// bounded by shutdownTimeout. This function does not block and returns
// immediately a channel where an error will be emitted if it failed to serve
// or to shutdown. The channel is closed once the server is stopped.
func ServeWithGracefulShutdown(ctx context.Context, listen net.Listener, server Servable, shutdownTimeout time.Duration) <-chan error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	done := serve(ctx, listen, server, shutdownTimeout)

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer stop()
		if err := <-done; err != nil {
			errs <- err
		}
	}()
	return errs
}

func serve(ctx context.Context, listen net.Listener, server Servable, shutdownTimeout time.Duration) <-chan error {
	logger := zerolog.Ctx(ctx)

	served := make(chan error, 1)
	go func() {
		served <- server.Serve(listen)
	}()

	done := make(chan error, 1)
	go func() {
		defer close(done)

		select {
		case err := <-served:
			// The listener may be closed by a sibling server sharing it
			// while the shutdown is propagating.
			if err != nil && !(ctx.Err() != nil && isClosedErr(err)) {
				done <- fmt.Errorf("Server failed to serve: %w", err)
			}
			return
		case <-ctx.Done():
			logger.Info().Str("addr", listen.Addr().String()).Msg("Shutdown triggered")
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if _, ok := server.(GracefulShutdown); !ok {
			listen.Close()
		}
		if err := MaybeGracefulShutdown(shutdownCtx, server); err != nil {
			done <- fmt.Errorf("Unclean shutdown of server: %w", err)
			return
		}

		select {
		case err := <-served:
			if err != nil && !isClosedErr(err) {
				done <- fmt.Errorf("Server failed to serve: %w", err)
				return
			}
		case <-shutdownCtx.Done():
			done <- fmt.Errorf("Unclean shutdown of server: %w", shutdownCtx.Err())
			return
		}

		logger.Info().Str("addr", listen.Addr().String()).Msg("Shutdown sequence completed")
	}()

	return done
}

// ServeGRPCAndHTTP behaves like ServeWithGracefulShutdown except that it
// serves a gRPC server and an HTTP/1 server on the same Listener. Stopping
// either server shuts the other one down.
func ServeGRPCAndHTTP(ctx context.Context, l net.Listener, grpcServer *grpc.Server, httpServer *http.Server, shutdownTimeout time.Duration) <-chan error {
	errs := make(chan error, 1)

	go func() {
		defer close(errs)

		ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
		defer stop()

		mux := cmux.New(l)
		httpL := mux.Match(cmux.HTTP1Fast())
		grpcL := mux.Match(cmux.Any())

		muxed := make(chan error, 1)
		go func() {
			err := mux.Serve()
			stop()
			muxed <- err
		}()

		group, gctx := errgroup.WithContext(ctx)

		// Serve requests for the gRPC service.
		group.Go(func() error {
			defer stop()
			if err := <-serve(gctx, grpcL, NewGRPCServer(grpcServer), shutdownTimeout); err != nil {
				return fmt.Errorf("Failed serving grpc: %w", err)
			}
			return nil
		})

		// Serve requests for the HTTP handlers.
		group.Go(func() error {
			defer stop()
			if err := <-serve(gctx, httpL, httpServer, shutdownTimeout); err != nil {
				return fmt.Errorf("Failed serving http: %w", err)
			}
			return nil
		})

		err := group.Wait()

		// Child listeners share the root listener, closing it stops the mux.
		mux.Close()
		l.Close()
		if muxErr := <-muxed; err == nil && muxErr != nil && !isClosedErr(muxErr) {
			err = fmt.Errorf("Failed serving mux: %w", muxErr)
		}

		errs <- err
	}()

	return errs
}

func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, http.ErrServerClosed) ||
		errors.Is(err, grpc.ErrServerStopped) ||
		errors.Is(err, cmux.ErrServerClosed) ||
		errors.Is(err, cmux.ErrListenerClosed)
}

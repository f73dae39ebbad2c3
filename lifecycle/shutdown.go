// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package lifecycle

import (
	"context"

	"google.golang.org/grpc"
)

type (
	// GracefulShutdown is implemented by components that need to be gracefully
	// terminated. Unlike cancelling a context given at construction or calling
	// `Close() error`, Shutdown tells the caller when the component is done
	// and whether it stopped cleanly, within the deadline of the context. It
	// ties nicely with Kubernetes' `terminationGracePeriodSeconds`.
	GracefulShutdown interface {
		// Shutdown context should be respected.
		Shutdown(context.Context) error
	}
)

// MaybeGracefulShutdown takes an object and invokes Shutdown if the object
// implements GracefulShutdown, otherwise it returns ctx.Err().
func MaybeGracefulShutdown(ctx context.Context, i interface{}) error {
	if s, ok := i.(GracefulShutdown); ok {
		return s.Shutdown(ctx)
	}

	return ctx.Err()
}

// GRPCServer gives a *grpc.Server the GracefulShutdown interface.
type GRPCServer struct {
	*grpc.Server
}

func NewGRPCServer(s *grpc.Server) *GRPCServer {
	return &GRPCServer{s}
}

// Shutdown waits for pending RPCs to complete. When ctx expires first, the
// remaining RPCs are cancelled and ctx.Err() is returned.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.Stop()
		<-stopped
		return ctx.Err()
	}
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	metrics "github.com/grpc-ecosystem/go-grpc-middleware/providers/openmetrics/v2"
	grpczerolog "github.com/grpc-ecosystem/go-grpc-middleware/providers/zerolog/v2"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGRPCService creates a grpc service with various defaults middlewares.
// Notably, the logging and metrics are automatically registered for sane
// defaults of observability. A nil registry uses prometheus.DefaultRegisterer
// which also carries the go runtime and process metrics.
func NewGRPCService(ctx context.Context, service interface{}, authFunc auth.AuthFunc, registry prometheus.Registerer, descriptors []*grpc.ServiceDesc) (*grpc.Server, error) {
	if len(descriptors) == 0 {
		return nil, errors.New("Missing descriptors")
	}
	if authFunc == nil {
		authFunc = AllowAll
	}
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := metrics.NewServerMetrics(metrics.WithServerHandlingTimeHistogram())
	if err := m.Register(registry); err != nil {
		return nil, fmt.Errorf("Failed registering grpc metrics: %w", err)
	}
	if collector, ok := service.(prometheus.Collector); ok {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("Failed registering metrics: %w", err)
		}
	}

	logger := zerolog.Ctx(ctx)
	recoverWith := recovery.WithRecoveryHandlerContext(func(ctx context.Context, p interface{}) error {
		logger.Error().Interface("panic", p).Msg("Recovered from panic in grpc handler")
		return status.Errorf(codes.Internal, "%v", p)
	})

	server := grpc.NewServer(
		grpc.ChainStreamInterceptor(
			logging.StreamServerInterceptor(grpczerolog.InterceptorLogger(*logger)),
			metrics.StreamServerInterceptor(m),
			recovery.StreamServerInterceptor(recoverWith),
			auth.StreamServerInterceptor(authFunc),
		),
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(grpczerolog.InterceptorLogger(*logger)),
			metrics.UnaryServerInterceptor(m),
			recovery.UnaryServerInterceptor(recoverWith),
			auth.UnaryServerInterceptor(authFunc),
		),
	)

	for _, desc := range descriptors {
		logger.Info().Msgf("Registering grpc service: %s", desc.ServiceName)
		server.RegisterService(desc, service)
	}

	// Ensure that all metrics for all endpoints are default to NULL instead of
	// being lazily added to the metrics the first time an endpoint is hit.
	//
	// This must be called once all gRPC services are registered.
	m.InitializeMetrics(server)

	return server, nil
}

func WithDescriptors(descs ...*grpc.ServiceDesc) []*grpc.ServiceDesc {
	return descs
}

// AllowAll is an auth.AuthFunc accepting every request.
func AllowAll(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

// BearerToken returns an auth.AuthFunc accepting requests carrying
// "authorization: bearer <token>".
func BearerToken(token string) auth.AuthFunc {
	return func(ctx context.Context) (context.Context, error) {
		got, err := auth.AuthFromMD(ctx, "bearer")
		if err != nil {
			return nil, err
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return nil, status.Error(codes.PermissionDenied, "Invalid token")
		}
		return ctx, nil
	}
}

// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	berrors "github.com/optable/byteunit/errors"
)

// ServiceName is the fully qualified name of the converter gRPC service.
const ServiceName = "byteunit.v1.Converter"

// CodecName is the content-subtype of the json codec, requests are sent as
// "application/grpc+json".
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ConverterServer is the server API of the converter service.
type ConverterServer interface {
	Parse(context.Context, *ParseRequest) (*ParseResponse, error)
	Format(context.Context, *FormatRequest) (*FormatResponse, error)
	Select(context.Context, *SelectRequest) (*SelectResponse, error)
}

var _ ConverterServer = (*Converter)(nil)

// ConverterServiceDesc describes the converter service for grpc.Server.
var ConverterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConverterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Parse",
			Handler:    unaryHandler("Parse", ConverterServer.Parse),
		},
		{
			MethodName: "Format",
			Handler:    unaryHandler("Format", ConverterServer.Format),
		},
		{
			MethodName: "Select",
			Handler:    unaryHandler("Select", ConverterServer.Select),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "byteunit/v1/converter",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(ConverterServer, context.Context, *Req) (*Resp, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			out, err := call(srv.(ConverterServer), ctx, req.(*Req))
			if err != nil {
				return nil, toStatus(err)
			}
			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		return interceptor(ctx, in, info, handler)
	}
}

// toStatus maps conversion failures to gRPC codes: malformed input is
// InvalidArgument, results beyond the integer width are OutOfRange.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	if c, ok := berrors.CodeOf(err); ok {
		switch c {
		case berrors.Overflow, berrors.Underflow:
			code = codes.OutOfRange
		default:
			code = codes.InvalidArgument
		}
	} else if errors.Is(err, ErrInvalidRequest) {
		code = codes.InvalidArgument
	}

	return status.Error(code, err.Error())
}

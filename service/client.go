// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package service

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls a remote converter service with the json codec.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. The json codec is selected for every call.
func Dial(ctx context.Context, target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.DialContext(ctx, target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn}, nil
}

func (c *Client) Parse(ctx context.Context, req *ParseRequest, opts ...grpc.CallOption) (*ParseResponse, error) {
	out := new(ParseResponse)
	if err := c.invoke(ctx, "Parse", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Format(ctx context.Context, req *FormatRequest, opts ...grpc.CallOption) (*FormatResponse, error) {
	out := new(FormatResponse)
	if err := c.invoke(ctx, "Format", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Select(ctx context.Context, req *SelectRequest, opts ...grpc.CallOption) (*SelectResponse, error) {
	out := new(SelectResponse)
	if err := c.invoke(ctx, "Select", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.conn.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

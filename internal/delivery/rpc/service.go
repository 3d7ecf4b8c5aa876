// Package rpc serves the game use case over gRPC as goban.v1.Goban. Messages
// are google.protobuf.Struct values carrying the same JSON documents as the
// HTTP API, so no generated code is needed on either side.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "goban.v1.Goban"

// GobanServer is the server side of goban.v1.Goban.
type GobanServer interface {
	Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Play(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Pass(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Get(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(GobanServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GobanServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Create", GobanServer.Create),
		method("Play", GobanServer.Play),
		method("Pass", GobanServer.Pass),
		method("Get", GobanServer.Get),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "goban/v1/goban.proto",
}

func RegisterGobanServer(s grpc.ServiceRegistrar, srv GobanServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GobanServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(GobanServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	st := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("struct from %T: %w", v, err)
	}
	return st, nil
}

// fromStruct decodes st into dst, rejecting unknown fields.
func fromStruct(st *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(st)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

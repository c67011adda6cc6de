package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName - полное имя gRPC-сервиса справочных проверок.
const ServiceName = "filmorate.v1.Lookup"

// LookupServer - методы, которые сервис отдает другим сервисам.
// Сообщения - стандартные типы protobuf, поэтому кодогенерация не нужна.
type LookupServer interface {
	CheckFilmExists(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	CheckUserExists(ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
	GetFilmInfo(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetPopularFilms(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.ListValue, error)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary строит обработчик унарного метода с поддержкой перехватчиков.
func unary[Req any, Resp any](method string, newReq func() Req, call func(LookupServer, context.Context, Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LookupServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LookupServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newInt64() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) }

// LookupServiceDesc описывает сервис для grpc.Server.RegisterService.
var LookupServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckFilmExists",
			Handler:    unary("CheckFilmExists", newInt64, LookupServer.CheckFilmExists),
		},
		{
			MethodName: "CheckUserExists",
			Handler:    unary("CheckUserExists", newInt64, LookupServer.CheckUserExists),
		},
		{
			MethodName: "GetFilmInfo",
			Handler:    unary("GetFilmInfo", newInt64, LookupServer.GetFilmInfo),
		},
		{
			MethodName: "GetPopularFilms",
			Handler:    unary("GetPopularFilms", newInt64, LookupServer.GetPopularFilms),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filmorate/v1/lookup.proto",
}

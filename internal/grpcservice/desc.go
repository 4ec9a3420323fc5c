package grpcservice

import (
	"context"

	"google.golang.org/grpc"

	"go.klb.dev/cliplog/internal/message"
)

const (
	ServiceName = "cliplog.v1.ClipboardHistory"

	MethodGetHistory      = "/" + ServiceName + "/GetHistory"
	MethodCopyToClipboard = "/" + ServiceName + "/CopyToClipboard"
	MethodStatus          = "/" + ServiceName + "/Status"
	MethodWatch           = "/" + ServiceName + "/Watch"
)

// HistoryServer is the server API for the ClipboardHistory service.
type HistoryServer interface {
	GetHistory(context.Context, *message.HistoryRequest) (*message.HistoryResponse, error)
	CopyToClipboard(context.Context, *message.CopyRequest) (*message.CopyResponse, error)
	Status(context.Context, *message.StatusRequest) (*message.StatusResponse, error)
	Watch(*message.WatchRequest, WatchStream) error
}

// WatchStream is the server side of a Watch call.
type WatchStream interface {
	Context() context.Context
	Send(*message.Event) error
}

type watchServerStream struct {
	grpc.ServerStream
}

func (s *watchServerStream) Send(ev *message.Event) error { return s.ServerStream.SendMsg(ev) }

// ServiceDesc describes the ClipboardHistory service. It is written by hand
// because the payloads are plain Go structs carried by Codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetHistory",
			Handler:    unary(MethodGetHistory, HistoryServer.GetHistory),
		},
		{
			MethodName: "CopyToClipboard",
			Handler:    unary(MethodCopyToClipboard, HistoryServer.CopyToClipboard),
		},
		{
			MethodName: "Status",
			Handler:    unary(MethodStatus, HistoryServer.Status),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "cliplog/v1/history",
}

func unary[Req, Resp any](
	fullMethod string,
	call func(HistoryServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(HistoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(HistoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(message.WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(HistoryServer).Watch(in, &watchServerStream{stream})
}

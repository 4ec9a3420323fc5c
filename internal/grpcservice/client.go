package grpcservice

import (
	"context"
	"errors"
	"io"
	"math"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

// DialOptions returns the client options matching NewServer: no transport
// security (the endpoint is local), Codec on every call and no client-side
// message limit, since the daemon enforces MaxMessageSize.
func DialOptions(dial func(context.Context, string) (net.Conn, error)) []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(dial),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(Codec),
			grpc.MaxCallRecvMsgSize(math.MaxInt32),
			grpc.MaxCallSendMsgSize(math.MaxInt32),
		),
	}
}

// Client is a typed ClipboardHistory client.
type Client struct {
	conn *grpc.ClientConn
}

// Dial returns a client for the daemon listening on the IPC endpoint at path
// (empty = default). The connection is established lazily.
func Dial(path string) (*Client, error) {
	path = ipc.Resolve(path)
	conn, err := grpc.NewClient("passthrough:///cliplog", DialOptions(func(ctx context.Context, _ string) (net.Conn, error) {
		return ipc.Dial(ctx, path)
	})...)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client { return &Client{conn: conn} }

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// History returns the full history, oldest first.
func (c *Client) History(ctx context.Context) ([]history.Entry, error) {
	resp := new(message.HistoryResponse)
	if err := c.conn.Invoke(ctx, MethodGetHistory, &message.HistoryRequest{}, resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Copy puts content on the daemon's clipboard.
func (c *Client) Copy(ctx context.Context, content string) error {
	return c.conn.Invoke(ctx, MethodCopyToClipboard, &message.CopyRequest{Content: content}, new(message.CopyResponse))
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (*message.StatusResponse, error) {
	resp := new(message.StatusResponse)
	if err := c.conn.Invoke(ctx, MethodStatus, &message.StatusRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Health queries the standard gRPC health service.
func (c *Client) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Watch calls fn for every event until ctx is done, the stream ends, or fn
// returns an error.
func (c *Client) Watch(ctx context.Context, name string, fn func(*message.Event) error) error {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], MethodWatch)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&message.WatchRequest{Name: name}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		ev := new(message.Event)
		if err := stream.RecvMsg(ev); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if status.Code(err) == codes.Canceled && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

// ErrorMessage returns the server-side message of a gRPC error, or
// err.Error() for anything else.
func ErrorMessage(err error) string {
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return err.Error()
}

// Package grpcservice implements the ClipboardHistory gRPC service and its
// client.
package grpcservice

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"go.klb.dev/cliplog/internal/access"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/poller"
)

// Config wires a Service to the daemon's components.
type Config struct {
	Facade  *access.Facade
	Hub     *hub.Hub
	Store   *history.Store
	Poller  *poller.Poller
	Backend string
	Version string
}

// Service implements HistoryServer.
type Service struct {
	cfg       Config
	startedAt time.Time

	done     chan struct{}
	stopOnce sync.Once
}

var _ HistoryServer = (*Service)(nil)

// New returns a Service backed by cfg.
func New(cfg Config) *Service {
	return &Service{cfg: cfg, startedAt: time.Now(), done: make(chan struct{})}
}

// Shutdown ends every open Watch stream. Unary calls keep working.
func (s *Service) Shutdown() {
	s.stopOnce.Do(func() { close(s.done) })
}

// jsonEscapeFactor is the worst-case growth of a string under JSON escaping
// ("\u0000" for one control byte).
const jsonEscapeFactor = 6

// MaxMessageSize returns the gRPC message limit for a history of capacity
// entries of up to history.MaxEntrySize bytes each, clamped to math.MaxInt32.
func MaxMessageSize(capacity int) int {
	if capacity <= 0 {
		capacity = history.DefaultCapacity
	}
	size := int64(capacity)*history.MaxEntrySize*jsonEscapeFactor + 64<<10
	if size > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(size)
}

// NewServer returns a gRPC server with the ClipboardHistory and health
// services registered, Codec forced for every call and message limits sized
// for the service's history.
func NewServer(svc *Service, hs *health.Server, opts ...grpc.ServerOption) *grpc.Server {
	var capacity int
	if svc.cfg.Store != nil {
		capacity = svc.cfg.Store.Cap()
	}
	limit := MaxMessageSize(capacity)
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec),
		grpc.MaxRecvMsgSize(limit),
		grpc.MaxSendMsgSize(limit),
		grpc.ChainUnaryInterceptor(logUnary),
	}, opts...)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, svc)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// GetHistory implements get_clipboard_history. It never fails.
func (s *Service) GetHistory(_ context.Context, _ *message.HistoryRequest) (*message.HistoryResponse, error) {
	return &message.HistoryResponse{Entries: s.cfg.Facade.Read()}, nil
}

// CopyToClipboard implements copy_to_clipboard. A platform write failure is
// reported as codes.Unavailable with the platform's message.
func (s *Service) CopyToClipboard(ctx context.Context, req *message.CopyRequest) (*message.CopyResponse, error) {
	err := s.cfg.Facade.Write(req.Content)
	if err == nil {
		slog.Debug("clipboard written", "caller", addrFromCtx(ctx), "bytes", len(req.Content))
		return &message.CopyResponse{}, nil
	}

	var accessErr *access.ClipboardAccessError
	if errors.As(err, &accessErr) {
		slog.Warn("clipboard write failed", "caller", addrFromCtx(ctx), "err", accessErr.Err)
		return nil, status.Error(codes.Unavailable, accessErr.Err.Error())
	}
	return nil, status.Error(codes.Internal, err.Error())
}

// Status reports the daemon's configuration and counters.
func (s *Service) Status(_ context.Context, _ *message.StatusRequest) (*message.StatusResponse, error) {
	resp := &message.StatusResponse{
		Version:     s.cfg.Version,
		Backend:     s.cfg.Backend,
		Size:        s.cfg.Store.Len(),
		Capacity:    s.cfg.Store.Cap(),
		Subscribers: s.cfg.Hub.Subscribers(),
		StartedAt:   s.startedAt,
	}
	if p := s.cfg.Poller; p != nil {
		resp.Interval = p.Interval().String()
		resp.Poller = p.Stats()
	}
	return resp, nil
}

// Watch streams one clipboard-update event per change signal until the
// caller goes away or the service shuts down.
func (s *Service) Watch(req *message.WatchRequest, stream WatchStream) error {
	ctx := stream.Context()
	name := req.Name
	if name == "" {
		name = "watch:" + addrFromCtx(ctx)
	}

	sub := s.cfg.Hub.Subscribe(name)
	defer s.cfg.Hub.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-sub.C():
			if err := stream.Send(message.NewUpdateEvent(time.Now())); err != nil {
				return err
			}
		}
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.Debug("rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"took", time.Since(start),
	)
	return resp, err
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil && p.Addr.String() != "" {
		return p.Addr.String()
	}
	return "local"
}

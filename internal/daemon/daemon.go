// Package daemon assembles the clipboard poller, the history and the local
// endpoint that front ends talk to.
//
// One listener serves both transports; cmux routes HTTP/2 connections with a
// gRPC content-type to the gRPC server and HTTP/1.x to the JSON gateway.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/soheilhy/cmux"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.klb.dev/cliplog/internal/access"
	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/gateway"
	"go.klb.dev/cliplog/internal/grpcservice"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/poller"
)

const shutdownTimeout = 2 * time.Second

// Config holds daemon settings. Zero values select the defaults.
type Config struct {
	// Socket is the IPC endpoint path; empty selects ipc.SocketPath().
	Socket string
	// Backend selects the clipboard implementation.
	Backend clip.Kind
	// Interval is the pause between clipboard probes.
	Interval time.Duration
	// Capacity is the maximum number of history entries.
	Capacity int
	// Version is reported by the status call.
	Version string

	// NewBackend replaces clip.New; used by tests.
	NewBackend func(clip.Kind) (clip.Backend, error)
}

// Run serves until ctx is cancelled or a component fails. A cancelled ctx
// is a clean shutdown and returns nil.
func Run(ctx context.Context, cfg Config) error {
	newBackend := cfg.NewBackend
	if newBackend == nil {
		newBackend = clip.New
	}
	backend, err := newBackend(cfg.Backend)
	if err != nil {
		return fmt.Errorf("clipboard backend: %w", err)
	}
	defer backend.Close()

	store := history.New(cfg.Capacity)
	h := hub.New()
	p := poller.New(backend, store, h, poller.WithInterval(cfg.Interval))

	svc := grpcservice.New(grpcservice.Config{
		Facade:  access.New(store, backend),
		Hub:     h,
		Store:   store,
		Poller:  p,
		Backend: backend.Name(),
		Version: cfg.Version,
	})
	hs := health.NewServer()
	grpcSrv := grpcservice.NewServer(svc, hs)

	mux, err := gateway.New(svc)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	path := ipc.Resolve(cfg.Socket)
	ln, err := ipc.Listen(path)
	if err != nil {
		return err
	}
	defer ipc.Cleanup(path)

	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	slog.Info("cliplog daemon starting",
		"version", cfg.Version,
		"socket", path,
		"backend", backend.Name(),
		"capacity", store.Cap(),
		"interval", p.Interval(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := grpcSrv.Serve(grpcL); err != nil && gctx.Err() == nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := httpSrv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && gctx.Err() == nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := m.Serve(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("cmux: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("cliplog daemon shutting down")
		svc.Shutdown()
		hs.Shutdown()
		stopGRPC(grpcSrv.GracefulStop, grpcSrv.Stop)

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			_ = httpSrv.Close()
		}
		_ = ln.Close()
		return nil
	})

	hs.SetServingStatus(grpcservice.ServiceName, healthpb.HealthCheckResponse_SERVING)

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// stopGRPC waits up to shutdownTimeout for in-flight calls, then forces the
// server down.
func stopGRPC(graceful, force func()) {
	done := make(chan struct{})
	go func() {
		graceful()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		force()
		<-done
	}
}

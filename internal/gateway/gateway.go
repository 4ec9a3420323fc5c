// Package gateway serves the ClipboardHistory service as HTTP/JSON for web
// front ends, using a grpc-gateway ServeMux whose handlers call the service
// in-process.
//
//	GET  /v1/history  → {"entries":[{"content":..., "timestamp":...}, ...]}
//	POST /v1/copy     ← {"content":"..."}        → {}
//	GET  /v1/events   → newline-delimited {"type":"clipboard-update","at":...}
//	GET  /v1/status   → daemon status
//
// Client consumes the same routes over the daemon's IPC endpoint.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/cliplog/internal/grpcservice"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/wire"
)

type gateway struct {
	mux *gwruntime.ServeMux
	svc grpcservice.HistoryServer
}

// New returns an HTTP handler exposing svc.
func New(svc grpcservice.HistoryServer) (*gwruntime.ServeMux, error) {
	g := &gateway{mux: gwruntime.NewServeMux(), svc: svc}

	routes := []struct {
		method, path string
		h            gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/history", g.history},
		{http.MethodPost, "/v1/copy", g.copy},
		{http.MethodGet, "/v1/events", g.events},
		{http.MethodGet, "/v1/status", g.status},
	}
	for _, r := range routes {
		if err := g.mux.HandlePath(r.method, r.path, r.h); err != nil {
			return nil, fmt.Errorf("gateway: route %s %s: %w", r.method, r.path, err)
		}
	}
	return g.mux, nil
}

func (g *gateway) history(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := g.svc.GetHistory(r.Context(), &message.HistoryRequest{})
	g.respond(w, r, resp, err)
}

func (g *gateway) copy(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	inbound, _ := gwruntime.MarshalerForRequest(g.mux, r)

	var req message.CopyRequest
	if err := inbound.NewDecoder(r.Body).Decode(&req); err != nil {
		g.respond(w, r, nil, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err))
		return
	}
	resp, err := g.svc.CopyToClipboard(r.Context(), &req)
	g.respond(w, r, resp, err)
}

func (g *gateway) status(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := g.svc.Status(r.Context(), &message.StatusRequest{})
	g.respond(w, r, resp, err)
}

func (g *gateway) events(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "http:" + r.RemoteAddr
	}
	stream := &eventStream{ctx: r.Context(), enc: wire.NewEncoder(w)}
	if err := g.svc.Watch(&message.WatchRequest{Name: name}, stream); err != nil {
		slog.Debug("event stream ended", "name", name, "err", err)
	}
}

func (g *gateway) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	_, outbound := gwruntime.MarshalerForRequest(g.mux, r)
	if err != nil {
		gwruntime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
		return
	}
	body, err := outbound.Marshal(resp)
	if err != nil {
		gwruntime.HTTPError(r.Context(), g.mux, outbound, w, r, status.Error(codes.Internal, err.Error()))
		return
	}
	w.Header().Set("Content-Type", outbound.ContentType(resp))
	_, _ = w.Write(body)
}

// eventStream adapts an HTTP response to grpcservice.WatchStream.
type eventStream struct {
	ctx context.Context
	enc *wire.Encoder
}

func (s *eventStream) Context() context.Context { return s.ctx }

func (s *eventStream) Send(ev *message.Event) error { return s.enc.WriteMsg(ev) }

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/wire"
)

// Client reads the history and follows the event stream over HTTP/JSON.
type Client struct {
	hc   *http.Client
	base string
}

// Dial returns a client for the gateway on the IPC endpoint at path
// (empty = default). Connections are opened lazily.
func Dial(path string) *Client {
	path = ipc.Resolve(path)
	return NewClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return ipc.Dial(ctx, path)
			},
		},
	}, "http://cliplog")
}

// NewClient uses hc to reach the gateway at base, e.g. "http://127.0.0.1:8080".
func NewClient(hc *http.Client, base string) *Client {
	return &Client{hc: hc, base: base}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// History returns the full history, oldest first.
func (c *Client) History(ctx context.Context) ([]history.Entry, error) {
	resp, err := c.get(ctx, "/v1/history")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body message.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return body.Entries, nil
}

// Watch calls fn for every event on /v1/events until ctx is done, the
// stream ends, or fn returns an error.
func (c *Client) Watch(ctx context.Context, name string, fn func(*message.Event) error) error {
	resp, err := c.get(ctx, "/v1/events?name="+url.QueryEscape(name))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := wire.NewDecoder(resp.Body)
	for {
		ev := new(message.Event)
		if err := dec.ReadMsg(ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// statusError extracts the message of a runtime.HTTPError body.
func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil || body.Message == "" {
		return fmt.Errorf("gateway: %s", resp.Status)
	}
	return fmt.Errorf("gateway: %s: %s", resp.Status, body.Message)
}
